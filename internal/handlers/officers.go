package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/authz"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/middleware"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/models"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/service"
)

type officerRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	BPNumber    string `json:"bpNumber"`
	Designation string `json:"designation"`
	Department  string `json:"department"`
	Unit        string `json:"unit"`
	Password    string `json:"password"`
}

type officerResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	BPNumber    string  `json:"bpNumber"`
	Designation string  `json:"designation"`
	Department  string  `json:"department"`
	Unit        string  `json:"unit,omitempty"`
	Status      string  `json:"status"`
	IsAdmin     bool    `json:"isAdmin"`
	AccountID   *string `json:"accountId,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

func toOfficerResponse(o models.Officer) officerResponse {
	return officerResponse{
		ID:          o.ID,
		Name:        o.Name,
		Phone:       o.Phone,
		BPNumber:    o.BPNumber,
		Designation: o.Designation,
		Department:  o.Department,
		Unit:        o.Unit,
		Status:      string(o.Status),
		IsAdmin:     o.HasAdminRole(),
		AccountID:   o.AccountID,
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
	}
}

func (h HandlerSet) CreateOfficer(c *gin.Context) {
	var req officerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "detail": err.Error()})
		return
	}

	officer, err := h.officerService.Create(c.Request.Context(), service.OfficerInput{
		Name:        req.Name,
		Phone:       req.Phone,
		BPNumber:    req.BPNumber,
		Designation: req.Designation,
		Department:  req.Department,
		Unit:        req.Unit,
		Password:    req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOfficerResponse(officer))
}

func (h HandlerSet) GetOfficer(c *gin.Context) {
	officer, err := h.officerService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOfficerResponse(officer))
}

func (h HandlerSet) UpdateOfficer(c *gin.Context) {
	var req officerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "detail": err.Error()})
		return
	}

	officer, err := h.officerService.Update(c.Request.Context(), c.Param("id"), service.OfficerInput{
		Name:        req.Name,
		Phone:       req.Phone,
		BPNumber:    req.BPNumber,
		Designation: req.Designation,
		Department:  req.Department,
		Unit:        req.Unit,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOfficerResponse(officer))
}

type statusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

func (h HandlerSet) SetOfficerStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "detail": err.Error()})
		return
	}

	if err := h.officerService.SetStatus(c.Request.Context(), c.Param("id"), models.Status(req.Status)); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type adminRoleRequest struct {
	Admin *bool `json:"admin" binding:"required"`
}

func (h HandlerSet) SetOfficerAdminRole(c *gin.Context) {
	var req adminRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "detail": err.Error()})
		return
	}

	officer, err := h.officerService.SetAdminRole(c.Request.Context(), c.Param("id"), *req.Admin)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOfficerResponse(officer))
}

func (h HandlerSet) DeleteOfficer(c *gin.Context) {
	var requesterOfficerID string
	if principalVal, ok := c.Get(middleware.ContextPrincipal); ok {
		if principal, ok := principalVal.(authz.Principal); ok && principal.Officer != nil {
			requesterOfficerID = principal.Officer.ID
		}
	}

	if err := h.officerService.Delete(c.Request.Context(), c.Param("id"), requesterOfficerID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) ListOfficers(c *gin.Context) {
	page, err := h.officerService.List(c.Request.Context(), service.ListOfficersInput{
		Search:      c.Query("search"),
		Name:        c.Query("name"),
		PhoneFilter: c.Query("phone"),
		Designation: c.Query("designation"),
		Department:  c.Query("department"),
		Unit:        c.Query("unit"),
		BPNumber:    c.Query("bpNumber"),
		Status:      c.Query("status"),
		Page:        c.Query("page"),
		Limit:       c.Query("limit"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]officerResponse, 0, len(page.Items))
	for _, o := range page.Items {
		items = append(items, toOfficerResponse(o))
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": page.Total,
		"page":  page.Page,
		"pages": page.Pages,
	})
}
