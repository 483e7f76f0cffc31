package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/models"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/service"
)

type accountResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email,omitempty"`
	Phone     string  `json:"phone,omitempty"`
	Class     string  `json:"class"`
	Status    string  `json:"status"`
	OfficerID *string `json:"officerId,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

func toAccountResponse(a models.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		Class:     string(a.Class),
		Status:    string(a.Status),
		OfficerID: a.OfficerID,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

func (h HandlerSet) ListAccounts(c *gin.Context) {
	page, err := h.accountService.List(c.Request.Context(), service.ListAccountsInput{
		Search: c.Query("search"),
		Class:  c.Query("class"),
		Status: c.Query("status"),
		Page:   c.Query("page"),
		Limit:  c.Query("limit"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]accountResponse, 0, len(page.Items))
	for _, a := range page.Items {
		items = append(items, toAccountResponse(a))
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": page.Total,
		"page":  page.Page,
		"pages": page.Pages,
	})
}

func (h HandlerSet) GetAccount(c *gin.Context) {
	account, err := h.accountService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAccountResponse(account))
}

type updateAccountRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
}

func (h HandlerSet) UpdateAccount(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "detail": err.Error()})
		return
	}

	account, err := h.accountService.UpdateProfile(c.Request.Context(), c.Param("id"), service.UpdateAccountInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAccountResponse(account))
}

func (h HandlerSet) SetAccountStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "detail": err.Error()})
		return
	}

	if err := h.accountService.SetStatus(c.Request.Context(), c.Param("id"), models.Status(req.Status)); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

func (h HandlerSet) ChangeAccountPassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "detail": err.Error()})
		return
	}

	if err := h.accountService.ChangePassword(c.Request.Context(), c.Param("id"), req.CurrentPassword, req.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) DeleteAccount(c *gin.Context) {
	if err := h.accountService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
