package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/authz"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/export"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/ids"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/middleware"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/models"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/service"
)

type createVisitRequest struct {
	VisitorName string  `json:"visitorName" binding:"required"`
	Phone       string  `json:"phone" binding:"required"`
	Address     string  `json:"address"`
	Purpose     string  `json:"purpose" binding:"required"`
	OfficerID   string  `json:"officerId" binding:"required"`
	PhotoKey    *string `json:"photoKey"`
	VisitTime   string  `json:"visitTime"`
}

type visitResponse struct {
	ID                 string  `json:"id"`
	VisitorName        string  `json:"visitorName"`
	Phone              string  `json:"phone"`
	Address            string  `json:"address"`
	Purpose            string  `json:"purpose"`
	OfficerID          string  `json:"officerId"`
	OfficerName        string  `json:"officerName"`
	OfficerDesignation string  `json:"officerDesignation"`
	OfficerDepartment  string  `json:"officerDepartment"`
	OfficerUnit        string  `json:"officerUnit,omitempty"`
	OfficerStatus      string  `json:"officerStatus"`
	PhotoKey           *string `json:"photoKey,omitempty"`
	VisitTime          string  `json:"visitTime"`
	CreatedAt          string  `json:"createdAt"`
}

func toVisitResponse(v models.Visit) visitResponse {
	return visitResponse{
		ID:                 v.ID,
		VisitorName:        v.VisitorName,
		Phone:              v.Phone,
		Address:            v.Address,
		Purpose:            string(v.Purpose),
		OfficerID:          v.OfficerID,
		OfficerName:        v.OfficerName,
		OfficerDesignation: v.OfficerDesignation,
		OfficerDepartment:  v.OfficerDepartment,
		OfficerUnit:        v.OfficerUnit,
		OfficerStatus:      string(v.OfficerStatus),
		PhotoKey:           v.PhotoKey,
		VisitTime:          v.VisitTime.Format(time.RFC3339),
		CreatedAt:          v.CreatedAt.Format(time.RFC3339),
	}
}

func (h HandlerSet) CreateVisit(c *gin.Context) {
	var req createVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "detail": err.Error()})
		return
	}

	var visitTime time.Time
	if req.VisitTime != "" {
		t, err := parseTimeParam(req.VisitTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "detail": "invalid visitTime"})
			return
		}
		visitTime = t
	}

	visit, err := h.visitService.CreateVisit(c.Request.Context(), service.CreateVisitInput{
		VisitorName: req.VisitorName,
		Phone:       req.Phone,
		Address:     req.Address,
		Purpose:     models.VisitPurpose(req.Purpose),
		OfficerID:   req.OfficerID,
		PhotoKey:    req.PhotoKey,
		VisitTime:   visitTime,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toVisitResponse(visit))
}

// listVisitsInput reads the shared listing filters from the query string and
// applies officer scoping: an officer without the view-all capability only
// ever sees visits recorded against itself.
func (h HandlerSet) listVisitsInput(c *gin.Context) service.ListVisitsInput {
	input := service.ListVisitsInput{
		Search:      c.Query("search"),
		VisitorName: c.Query("visitorName"),
		PhoneFilter: c.Query("phone"),
		Address:     c.Query("address"),
		OfficerName: c.Query("officerName"),
		Department:  c.Query("department"),
		Purpose:     c.Query("purpose"),
		Page:        c.Query("page"),
		Limit:       c.Query("limit"),
	}

	if t, err := parseTimeParam(c.Query("from")); err == nil {
		input.From = &t
	}
	if t, err := parseTimeParam(c.Query("to")); err == nil {
		input.To = &t
	}

	permsVal, _ := c.Get(middleware.ContextPermissions)
	perms, _ := permsVal.(authz.Permissions)
	principalVal, _ := c.Get(middleware.ContextPrincipal)
	principal, _ := principalVal.(authz.Principal)

	if perms.CanViewOwnVisitorsOnly && !perms.CanViewAllVisitors && principal.Officer != nil {
		input.OnlyOfficerID = principal.Officer.ID
	}

	return input
}

func (h HandlerSet) ListVisits(c *gin.Context) {
	page, err := h.visitService.ListVisits(c.Request.Context(), h.listVisitsInput(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]visitResponse, 0, len(page.Items))
	for _, v := range page.Items {
		items = append(items, toVisitResponse(v))
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": page.Total,
		"page":  page.Page,
		"pages": page.Pages,
	})
}

// CheckPhone returns prior visits for a phone number so the receptionist can
// prefill the form for a returning visitor.
func (h HandlerSet) CheckPhone(c *gin.Context) {
	raw := c.Query("phone")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "detail": "phone required"})
		return
	}

	visits, err := h.visitService.PreviousVisits(c.Request.Context(), raw)
	if err != nil {
		h.respondError(c, err)
		return
	}

	items := make([]visitResponse, 0, len(visits))
	for _, v := range visits {
		items = append(items, toVisitResponse(v))
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h HandlerSet) ExportVisits(c *gin.Context) {
	visits, err := h.visitService.ExportVisits(c.Request.Context(), h.listVisitsInput(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("visits-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := export.WriteVisitsXLSX(c.Writer, visits); err != nil {
		h.log.Error().Err(err).Msg("visit export failed")
	}
}

const maxPhotoBytes = 5 << 20

func (h HandlerSet) UploadVisitPhoto(c *gin.Context) {
	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "detail": "photo file required"})
		return
	}
	defer file.Close()

	if header.Size > maxPhotoBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo_too_large"})
		return
	}

	key := ids.New() + path.Ext(header.Filename)
	contentType := header.Header.Get("Content-Type")

	stored, err := h.photos.Put(c.Request.Context(), key, contentType, file, header.Size)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"photoKey": stored})
}

func (h HandlerSet) VisitPhoto(c *gin.Context) {
	visit, err := h.visits.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if visit.PhotoKey == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}

	obj, err := h.photos.Get(c.Request.Context(), *visit.PhotoKey)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer obj.Close()

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, obj); err != nil {
		h.log.Warn().Err(err).Msg("photo stream interrupted")
	}
}

// parseTimeParam accepts RFC3339 or the date-only form the front end sends.
func parseTimeParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
