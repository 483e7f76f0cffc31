package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/authz"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/middleware"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/models"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/security"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/service"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
}

type principalResponse struct {
	Kind        string  `json:"kind"`
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Class       string  `json:"class,omitempty"`
	Designation string  `json:"designation,omitempty"`
	Department  string  `json:"department,omitempty"`
	Status      string  `json:"status"`
	IsAdmin     bool    `json:"isAdmin,omitempty"`
	OfficerID   *string `json:"officerId,omitempty"`
}

type authResponse struct {
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
	Principal    principalResponse `json:"principal"`
}

func principalFromResult(result service.AuthResult) principalResponse {
	switch {
	case result.Account != nil:
		a := result.Account
		return principalResponse{
			Kind:      string(models.PrincipalAccount),
			ID:        a.ID,
			Name:      a.Name,
			Email:     a.Email,
			Phone:     a.Phone,
			Class:     string(a.Class),
			Status:    string(a.Status),
			OfficerID: a.OfficerID,
		}
	case result.Officer != nil:
		o := result.Officer
		return principalResponse{
			Kind:        string(models.PrincipalOfficer),
			ID:          o.ID,
			Name:        o.Name,
			Phone:       o.Phone,
			Designation: o.Designation,
			Department:  o.Department,
			Status:      string(o.Status),
			IsAdmin:     o.HasAdminRole(),
		}
	}
	return principalResponse{}
}

func (h HandlerSet) RegisterAccount(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "detail": err.Error()})
		return
	}

	result, err := h.authService.RegisterAccount(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	sendAuthResponse(c, result)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "detail": err.Error()})
		return
	}

	result, err := h.authService.LoginAccount(c.Request.Context(), service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	sendAuthResponse(c, result)
}

type officerLoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) OfficerLogin(c *gin.Context) {
	var req officerLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "detail": err.Error()})
		return
	}

	result, err := h.authService.LoginOfficer(c.Request.Context(), service.OfficerLoginInput{
		Phone:     req.Phone,
		Password:  req.Password,
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	sendAuthResponse(c, result)
}

type refreshRequest struct {
	Kind         string `json:"kind" binding:"required"`
	PrincipalID  string `json:"principalId" binding:"required"`
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func (h HandlerSet) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "detail": err.Error()})
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), service.RefreshInput{
		Kind:         models.PrincipalKind(req.Kind),
		PrincipalID:  req.PrincipalID,
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	sendAuthResponse(c, result)
}

func (h HandlerSet) Logout(c *gin.Context) {
	claimsVal, _ := c.Get(middleware.ContextClaims)
	claims, ok := claimsVal.(security.AccessClaims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims.SessionID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Me returns the resolved permission descriptor alongside the principal, so
// the front end never derives capabilities on its own.
func (h HandlerSet) Me(c *gin.Context) {
	principalVal, _ := c.Get(middleware.ContextPrincipal)
	principal, ok := principalVal.(authz.Principal)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	permsVal, _ := c.Get(middleware.ContextPermissions)
	perms, ok := permsVal.(authz.Permissions)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	resp := principalFromResult(service.AuthResult{
		Account: principal.Account,
		Officer: principal.Officer,
	})

	c.JSON(http.StatusOK, gin.H{
		"principal": resp,
		"permissions": gin.H{
			"effectiveClass":         string(perms.EffectiveClass),
			"canManageOfficers":      perms.CanManageOfficers,
			"canViewAllVisitors":     perms.CanViewAllVisitors,
			"canViewOwnVisitorsOnly": perms.CanViewOwnVisitorsOnly,
			"canCreateVisitor":       perms.CanCreateVisitor,
		},
	})
}

func sendAuthResponse(c *gin.Context, result service.AuthResult) {
	c.JSON(http.StatusOK, authResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Principal:    principalFromResult(result),
	})
}
