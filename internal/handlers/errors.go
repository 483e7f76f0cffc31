package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/phone"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/repository"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/service"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/storage"
)

// respondError maps domain failures to HTTP responses. Inactive-principal and
// forbidden conditions stay distinct codes so clients can tell them apart.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "detail": err.Error()})
	case errors.Is(err, phone.ErrPhoneTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone_too_short"})
	case errors.Is(err, storage.ErrUnsupportedPhotoType):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_photo_type"})
	case errors.Is(err, service.ErrOfficerInactive):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "officer_inactive"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
	case errors.Is(err, service.ErrAccountInactive):
		c.JSON(http.StatusForbidden, gin.H{"error": "account_inactive"})
	case errors.Is(err, service.ErrSelfDeletion):
		c.JSON(http.StatusForbidden, gin.H{"error": "self_deletion_forbidden"})
	case errors.Is(err, repository.ErrAccountNotFound),
		errors.Is(err, repository.ErrOfficerNotFound),
		errors.Is(err, repository.ErrVisitNotFound),
		errors.Is(err, repository.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, repository.ErrEmailConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "email_conflict"})
	case errors.Is(err, repository.ErrPhoneConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "phone_conflict"})
	case errors.Is(err, repository.ErrBPNumberConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "bp_number_conflict"})
	case errors.Is(err, service.ErrProtectedAccount):
		c.JSON(http.StatusConflict, gin.H{"error": "protected_account"})
	default:
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
