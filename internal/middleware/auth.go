package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ArbeitTechnology/cid-visitor-backend/internal/authz"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/config"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/models"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/repository"
	"github.com/ArbeitTechnology/cid-visitor-backend/internal/security"
)

// Context keys set by Auth for downstream handlers.
const (
	ContextPermissions = "permissions"
	ContextPrincipal   = "principal"
	ContextClaims      = "access_claims"
)

// Auth validates the bearer token, loads the live principal record, resolves
// its permission set, and stashes everything in the gin context. Distinct
// failures get distinct responses: bad tokens and vanished principals are
// 401, inactive principals are 403.
func Auth(cfg *config.AppConfig, accounts *repository.AccountRepository, officers *repository.OfficerRepository, sessions *repository.SessionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ParseAccessToken(tokenStr, cfg.Security.JWTAccessSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		session, err := sessions.GetByID(c.Request.Context(), claims.SessionID)
		if err != nil || session.PrincipalID != claims.PrincipalID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_not_found"})
			return
		}

		principal := authz.Principal{
			Kind: models.PrincipalKind(claims.PrincipalKind),
		}
		for _, r := range claims.Roles {
			principal.IssuedRoles = append(principal.IssuedRoles, models.Role(r))
		}

		switch principal.Kind {
		case models.PrincipalAccount:
			account, err := accounts.GetByID(c.Request.Context(), claims.PrincipalID)
			if err != nil {
				if errors.Is(err, repository.ErrAccountNotFound) {
					c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "principal_not_found"})
					return
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
				return
			}
			principal.Account = &account

		case models.PrincipalOfficer:
			officer, err := officers.GetByID(c.Request.Context(), claims.PrincipalID)
			if err != nil {
				if errors.Is(err, repository.ErrOfficerNotFound) {
					c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "principal_not_found"})
					return
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
				return
			}
			principal.Officer = &officer

		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		perms, err := authz.Resolve(principal)
		if err != nil {
			if errors.Is(err, authz.ErrAccountInactive) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account_inactive"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		_ = sessions.Touch(c.Request.Context(), session.ID, c.ClientIP(), c.GetHeader("User-Agent"))

		c.Set(ContextClaims, *claims)
		c.Set(ContextPrincipal, principal)
		c.Set(ContextPermissions, perms)

		c.Next()
	}
}

// Require gates a route group on a capability of the resolved permission set.
func Require(check func(authz.Permissions) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		permsVal, exists := c.Get(ContextPermissions)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		perms, ok := permsVal.(authz.Permissions)
		if !ok || !check(perms) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}
