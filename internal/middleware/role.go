package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"daisy/internal/domain"
	"daisy/internal/pkg/response"
)

// RequireRole ensures that the authenticated user has the specified role
func RequireRole(requiredRole domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ctxRole)
		if !exists {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
			return
		}

		if r, _ := role.(string); r != string(requiredRole) {
			response.Abort(c, http.StatusForbidden, response.CodeForbidden, "Access denied: insufficient permissions")
			return
		}

		c.Next()
	}
}

// AdminOnly middleware requires staff rights
func AdminOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}

// IsStaff reports whether the caller authenticated with staff rights.
func IsStaff(c *gin.Context) bool {
	return c.GetString(ctxRole) == string(domain.RoleAdmin)
}

// UserID returns the authenticated user id, or 0 for anonymous callers.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}
