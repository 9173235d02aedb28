package middleware

import (
	"context"
	"strings"

	"healthcare-app-server/internal/apperror"
	"healthcare-app-server/internal/models"
	"healthcare-app-server/internal/services"
	"healthcare-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	contextUserID    = "userID"
	contextUserRole  = "userRole"
	contextPrincipal = "principal"
)

// Authenticator resolves a bearer token to the calling principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Principal, error)
}

// AuthMiddleware creates a middleware for JWT authentication.
func AuthMiddleware(auth Authenticator, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "No token provided, authorization denied")
			c.Abort()
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		principal, err := auth.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			utils.RespondError(c, log, err)
			c.Abort()
			return
		}

		// Set user information in context for downstream handlers
		c.Set(contextUserID, principal.AccountID)
		c.Set(contextUserRole, principal.Role)
		c.Set(contextPrincipal, principal)

		c.Next()
	}
}

// RoleAuthMiddleware creates a middleware for role-based authorization.
// It should be used *after* AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRoleFromContext(c)
		if !ok {
			utils.RespondError(c, nil, apperror.Internal("User role not found in context", nil))
			c.Abort()
			return
		}

		if err := services.RequireRole(role, allowedRoles...); err != nil {
			utils.RespondError(c, nil, err)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetPrincipal returns the authenticated caller set by AuthMiddleware.
func GetPrincipal(c *gin.Context) (*services.Principal, bool) {
	value, exists := c.Get(contextPrincipal)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*services.Principal)
	return principal, ok
}

// Helper function to get user ID from context
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get(contextUserID)
	if !exists {
		return "", false
	}
	idStr, ok := userID.(string)
	return idStr, ok
}

// Helper function to get user role from context
func GetUserRoleFromContext(c *gin.Context) (models.Role, bool) {
	userRole, exists := c.Get(contextUserRole)
	if !exists {
		return "", false
	}
	role, ok := userRole.(models.Role)
	return role, ok
}
