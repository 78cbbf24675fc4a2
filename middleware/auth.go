package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobfill/services"
	"jobfill/utils"
)

const (
	ContextClient = "client"
	ContextScope  = "scope"
)

// TokenValidator checks a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(token string) (*services.Claims, error)
}

// Auth requires a valid bearer token and stores its subject and scope on
// the context.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			utils.UnauthorizedError(c, "Authorization header required")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		claims, err := validator.ValidateToken(token)
		if err != nil {
			utils.LogDebug("token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			utils.UnauthorizedError(c, "Invalid or expired token")
			return
		}

		c.Set(ContextClient, claims.Subject)
		c.Set(ContextScope, claims.Scope)
		c.Next()
	}
}

// RequireScope rejects tokens minted for a different scope. It must run
// after Auth.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextScope) != scope {
			utils.ErrorResponseWithCode(c, 403, "Token scope does not allow this action", nil)
			return
		}
		c.Next()
	}
}
