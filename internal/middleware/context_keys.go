package middleware

import (
	"context"

	"github.com/SscSPs/budget_request_app/internal/core/domain"
	"github.com/gin-gonic/gin"
)

const principalCtxKey = contextKey("principal")

// WithPrincipal returns a copy of ctx carrying the authenticated caller.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

// GetPrincipal retrieves the authenticated caller from a standard context.
func GetPrincipal(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalCtxKey).(domain.Principal)
	return p, ok
}

// GetPrincipalFromContext retrieves the authenticated caller from the Gin context.
func GetPrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	return GetPrincipal(c.Request.Context())
}

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	p, ok := GetPrincipalFromContext(c)
	if !ok || p.UserID == "" {
		return "", false
	}
	return p.UserID, true
}
