package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Goh0809/Eventora-Backend/pkg/response"
	"github.com/gin-gonic/gin"
)

const (
	ContextKeyUserID      = "user_id"
	ContextKeyEmail       = "email"
	ContextKeyAccessToken = "access_token"

	bearerPrefix = "Bearer "
)

// Principal is the authenticated caller
type Principal struct {
	UserID string
	Email  string
}

// TokenVerifier resolves a bearer token to its owner
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*Principal, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the caller in the context
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header is required")
			return
		}

		if len(authHeader) <= len(bearerPrefix) || !strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid authorization header format")
			return
		}
		token := strings.TrimSpace(authHeader[len(bearerPrefix):])

		principal, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil || principal == nil || principal.UserID == "" {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Could not validate credentials")
			return
		}

		c.Set(ContextKeyUserID, principal.UserID)
		c.Set(ContextKeyEmail, principal.Email)
		c.Set(ContextKeyAccessToken, token)
		c.Next()
	}
}

// GetUserID returns the authenticated user id
func GetUserID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextKeyUserID)
	return id, id != ""
}
