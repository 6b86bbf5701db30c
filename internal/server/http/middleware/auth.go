package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/tradedesk/internal/domain/errors"
	"github.com/polkiloo/tradedesk/internal/domain/model"
	pkgAuth "github.com/polkiloo/tradedesk/internal/pkg/auth"
)

const (
	// IdentityContextKey is a gin context key for the authenticated identity.
	IdentityContextKey = "identity"
	authCookieName     = "tradedesk_token"
)

// Identifier resolves a session token to a live account identity.
type Identifier interface {
	Identify(ctx context.Context, token string) (model.Identity, error)
}

// AuthRequired ensures the request carries a token of an existing user.
func AuthRequired(identifier Identifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.String(http.StatusUnauthorized, "missing token")
			c.Abort()
			return
		}

		identity, err := identifier.Identify(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, pkgAuth.ErrInvalidToken):
				c.String(http.StatusUnauthorized, "invalid token")
			case errors.Is(err, domainErrors.ErrNotFound):
				c.String(http.StatusNotFound, "user not found")
			default:
				_ = c.Error(err)
				c.String(http.StatusInternalServerError, "internal error")
			}
			c.Abort()
			return
		}

		c.Set(IdentityContextKey, identity)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie writes auth token cookie to response.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(authCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}
