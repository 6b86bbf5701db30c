package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/tradedesk/internal/domain/errors"
	"github.com/polkiloo/tradedesk/internal/domain/model"
	"github.com/polkiloo/tradedesk/internal/server/http/middleware"
)

// CurrentIdentity extracts authenticated identity from context.
func CurrentIdentity(c *gin.Context) model.Identity {
	val, ok := c.Get(middleware.IdentityContextKey)
	if !ok {
		return model.Identity{}
	}
	identity, _ := val.(model.Identity)
	return identity
}

// writeError translates domain errors into a plain-text response.
// notFound is the message used for ErrNotFound in the caller's context.
func writeError(c *gin.Context, err error, notFound string) {
	var (
		limited  domainErrors.RateLimitedError
		upstream domainErrors.UpstreamError
	)
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		c.String(http.StatusNotFound, notFound)
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		c.String(http.StatusBadRequest, "user already exists")
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		c.String(http.StatusUnauthorized, "password is incorrect")
	case errors.Is(err, domainErrors.ErrInvalidSymbol):
		c.String(http.StatusBadRequest, "invalid symbol")
	case errors.Is(err, domainErrors.ErrNoQuotes):
		c.String(http.StatusNotFound, "no quotes available")
	case errors.Is(err, domainErrors.ErrUnknownSymbol):
		c.String(http.StatusNotFound, "unknown symbol")
	case errors.Is(err, domainErrors.ErrInvalidQuantity):
		c.String(http.StatusBadRequest, "invalid quantity")
	case errors.Is(err, domainErrors.ErrInvalidAmount):
		c.String(http.StatusBadRequest, "invalid price")
	case errors.Is(err, domainErrors.ErrInsufficientBalance):
		c.String(http.StatusBadRequest, "insufficient balance")
	case errors.Is(err, domainErrors.ErrInvalidCount):
		c.String(http.StatusBadRequest, "invalid count")
	case errors.As(err, &limited):
		c.Header("Retry-After", strconv.Itoa(int(limited.RetryAfter.Seconds())))
		c.String(http.StatusTooManyRequests, "quote provider rate limited")
	case errors.As(err, &upstream):
		c.String(upstream.Status, "quote provider error")
	default:
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "internal error")
	}
}
