package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrAlreadyExists       = errors.New("already exists")
	ErrNotFound            = errors.New("not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrInvalidSymbol       = errors.New("invalid symbol")
	ErrInvalidCount        = errors.New("invalid count")
	ErrUnknownSymbol       = errors.New("unknown symbol")

	// ErrNoQuotes means the symbol is known but its series has no bars.
	ErrNoQuotes = errors.New("no quotes available")
)

// UpstreamError reports a non-success answer of the quote provider.
type UpstreamError struct {
	Status int
}

func (e UpstreamError) Error() string {
	return fmt.Sprintf("quote provider responded with status %d", e.Status)
}

// RateLimitedError signals the quote provider asked to back off.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e RateLimitedError) Error() string {
	return fmt.Sprintf("quote provider rate limited, retry after %s", e.RetryAfter)
}
