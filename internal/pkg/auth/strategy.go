package auth

import (
	"errors"
	"time"

	"github.com/polkiloo/tradedesk/internal/domain/model"
)

var ErrInvalidToken = errors.New("invalid auth token")

type Strategy interface {
	IssueToken(identity model.Identity) (string, error)
	ParseToken(token string) (model.Identity, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
