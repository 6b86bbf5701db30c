package test

import (
	"context"
	"errors"
	"strings"

	"github.com/polkiloo/tradedesk/internal/domain/model"
	pkgAuth "github.com/polkiloo/tradedesk/internal/pkg/auth"
)

// HasherStub provides deterministic hashing for tests.
type HasherStub struct {
	HashFn    func(string) (string, error)
	CompareFn func(string, string) error
}

// Hash returns a predictable hash for the supplied password.
func (h HasherStub) Hash(password string) (string, error) {
	if h.HashFn != nil {
		return h.HashFn(password)
	}
	return "hash:" + password, nil
}

// Compare validates password against stored hash.
func (h HasherStub) Compare(hash string, password string) error {
	if h.CompareFn != nil {
		return h.CompareFn(hash, password)
	}
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// StrategyStub encodes identities as "id|name" unless overridden.
type StrategyStub struct {
	IssueFn func(model.Identity) (string, error)
	ParseFn func(string) (model.Identity, error)
	NameVal string
}

// IssueToken returns deterministic tokens for tests.
func (s StrategyStub) IssueToken(identity model.Identity) (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn(identity)
	}
	return identity.ID + "|" + identity.Name, nil
}

// ParseToken parses tokens produced by IssueToken.
func (s StrategyStub) ParseToken(token string) (model.Identity, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	id, name, ok := strings.Cut(token, "|")
	if !ok || id == "" {
		return model.Identity{}, pkgAuth.ErrInvalidToken
	}
	return model.Identity{ID: id, Name: name}, nil
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

// IdentifierStub implements the middleware identity contract.
type IdentifierStub struct {
	Identity   model.Identity
	Err        error
	IdentifyFn func(context.Context, string) (model.Identity, error)
}

// Identify either delegates to override or returns predefined result.
func (s IdentifierStub) Identify(ctx context.Context, token string) (model.Identity, error) {
	if s.IdentifyFn != nil {
		return s.IdentifyFn(ctx, token)
	}
	if s.Err != nil {
		return model.Identity{}, s.Err
	}
	return s.Identity, nil
}

var _ pkgAuth.PasswordHasher = HasherStub{}
var _ pkgAuth.Strategy = StrategyStub{}
