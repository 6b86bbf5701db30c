package test

import (
	"context"
	"strconv"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/tradedesk/internal/domain/errors"
	"github.com/polkiloo/tradedesk/internal/domain/model"
	"github.com/polkiloo/tradedesk/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	mu    sync.Mutex
	users []model.User
	next  int

	// Err, when set, is returned by every call.
	Err error
	// UpdateErr, when set, is returned by Update before fn runs.
	UpdateErr error
}

// NewUserRepositoryStub constructs stub repository pre-filled with users.
func NewUserRepositoryStub(users ...model.User) *UserRepositoryStub {
	s := &UserRepositoryStub{}
	for _, u := range users {
		s.users = append(s.users, u.Clone())
	}
	return s
}

// List returns copies of stored users.
func (s *UserRepositoryStub) List(ctx context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Clone())
	}
	return out, nil
}

// GetByName fetches user by name or returns not found.
func (s *UserRepositoryStub) GetByName(ctx context.Context, name string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.users {
		if u.Name == name {
			c := u.Clone()
			return &c, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if i := s.indexByID(id); i >= 0 {
		c := s.users[i].Clone()
		return &c, nil
	}
	return nil, domainErrors.ErrNotFound
}

// Create assigns a sequential id unless the name is taken.
func (s *UserRepositoryStub) Create(ctx context.Context, user model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.users {
		if u.Name == user.Name {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	s.next++
	user.ID = "user-" + strconv.Itoa(s.next)
	user.CreatedAt = time.Unix(0, 0).UTC()
	s.users = append(s.users, user.Clone())
	return &user, nil
}

// Delete removes user by identifier.
func (s *UserRepositoryStub) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if i := s.indexByID(id); i >= 0 {
		s.users = append(s.users[:i], s.users[i+1:]...)
		return nil
	}
	return domainErrors.ErrNotFound
}

// Update applies fn to a copy and stores it only when fn succeeds.
func (s *UserRepositoryStub) Update(ctx context.Context, id string, fn func(*model.User) error) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if s.UpdateErr != nil {
		return nil, s.UpdateErr
	}
	i := s.indexByID(id)
	if i < 0 {
		return nil, domainErrors.ErrNotFound
	}
	c := s.users[i].Clone()
	if err := fn(&c); err != nil {
		return nil, err
	}
	s.users[i] = c.Clone()
	return &c, nil
}

// Len reports the number of stored users.
func (s *UserRepositoryStub) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *UserRepositoryStub) indexByID(id string) int {
	for i, u := range s.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// QuoteCacheStub serves fixed markets and records refreshes.
type QuoteCacheStub struct {
	mu        sync.Mutex
	Markets   map[string]*model.Market
	Errs      map[string]error
	SeriesFn  func(context.Context, string) (*model.Market, error)
	Refreshed []string
}

// Series returns the configured market for symbol.
func (s *QuoteCacheStub) Series(ctx context.Context, symbol string) (*model.Market, error) {
	if s.SeriesFn != nil {
		return s.SeriesFn(ctx, symbol)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.Errs[symbol]; ok {
		return nil, err
	}
	m, ok := s.Markets[symbol]
	if !ok {
		return nil, domainErrors.ErrUnknownSymbol
	}
	c := *m
	c.StockPrices = append([]model.PricePoint(nil), m.StockPrices...)
	return &c, nil
}

// Refresh records the symbol and behaves like Series.
func (s *QuoteCacheStub) Refresh(ctx context.Context, symbol string) (*model.Market, error) {
	s.mu.Lock()
	s.Refreshed = append(s.Refreshed, symbol)
	s.mu.Unlock()
	return s.Series(ctx, symbol)
}

// RefreshedSymbols returns a snapshot of refreshed symbols.
func (s *QuoteCacheStub) RefreshedSymbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Refreshed...)
}

// HealthCheckerStub reports a configured health state.
type HealthCheckerStub struct {
	Err error
}

// HealthCheck returns the configured error.
func (s HealthCheckerStub) HealthCheck(ctx context.Context) error {
	return s.Err
}

var (
	_ repository.UserRepository = (*UserRepositoryStub)(nil)
	_ repository.QuoteCache     = (*QuoteCacheStub)(nil)
	_ repository.HealthChecker  = HealthCheckerStub{}
)
