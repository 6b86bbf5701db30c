// Package file implements the user store as a single JSON document on disk.
//
// Every mutation rewrites the whole document through a temporary file in the
// same directory followed by a rename, so readers of the file never observe a
// partially written collection.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/tradedesk/internal/domain/errors"
	"github.com/polkiloo/tradedesk/internal/domain/model"
	"github.com/polkiloo/tradedesk/internal/domain/repository"
)

type record struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Password      string          `json:"password"`
	Balance       decimal.Decimal `json:"balance"`
	FavoriteStock string          `json:"favoriteStock,omitempty"`
	Stocks        []stock         `json:"stocks,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type stock struct {
	Symbol    string          `json:"symbol"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}

// Store keeps the collection in memory and mirrors it to path.
// Mutations are serialized; reads run concurrently.
type Store struct {
	path   string
	logger *slog.Logger

	mu    sync.RWMutex
	users []model.User

	newID func() string
	now   func() time.Time
}

// Open loads the collection from path. A missing file is an empty collection.
func Open(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{
		path:   path,
		logger: logger,
		newID:  uuid.NewString,
		now:    time.Now,
	}

	users, err := load(path)
	if err != nil {
		return nil, err
	}
	s.users = users
	logger.Info("file user store ready", slog.String("path", path), slog.Int("users", len(users)))
	return s, nil
}

// Users returns the store itself as repository.UserRepository.
func (s *Store) Users() repository.UserRepository {
	return s
}

// HealthCheck reports whether the store directory is still reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("stat store dir: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.users), nil
}

func (s *Store) GetByName(ctx context.Context, name string) (*model.User, error) {
	return s.find(ctx, func(u model.User) bool { return u.Name == name })
}

func (s *Store) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.find(ctx, func(u model.User) bool { return u.ID == id })
}

func (s *Store) Create(ctx context.Context, user model.User) (*model.User, error) {
	created := user.Clone()
	err := s.mutate(ctx, func(users []model.User) ([]model.User, error) {
		if indexOf(users, func(u model.User) bool { return u.Name == created.Name }) >= 0 {
			return nil, domainErrors.ErrAlreadyExists
		}
		created.ID = s.newID()
		created.CreatedAt = s.now().UTC()
		return append(users, created), nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, func(users []model.User) ([]model.User, error) {
		i := indexOf(users, func(u model.User) bool { return u.ID == id })
		if i < 0 {
			return nil, domainErrors.ErrNotFound
		}
		return append(users[:i], users[i+1:]...), nil
	})
}

func (s *Store) Update(ctx context.Context, id string, fn func(*model.User) error) (*model.User, error) {
	var updated model.User
	err := s.mutate(ctx, func(users []model.User) ([]model.User, error) {
		i := indexOf(users, func(u model.User) bool { return u.ID == id })
		if i < 0 {
			return nil, domainErrors.ErrNotFound
		}
		next := users[i].Clone()
		if err := fn(&next); err != nil {
			return nil, err
		}
		next.ID = users[i].ID
		users[i] = next
		updated = next.Clone()
		return users, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) find(ctx context.Context, match func(model.User) bool) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := indexOf(s.users, match)
	if i < 0 {
		return nil, domainErrors.ErrNotFound
	}
	u := s.users[i].Clone()
	return &u, nil
}

// mutate hands fn a private copy of the collection and swaps it in only after
// the result has been written to disk.
func (s *Store) mutate(ctx context.Context, fn func([]model.User) ([]model.User, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(cloneAll(s.users))
	if err != nil {
		return err
	}
	if err := save(s.path, next); err != nil {
		s.logger.Error("persist users", slog.String("path", s.path), slog.Any("error", err))
		return err
	}
	s.users = next
	return nil
}

func load(path string) ([]model.User, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}
	if len(content) == 0 {
		return nil, nil
	}

	var records []record
	if err := json.Unmarshal(content, &records); err != nil {
		return nil, fmt.Errorf("decode users file %s: %w", path, err)
	}

	users := make([]model.User, 0, len(records))
	for _, r := range records {
		users = append(users, r.toModel())
	}
	return users, nil
}

func save(path string, users []model.User) error {
	records := make([]record, 0, len(users))
	for _, u := range users {
		records = append(records, fromModel(u))
	}
	content, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace users file: %w", err)
	}
	return nil
}

func fromModel(u model.User) record {
	r := record{
		ID:            u.ID,
		Name:          u.Name,
		Password:      u.PasswordHash,
		Balance:       u.Balance,
		FavoriteStock: u.FavoriteStock,
		CreatedAt:     u.CreatedAt,
	}
	for _, h := range u.Holdings {
		r.Stocks = append(r.Stocks, stock(h))
	}
	return r
}

func (r record) toModel() model.User {
	u := model.User{
		ID:            r.ID,
		Name:          r.Name,
		PasswordHash:  r.Password,
		Balance:       r.Balance,
		FavoriteStock: r.FavoriteStock,
		CreatedAt:     r.CreatedAt,
	}
	for _, s := range r.Stocks {
		u.Holdings = append(u.Holdings, model.Holding(s))
	}
	return u
}

func indexOf(users []model.User, match func(model.User) bool) int {
	for i, u := range users {
		if match(u) {
			return i
		}
	}
	return -1
}

func cloneAll(users []model.User) []model.User {
	out := make([]model.User, len(users))
	for i, u := range users {
		out[i] = u.Clone()
	}
	return out
}
