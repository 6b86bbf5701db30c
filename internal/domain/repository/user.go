package repository

import (
	"context"

	"github.com/polkiloo/tradedesk/internal/domain/model"
)

// UserRepository describes persistence operations for user accounts.
type UserRepository interface {
	List(ctx context.Context) ([]model.User, error)
	GetByName(ctx context.Context, name string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, user model.User) (*model.User, error)
	// Delete removes the record with id. A record re-created under the same
	// name carries a new id and is left alone.
	Delete(ctx context.Context, id string) error
	// Update applies fn to the stored record atomically. Nothing is persisted when fn fails.
	Update(ctx context.Context, id string, fn func(*model.User) error) (*model.User, error)
}

// HealthChecker is implemented by stores able to report connectivity.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
