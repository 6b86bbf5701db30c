// Package storage selects the user store backing the service.
package storage

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/tradedesk/internal/config"
	"github.com/polkiloo/tradedesk/internal/domain/repository"
	"github.com/polkiloo/tradedesk/internal/storage/file"
	"github.com/polkiloo/tradedesk/internal/storage/postgres"
)

// Store is implemented by every user store backend.
type Store interface {
	repository.Factory
	repository.HealthChecker
}

// Module wires the configured store and exposes its repositories.
var Module = fx.Options(
	fx.Provide(newStore),
	fx.Provide(
		func(s Store) repository.UserRepository { return s.Users() },
		func(s Store) repository.HealthChecker { return s },
	),
)

type storeParams struct {
	fx.In

	Ctx       context.Context
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

// openPostgres and openFile are swapped in tests.
var (
	openPostgres = func(ctx context.Context, lc fx.Lifecycle, dsn string, logger *slog.Logger) (Store, error) {
		s, err := postgres.Open(ctx, lc, dsn, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	openFile = func(path string, logger *slog.Logger) (Store, error) {
		s, err := file.Open(path, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
)

func newStore(p storeParams) (Store, error) {
	if p.Config.DatabaseURI != "" {
		p.Logger.Info("using postgres user store")
		return openPostgres(p.Ctx, p.Lifecycle, p.Config.DatabaseURI, p.Logger)
	}
	p.Logger.Info("using file user store", slog.String("path", p.Config.UsersFile))
	return openFile(p.Config.UsersFile, p.Logger)
}
