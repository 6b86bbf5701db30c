package postgres

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// migrate applies embedded goose migrations through a database/sql view of the pool.
var migrate = func(ctx context.Context, pool pgxPool) error {
	p, ok := pool.(*pgxpool.Pool)
	if !ok {
		return fmt.Errorf("migrations require *pgxpool.Pool, got %T", pool)
	}

	db := stdlib.OpenDBFromPool(p)
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}
