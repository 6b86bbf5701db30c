package logger

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/tradedesk/internal/config"
)

// Module wires slog logger for dependency injection.
var Module = fx.Provide(newLogger)

func newLogger(lc fx.Lifecycle, cfg *config.Config) *slog.Logger {
	l, closer := New(Options{Level: cfg.LogLevel, File: cfg.LogFile})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return closer.Close()
		},
	})
	return l
}
