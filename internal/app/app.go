package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/tradedesk/internal/config"
	"github.com/polkiloo/tradedesk/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewTradingFacade,
		newHTTPServer,
		newMarketRefresher,
	),
	fx.Invoke(registerLifecycle),
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 2 * time.Minute
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:              p.Config.RunAddress,
		Handler:           p.Router,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
}

type workerParams struct {
	fx.In

	Facade *TradingFacade
	Config *config.Config
	Logger *slog.Logger
}

func newMarketRefresher(p workerParams) *worker.MarketRefresher {
	return worker.NewMarketRefresher(
		p.Facade,
		p.Config.MarketRefreshInterval,
		p.Config.WorkerPoolSize,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Worker     *worker.MarketRefresher
	Config     *config.Config
}

// registerLifecycle appends the refresher hook before the server hook so
// fx stops the server first and in-flight requests still see fresh quotes.
func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// fx cancels ctx once startup completes.
			p.Worker.Start(context.WithoutCancel(ctx))
			p.Logger.Info("market refresher started",
				slog.Duration("interval", p.Config.MarketRefreshInterval),
				slog.Int("workers", p.Config.WorkerPoolSize),
			)
			return nil
		},
		OnStop: func(context.Context) error {
			p.Worker.Stop()
			p.Logger.Info("market refresher stopped")
			return nil
		},
	})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return serve(p)
		},
		OnStop: func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
				defer cancel()
			}
			if err := p.Server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("tradedesk stopped")
			return nil
		},
	})
}

// serve binds the listener synchronously so address errors fail startup,
// then serves in the background. Later failures trigger an fx shutdown.
func serve(p lifecycleParams) error {
	ln, err := net.Listen("tcp", p.Server.Addr)
	if err != nil {
		return err
	}
	p.Logger.Info("starting tradedesk", slog.String("addr", ln.Addr().String()))
	go func() {
		if err := p.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.Logger.Error("http server terminated", slog.String("error", err.Error()))
			_ = p.Shutdowner.Shutdown()
		}
	}()
	return nil
}
