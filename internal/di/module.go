package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/tradedesk/internal/adapter/market"
	"github.com/polkiloo/tradedesk/internal/app"
	"github.com/polkiloo/tradedesk/internal/config"
	"github.com/polkiloo/tradedesk/internal/logger"
	"github.com/polkiloo/tradedesk/internal/pkg/auth"
	"github.com/polkiloo/tradedesk/internal/server/http/handlers"
	"github.com/polkiloo/tradedesk/internal/server/http/router"
	"github.com/polkiloo/tradedesk/internal/storage"
	"github.com/polkiloo/tradedesk/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		storage.Module,
		market.Module,
		usecase.Module,
		fx.Provide(func(f *app.TradingFacade) handlers.TradingFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
