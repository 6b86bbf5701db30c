package market

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/tradedesk/internal/config"
	"github.com/polkiloo/tradedesk/internal/domain/repository"
)

// Module exposes the cached quote provider to the fx graph.
var Module = fx.Provide(newQuoteCache)

type providerParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newQuoteCache(p providerParams) (repository.QuoteCache, error) {
	upstream, err := NewHTTPProvider(p.Config.MarketAPIURL, p.Config.MarketAPIKey, p.Logger)
	if err != nil {
		return nil, err
	}
	return NewCachedProvider(upstream, p.Config.MarketCacheTTL, p.Logger), nil
}
