package repository

import (
	"context"

	"github.com/polkiloo/tradedesk/internal/domain/model"
)

// QuoteProvider supplies quote series for symbols.
type QuoteProvider interface {
	Series(ctx context.Context, symbol string) (*model.Market, error)
}

// QuoteCache is a QuoteProvider that can be forced to fetch upstream.
type QuoteCache interface {
	QuoteProvider
	Refresh(ctx context.Context, symbol string) (*model.Market, error)
}
