package handlers

import (
	"context"

	"github.com/polkiloo/tradedesk/internal/domain/model"
	"github.com/polkiloo/tradedesk/internal/server/http/middleware"
)

// UserFacade describes account capabilities required by handlers.
type UserFacade interface {
	SignUp(ctx context.Context, name, password string) error
	SignIn(ctx context.Context, name, password string) (*model.User, string, error)
	DeleteUser(ctx context.Context, name, password string) error
	Account(ctx context.Context, id string) (*model.User, error)
	SetFavoriteStock(ctx context.Context, id, symbol string) (*model.User, error)
}

// MarketFacade exposes quote and trading operations. Raw query values are
// passed through so parsing rules live next to the domain.
type MarketFacade interface {
	Market(ctx context.Context, symbol string) (*model.Market, error)
	LatestPrice(ctx context.Context, symbol string) (model.PricePoint, error)
	Buy(ctx context.Context, userID, symbol, quantity string) (*model.User, error)
	Markets(ctx context.Context) ([]model.MarketSummary, error)
	Gainers(ctx context.Context, count string) ([]model.MarketSummary, error)
	Losers(ctx context.Context, count string) ([]model.MarketSummary, error)
}

// HealthFacade reports readiness of backing services.
type HealthFacade interface {
	Health(ctx context.Context) error
}

// TradingFacade aggregates the full set of operations used across handlers.
type TradingFacade interface {
	UserFacade
	MarketFacade
	HealthFacade
	middleware.Identifier
}
