package test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/tradedesk/internal/domain/model"
)

// UserFacadeStub provides controllable behaviour for account endpoints.
type UserFacadeStub struct {
	SignUpFn      func(context.Context, string, string) error
	SignInFn      func(context.Context, string, string) (*model.User, string, error)
	DeleteFn      func(context.Context, string, string) error
	IdentifyFn    func(context.Context, string) (model.Identity, error)
	AccountFn     func(context.Context, string) (*model.User, error)
	FavoriteFn    func(context.Context, string, string) (*model.User, error)
	DefaultUserID string
}

// SignUp delegates to provided function or succeeds.
func (s UserFacadeStub) SignUp(ctx context.Context, name, password string) error {
	if s.SignUpFn != nil {
		return s.SignUpFn(ctx, name, password)
	}
	return nil
}

// SignIn delegates to provided function or returns a default account.
func (s UserFacadeStub) SignIn(ctx context.Context, name, password string) (*model.User, string, error) {
	if s.SignInFn != nil {
		return s.SignInFn(ctx, name, password)
	}
	return &model.User{ID: s.userID(), Name: name, Balance: decimal.NewFromInt(50000)}, "token", nil
}

// DeleteUser delegates to provided function or succeeds.
func (s UserFacadeStub) DeleteUser(ctx context.Context, name, password string) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, name, password)
	}
	return nil
}

// Identify accepts any token as the default user unless overridden.
func (s UserFacadeStub) Identify(ctx context.Context, token string) (model.Identity, error) {
	if s.IdentifyFn != nil {
		return s.IdentifyFn(ctx, token)
	}
	return model.Identity{ID: s.userID(), Name: "alice"}, nil
}

// Account returns stored account or a default one.
func (s UserFacadeStub) Account(ctx context.Context, id string) (*model.User, error) {
	if s.AccountFn != nil {
		return s.AccountFn(ctx, id)
	}
	return &model.User{ID: id, Name: "alice", Balance: decimal.NewFromInt(50000)}, nil
}

// SetFavoriteStock delegates to provided function or echoes the symbol.
func (s UserFacadeStub) SetFavoriteStock(ctx context.Context, id, symbol string) (*model.User, error) {
	if s.FavoriteFn != nil {
		return s.FavoriteFn(ctx, id, symbol)
	}
	return &model.User{ID: id, Name: "alice", Balance: decimal.NewFromInt(50000), FavoriteStock: symbol}, nil
}

func (s UserFacadeStub) userID() string {
	if s.DefaultUserID != "" {
		return s.DefaultUserID
	}
	return "user-1"
}

// MarketFacadeStub simulates market endpoints.
type MarketFacadeStub struct {
	MarketFn  func(context.Context, string) (*model.Market, error)
	LatestFn  func(context.Context, string) (model.PricePoint, error)
	BuyFn     func(context.Context, string, string, string) (*model.User, error)
	MarketsFn func(context.Context) ([]model.MarketSummary, error)
	GainersFn func(context.Context, string) ([]model.MarketSummary, error)
	LosersFn  func(context.Context, string) ([]model.MarketSummary, error)
}

// Market returns configured series or a single bar.
func (s MarketFacadeStub) Market(ctx context.Context, symbol string) (*model.Market, error) {
	if s.MarketFn != nil {
		return s.MarketFn(ctx, symbol)
	}
	return &model.Market{Symbol: symbol, StockPrices: []model.PricePoint{samplePoint()}}, nil
}

// LatestPrice returns configured point or a sample bar.
func (s MarketFacadeStub) LatestPrice(ctx context.Context, symbol string) (model.PricePoint, error) {
	if s.LatestFn != nil {
		return s.LatestFn(ctx, symbol)
	}
	return samplePoint(), nil
}

// Buy delegates to provided function or returns an account with one lot.
func (s MarketFacadeStub) Buy(ctx context.Context, userID, symbol, quantity string) (*model.User, error) {
	if s.BuyFn != nil {
		return s.BuyFn(ctx, userID, symbol, quantity)
	}
	p := samplePoint()
	return &model.User{
		ID:       userID,
		Name:     "alice",
		Balance:  decimal.NewFromInt(49990),
		Holdings: []model.Holding{{Symbol: symbol, Quantity: 1, Price: p.Close, Timestamp: p.Timestamp}},
	}, nil
}

// Markets returns configured summaries.
func (s MarketFacadeStub) Markets(ctx context.Context) ([]model.MarketSummary, error) {
	if s.MarketsFn != nil {
		return s.MarketsFn(ctx)
	}
	return []model.MarketSummary{{Symbol: "AAPL.US", Price: decimal.NewFromInt(10)}}, nil
}

// Gainers returns configured summaries.
func (s MarketFacadeStub) Gainers(ctx context.Context, count string) ([]model.MarketSummary, error) {
	if s.GainersFn != nil {
		return s.GainersFn(ctx, count)
	}
	return []model.MarketSummary{{Symbol: "AAPL.US", ChangePercent: decimal.NewFromInt(2)}}, nil
}

// Losers returns configured summaries.
func (s MarketFacadeStub) Losers(ctx context.Context, count string) ([]model.MarketSummary, error) {
	if s.LosersFn != nil {
		return s.LosersFn(ctx, count)
	}
	return []model.MarketSummary{{Symbol: "TSLA.US", ChangePercent: decimal.NewFromInt(-2)}}, nil
}

// TradingFacadeStub aggregates facade dependencies for HTTP layer tests.
type TradingFacadeStub struct {
	UserFacadeStub
	MarketFacadeStub
	HealthErr error
}

// Health returns the configured error.
func (s TradingFacadeStub) Health(ctx context.Context) error {
	return s.HealthErr
}

func samplePoint() model.PricePoint {
	return model.PricePoint{
		Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Open:      decimal.NewFromInt(9),
		High:      decimal.NewFromInt(11),
		Low:       decimal.NewFromInt(8),
		Close:     decimal.NewFromInt(10),
		Volume:    1000,
	}
}

// RefresherFacadeStub mimics worker interactions with the trading facade.
type RefresherFacadeStub struct {
	Symbols   []string
	RefreshFn func(context.Context, string) error

	mu        sync.Mutex
	refreshed map[string]int
}

// Universe returns configured symbols.
func (s *RefresherFacadeStub) Universe() []string {
	return s.Symbols
}

// RefreshMarket records the call and delegates to RefreshFn.
func (s *RefresherFacadeStub) RefreshMarket(ctx context.Context, symbol string) error {
	s.mu.Lock()
	if s.refreshed == nil {
		s.refreshed = make(map[string]int)
	}
	s.refreshed[symbol]++
	s.mu.Unlock()
	if s.RefreshFn != nil {
		return s.RefreshFn(ctx, symbol)
	}
	return nil
}

// Refreshed reports how many times symbol was refreshed.
func (s *RefresherFacadeStub) Refreshed(symbol string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshed[symbol]
}
