package app

import (
	"context"

	"github.com/polkiloo/tradedesk/internal/domain/model"
	"github.com/polkiloo/tradedesk/internal/domain/repository"
	"github.com/polkiloo/tradedesk/internal/usecase"
)

type TradingFacade struct {
	accounts *usecase.AccountUseCase
	markets  *usecase.MarketUseCase
	health   repository.HealthChecker
}

func NewTradingFacade(accounts *usecase.AccountUseCase, markets *usecase.MarketUseCase, health repository.HealthChecker) *TradingFacade {
	return &TradingFacade{accounts: accounts, markets: markets, health: health}
}

func (f *TradingFacade) SignUp(ctx context.Context, name, password string) error {
	_, err := f.accounts.SignUp(ctx, name, password)
	return err
}

func (f *TradingFacade) SignIn(ctx context.Context, name, password string) (*model.User, string, error) {
	return f.accounts.SignIn(ctx, name, password)
}

func (f *TradingFacade) DeleteUser(ctx context.Context, name, password string) error {
	return f.accounts.Delete(ctx, name, password)
}

func (f *TradingFacade) Identify(ctx context.Context, token string) (model.Identity, error) {
	return f.accounts.Identify(ctx, token)
}

func (f *TradingFacade) Account(ctx context.Context, id string) (*model.User, error) {
	return f.accounts.Account(ctx, id)
}

func (f *TradingFacade) SetFavoriteStock(ctx context.Context, id, symbol string) (*model.User, error) {
	return f.accounts.SetFavoriteStock(ctx, id, symbol)
}

func (f *TradingFacade) Market(ctx context.Context, symbol string) (*model.Market, error) {
	return f.markets.Market(ctx, symbol)
}

func (f *TradingFacade) LatestPrice(ctx context.Context, symbol string) (model.PricePoint, error) {
	return f.markets.Latest(ctx, symbol)
}

// Buy fills the order at the close of the latest quoted bar.
func (f *TradingFacade) Buy(ctx context.Context, userID, symbol, quantity string) (*model.User, error) {
	qty, err := usecase.ParseQuantity(quantity)
	if err != nil {
		return nil, err
	}
	point, err := f.markets.Latest(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return f.accounts.Buy(ctx, userID, symbol, qty, point.Close, point.Timestamp)
}

func (f *TradingFacade) Markets(ctx context.Context) ([]model.MarketSummary, error) {
	return f.markets.All(ctx)
}

func (f *TradingFacade) Gainers(ctx context.Context, count string) ([]model.MarketSummary, error) {
	n, err := usecase.ParseCount(count)
	if err != nil {
		return nil, err
	}
	return f.markets.Gainers(ctx, n)
}

func (f *TradingFacade) Losers(ctx context.Context, count string) ([]model.MarketSummary, error) {
	n, err := usecase.ParseCount(count)
	if err != nil {
		return nil, err
	}
	return f.markets.Losers(ctx, n)
}

func (f *TradingFacade) Health(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}

func (f *TradingFacade) Universe() []string {
	return f.markets.Universe()
}

func (f *TradingFacade) RefreshMarket(ctx context.Context, symbol string) error {
	return f.markets.Refresh(ctx, symbol)
}
