package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/tradedesk/internal/config"
	domainErrors "github.com/polkiloo/tradedesk/internal/domain/errors"
	"github.com/polkiloo/tradedesk/internal/domain/model"
	testhelpers "github.com/polkiloo/tradedesk/internal/test"
	"github.com/polkiloo/tradedesk/internal/usecase"
)

var day = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func series(symbol string, closes ...int64) *model.Market {
	m := &model.Market{Symbol: symbol}
	for i, c := range closes {
		m.StockPrices = append(m.StockPrices, model.PricePoint{
			Timestamp: day.AddDate(0, 0, i),
			Close:     decimal.NewFromInt(c),
		})
	}
	return m
}

func newFacade(health error) (*TradingFacade, *testhelpers.UserRepositoryStub, *testhelpers.QuoteCacheStub) {
	cfg := &config.Config{
		StartingBalance: decimal.NewFromInt(50000),
		MarketSymbols:   []string{"AAPL.US", "TSLA.US"},
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	users := testhelpers.NewUserRepositoryStub()
	quotes := &testhelpers.QuoteCacheStub{Markets: map[string]*model.Market{
		"AAPL.US": series("AAPL.US", 100, 110),
		"TSLA.US": series("TSLA.US", 200, 180),
		"EMPTY":   {Symbol: "EMPTY"},
	}}
	accounts := usecase.NewAccountUseCase(users, testhelpers.HasherStub{}, testhelpers.StrategyStub{}, cfg)
	markets := usecase.NewMarketUseCase(quotes, cfg, logger)
	return NewTradingFacade(accounts, markets, testhelpers.HealthCheckerStub{Err: health}), users, quotes
}

func TestTradingFacadeAccountFlow(t *testing.T) {
	ctx := context.Background()
	facade, users, _ := newFacade(nil)

	if err := facade.SignUp(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("sign up returned error: %v", err)
	}
	if err := facade.SignUp(ctx, "alice", "pw2"); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	user, token, err := facade.SignIn(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("sign in returned error: %v", err)
	}
	if !user.Balance.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("unexpected starting balance %s", user.Balance)
	}

	identity, err := facade.Identify(ctx, token)
	if err != nil {
		t.Fatalf("identify returned error: %v", err)
	}
	if identity.ID != user.ID {
		t.Fatalf("unexpected identity %+v", identity)
	}

	account, err := facade.SetFavoriteStock(ctx, user.ID, "aapl.us")
	if err != nil {
		t.Fatalf("set favorite returned error: %v", err)
	}
	if account.FavoriteStock != "AAPL.US" {
		t.Fatalf("expected upper-cased favorite, got %q", account.FavoriteStock)
	}
	account, err = facade.Account(ctx, user.ID)
	if err != nil || account.FavoriteStock != "AAPL.US" {
		t.Fatalf("unexpected account %+v err %v", account, err)
	}

	if err := facade.DeleteUser(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	if users.Len() != 0 {
		t.Fatalf("expected store to be empty")
	}
	if _, err := facade.Identify(ctx, token); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected stale token to be rejected, got %v", err)
	}
}

func TestTradingFacadeBuy(t *testing.T) {
	ctx := context.Background()
	facade, _, _ := newFacade(nil)
	if err := facade.SignUp(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("sign up returned error: %v", err)
	}
	user, _, _ := facade.SignIn(ctx, "alice", "pw1")

	account, err := facade.Buy(ctx, user.ID, "aapl.us", "3")
	if err != nil {
		t.Fatalf("buy returned error: %v", err)
	}
	if !account.Balance.Equal(decimal.NewFromInt(50000 - 330)) {
		t.Fatalf("unexpected balance %s", account.Balance)
	}
	if len(account.Holdings) != 1 {
		t.Fatalf("expected one holding, got %d", len(account.Holdings))
	}
	lot := account.Holdings[0]
	if lot.Symbol != "AAPL.US" || lot.Quantity != 3 || !lot.Price.Equal(decimal.NewFromInt(110)) || !lot.Timestamp.Equal(day.AddDate(0, 0, 1)) {
		t.Fatalf("unexpected holding %+v", lot)
	}

	tests := []struct {
		name     string
		symbol   string
		quantity string
		want     error
	}{
		{name: "non numeric quantity", symbol: "AAPL.US", quantity: "abc", want: domainErrors.ErrInvalidQuantity},
		{name: "zero quantity", symbol: "AAPL.US", quantity: "0", want: domainErrors.ErrInvalidQuantity},
		{name: "unknown symbol", symbol: "NOPE", quantity: "1", want: domainErrors.ErrUnknownSymbol},
		{name: "empty series", symbol: "EMPTY", quantity: "1", want: domainErrors.ErrNoQuotes},
		{name: "insufficient balance", symbol: "AAPL.US", quantity: "1000", want: domainErrors.ErrInsufficientBalance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := facade.Buy(ctx, user.ID, tt.symbol, tt.quantity); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	account, _ = facade.Account(ctx, user.ID)
	if len(account.Holdings) != 1 || !account.Balance.Equal(decimal.NewFromInt(49670)) {
		t.Fatalf("rejected buys must not change the account: %+v", account)
	}
}

func TestTradingFacadeMarkets(t *testing.T) {
	ctx := context.Background()
	facade, _, quotes := newFacade(nil)

	market, err := facade.Market(ctx, "aapl.us")
	if err != nil || len(market.StockPrices) != 2 {
		t.Fatalf("unexpected market %+v err %v", market, err)
	}
	point, err := facade.LatestPrice(ctx, "TSLA.US")
	if err != nil || !point.Close.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("unexpected latest %+v err %v", point, err)
	}

	all, err := facade.Markets(ctx)
	if err != nil || len(all) != 2 || all[0].Symbol != "AAPL.US" {
		t.Fatalf("unexpected markets %+v err %v", all, err)
	}

	gainers, err := facade.Gainers(ctx, "1")
	if err != nil || len(gainers) != 1 || gainers[0].Symbol != "AAPL.US" {
		t.Fatalf("unexpected gainers %+v err %v", gainers, err)
	}
	losers, err := facade.Losers(ctx, "10")
	if err != nil || len(losers) != 2 || losers[0].Symbol != "TSLA.US" {
		t.Fatalf("unexpected losers %+v err %v", losers, err)
	}
	if _, err := facade.Gainers(ctx, "-1"); !errors.Is(err, domainErrors.ErrInvalidCount) {
		t.Fatalf("expected invalid count, got %v", err)
	}
	if _, err := facade.Losers(ctx, "x"); !errors.Is(err, domainErrors.ErrInvalidCount) {
		t.Fatalf("expected invalid count, got %v", err)
	}

	if got := facade.Universe(); len(got) != 2 || got[0] != "AAPL.US" || got[1] != "TSLA.US" {
		t.Fatalf("unexpected universe %v", got)
	}
	if err := facade.RefreshMarket(ctx, "tsla.us"); err != nil {
		t.Fatalf("refresh returned error: %v", err)
	}
	if refreshed := quotes.RefreshedSymbols(); len(refreshed) != 1 || refreshed[0] != "TSLA.US" {
		t.Fatalf("unexpected refreshed symbols %v", refreshed)
	}
}

func TestTradingFacadeHealth(t *testing.T) {
	facade, _, _ := newFacade(nil)
	if err := facade.Health(context.Background()); err != nil {
		t.Fatalf("expected healthy store, got %v", err)
	}

	down := errors.New("connection refused")
	facade, _, _ = newFacade(down)
	if err := facade.Health(context.Background()); !errors.Is(err, down) {
		t.Fatalf("expected health error, got %v", err)
	}
}
