package usecase

import (
	"context"
	"log/slog"
	"sort"

	"github.com/polkiloo/tradedesk/internal/config"
	domainErrors "github.com/polkiloo/tradedesk/internal/domain/errors"
	"github.com/polkiloo/tradedesk/internal/domain/model"
	"github.com/polkiloo/tradedesk/internal/domain/repository"
)

// MarketUseCase answers quote queries over the configured universe.
type MarketUseCase struct {
	quotes   repository.QuoteCache
	universe []string
	logger   *slog.Logger
}

// NewMarketUseCase constructs MarketUseCase.
func NewMarketUseCase(quotes repository.QuoteCache, cfg *config.Config, logger *slog.Logger) *MarketUseCase {
	universe := make([]string, 0, len(cfg.MarketSymbols))
	seen := make(map[string]struct{}, len(cfg.MarketSymbols))
	for _, s := range cfg.MarketSymbols {
		symbol, err := NormalizeSymbol(s)
		if err != nil {
			logger.Warn("skipping invalid universe symbol", slog.String("symbol", s))
			continue
		}
		if _, dup := seen[symbol]; dup {
			continue
		}
		seen[symbol] = struct{}{}
		universe = append(universe, symbol)
	}
	sort.Strings(universe)
	return &MarketUseCase{quotes: quotes, universe: universe, logger: logger}
}

// Universe returns the symbols served by the /markets endpoints.
func (u *MarketUseCase) Universe() []string {
	return append([]string(nil), u.universe...)
}

// Market returns the full quote series for symbol.
func (u *MarketUseCase) Market(ctx context.Context, symbol string) (*model.Market, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	return u.quotes.Series(ctx, symbol)
}

// Latest returns the most recent price point for symbol.
func (u *MarketUseCase) Latest(ctx context.Context, symbol string) (model.PricePoint, error) {
	m, err := u.Market(ctx, symbol)
	if err != nil {
		return model.PricePoint{}, err
	}
	latest, ok := m.Latest()
	if !ok {
		return model.PricePoint{}, domainErrors.ErrNoQuotes
	}
	return latest, nil
}

// Refresh forces an upstream fetch of symbol.
func (u *MarketUseCase) Refresh(ctx context.Context, symbol string) error {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return err
	}
	_, err = u.quotes.Refresh(ctx, symbol)
	return err
}

// All summarizes every symbol of the universe. Symbols that cannot be
// loaded are logged and left out.
func (u *MarketUseCase) All(ctx context.Context) ([]model.MarketSummary, error) {
	summaries := make([]model.MarketSummary, 0, len(u.universe))
	for _, symbol := range u.universe {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := u.quotes.Series(ctx, symbol)
		if err != nil {
			u.logger.Warn("market unavailable", slog.String("symbol", symbol), slog.String("error", err.Error()))
			continue
		}
		summary, ok := m.Summarize()
		if !ok {
			continue
		}
		summary.Symbol = symbol
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Gainers returns the count best performers by change percent.
func (u *MarketUseCase) Gainers(ctx context.Context, count int) ([]model.MarketSummary, error) {
	return u.top(ctx, count, func(a, b model.MarketSummary) bool {
		return a.ChangePercent.GreaterThan(b.ChangePercent)
	})
}

// Losers returns the count worst performers by change percent.
func (u *MarketUseCase) Losers(ctx context.Context, count int) ([]model.MarketSummary, error) {
	return u.top(ctx, count, func(a, b model.MarketSummary) bool {
		return a.ChangePercent.LessThan(b.ChangePercent)
	})
}

func (u *MarketUseCase) top(ctx context.Context, count int, before func(a, b model.MarketSummary) bool) ([]model.MarketSummary, error) {
	if count <= 0 {
		return nil, domainErrors.ErrInvalidCount
	}
	all, err := u.All(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return before(all[i], all[j]) })
	if count > len(all) {
		count = len(all)
	}
	return all[:count], nil
}
