package market

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	domainErrors "github.com/polkiloo/tradedesk/internal/domain/errors"
	"github.com/polkiloo/tradedesk/internal/domain/model"
	"github.com/polkiloo/tradedesk/internal/domain/repository"
)

const (
	lastGoodPrefix = "last:"
	// loadTimeout bounds a shared upstream load once it is detached from its callers.
	loadTimeout = 30 * time.Second
)

// CachedProvider memoizes series for ttl and keeps the last good series per
// symbol to answer while the upstream is rate limiting or failing.
// Concurrent misses for one symbol share a single upstream call.
type CachedProvider struct {
	next     repository.QuoteProvider
	cache    *cache.Cache
	inflight singleflight.Group
	logger   *slog.Logger
}

// NewCachedProvider wraps next with a TTL cache.
func NewCachedProvider(next repository.QuoteProvider, ttl time.Duration, logger *slog.Logger) *CachedProvider {
	return &CachedProvider{
		next:   next,
		cache:  cache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// Series returns cached series for symbol or fetches it.
func (c *CachedProvider) Series(ctx context.Context, symbol string) (*model.Market, error) {
	key := cacheKey(symbol)
	if cached, ok := c.cache.Get(key); ok {
		return cloneMarket(cached.(*model.Market)), nil
	}
	return c.fetch(ctx, symbol)
}

// Refresh bypasses the TTL entry and fetches symbol upstream.
func (c *CachedProvider) Refresh(ctx context.Context, symbol string) (*model.Market, error) {
	return c.fetch(ctx, symbol)
}

// fetch joins or starts the shared load for symbol. The load runs detached
// from ctx so one caller giving up does not fail the others waiting on it.
func (c *CachedProvider) fetch(ctx context.Context, symbol string) (*model.Market, error) {
	key := cacheKey(symbol)
	ch := c.inflight.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return c.load(loadCtx, key, symbol)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneMarket(res.Val.(*model.Market)), nil
	}
}

func (c *CachedProvider) load(ctx context.Context, key, symbol string) (*model.Market, error) {
	series, err := c.next.Series(ctx, symbol)
	if err != nil {
		if stale, ok := c.lastGood(key, err); ok {
			c.logger.Warn("serving stale quotes", slog.String("symbol", symbol), slog.String("error", err.Error()))
			return stale, nil
		}
		return nil, err
	}

	c.cache.SetDefault(key, series)
	c.cache.Set(lastGoodPrefix+key, series, cache.NoExpiration)
	return series, nil
}

func (c *CachedProvider) lastGood(key string, err error) (*model.Market, bool) {
	var (
		limited  domainErrors.RateLimitedError
		upstream domainErrors.UpstreamError
	)
	if !errors.As(err, &limited) && !errors.As(err, &upstream) {
		return nil, false
	}
	cached, ok := c.cache.Get(lastGoodPrefix + key)
	if !ok {
		return nil, false
	}
	return cached.(*model.Market), true
}

func cacheKey(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func cloneMarket(m *model.Market) *model.Market {
	c := *m
	c.StockPrices = append([]model.PricePoint(nil), m.StockPrices...)
	return &c
}
