package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/tradedesk/internal/domain/errors"
)

// MarketFacade exposes the subset of application functionality required by the worker.
type MarketFacade interface {
	Universe() []string
	RefreshMarket(ctx context.Context, symbol string) error
}

// MarketRefresher periodically re-fetches quotes of the configured universe
// using a fixed pool of goroutines.
type MarketRefresher struct {
	facade   MarketFacade
	interval time.Duration
	workers  int
	logger   *slog.Logger

	jobs   chan string
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewMarketRefresher constructs refresher worker pool.
func NewMarketRefresher(facade MarketFacade, interval time.Duration, workers int, logger *slog.Logger) *MarketRefresher {
	if workers <= 0 {
		workers = 1
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &MarketRefresher{
		facade:   facade,
		interval: interval,
		workers:  workers,
		logger:   logger,
	}
}

// Start launches background refreshing. The first pass runs immediately.
func (r *MarketRefresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.jobs = make(chan string, r.workers)

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx, r.jobs)
	}

	r.wg.Add(1)
	go r.dispatch(runCtx, r.jobs)
}

// Stop cancels in-flight refreshes and waits for all goroutines to finish.
func (r *MarketRefresher) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *MarketRefresher) dispatch(ctx context.Context, jobs chan<- string) {
	defer r.wg.Done()
	defer close(jobs)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.enqueue(ctx, jobs)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.enqueue(ctx, jobs)
		}
	}
}

func (r *MarketRefresher) enqueue(ctx context.Context, jobs chan<- string) {
	for _, symbol := range r.facade.Universe() {
		select {
		case <-ctx.Done():
			return
		case jobs <- symbol:
		}
	}
}

func (r *MarketRefresher) worker(ctx context.Context, jobs <-chan string) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case symbol, ok := <-jobs:
			if !ok {
				return
			}
			r.refresh(ctx, symbol)
		}
	}
}

func (r *MarketRefresher) refresh(ctx context.Context, symbol string) {
	err := r.facade.RefreshMarket(ctx, symbol)
	if err == nil {
		return
	}

	var limited domainErrors.RateLimitedError
	switch {
	case errors.As(err, &limited):
		r.logger.Warn("quote provider rate limited", slog.String("symbol", symbol), slog.Duration("retry_after", limited.RetryAfter))
		sleep(ctx, limited.RetryAfter)
	case errors.Is(err, context.Canceled):
	case errors.Is(err, domainErrors.ErrUnknownSymbol):
		r.logger.Warn("unknown symbol in universe", slog.String("symbol", symbol))
	default:
		r.logger.Error("market refresh failed", slog.String("symbol", symbol), slog.String("error", err.Error()))
	}
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
