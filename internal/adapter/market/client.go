package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/tradedesk/internal/domain/errors"
	"github.com/polkiloo/tradedesk/internal/domain/model"
)

const (
	dateLayout        = "2006-01-02"
	defaultRetryAfter = 5 * time.Second
)

// HTTPProvider loads end-of-day bars from an EODHD compatible API.
type HTTPProvider struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// bar mirrors one element of the upstream JSON array.
type bar struct {
	Date   string          `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume decimal.Decimal `json:"volume"`
}

// NewHTTPProvider creates provider with default timeout.
func NewHTTPProvider(baseURL, apiKey string, logger *slog.Logger) (*HTTPProvider, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse market url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("market url must be absolute")
	}
	return &HTTPProvider{
		baseURL: parsed,
		apiKey:  apiKey,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Series fetches the daily quote series for symbol.
func (c *HTTPProvider) Series(ctx context.Context, symbol string) (*model.Market, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/eod/", symbol)
	query := endpoint.Query()
	query.Set("fmt", "json")
	query.Set("api_token", c.apiKey)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		var bars []bar
		if err := json.Unmarshal(body, &bars); err != nil {
			return nil, fmt.Errorf("decode quotes for %s: %w", symbol, err)
		}
		return toMarket(symbol, bars)
	case http.StatusNotFound:
		return nil, domainErrors.ErrUnknownSymbol
	case http.StatusTooManyRequests:
		return nil, domainErrors.RateLimitedError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("quote request failed",
			slog.String("symbol", symbol),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return nil, domainErrors.UpstreamError{Status: resp.StatusCode}
	}
}

func toMarket(symbol string, bars []bar) (*model.Market, error) {
	m := &model.Market{Symbol: symbol, StockPrices: make([]model.PricePoint, 0, len(bars))}
	for _, b := range bars {
		ts, err := time.Parse(dateLayout, b.Date)
		if err != nil {
			return nil, fmt.Errorf("parse quote date %q: %w", b.Date, err)
		}
		m.StockPrices = append(m.StockPrices, model.PricePoint{
			Timestamp: ts,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume.IntPart(),
		})
	}
	sort.SliceStable(m.StockPrices, func(i, j int) bool {
		return m.StockPrices[i].Timestamp.Before(m.StockPrices[j].Timestamp)
	})
	return m, nil
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return defaultRetryAfter
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return max(time.Duration(seconds)*time.Second, 0)
	}
	if t, err := http.ParseTime(header); err == nil {
		return max(time.Until(t), 0)
	}
	return defaultRetryAfter
}
