package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is one bar of a quote series.
type PricePoint struct {
	Timestamp time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    int64
}

// Market is a quote series for a symbol ordered by timestamp ascending.
type Market struct {
	Symbol      string
	StockPrices []PricePoint
}

// Latest returns the most recent price point.
func (m Market) Latest() (PricePoint, bool) {
	if len(m.StockPrices) == 0 {
		return PricePoint{}, false
	}
	return m.StockPrices[len(m.StockPrices)-1], true
}

// MarketSummary describes last move of a symbol.
type MarketSummary struct {
	Symbol        string
	Price         decimal.Decimal
	PreviousClose decimal.Decimal
	Change        decimal.Decimal
	ChangePercent decimal.Decimal
	Timestamp     time.Time
}

// Summarize derives the day move from the last two bars.
func (m Market) Summarize() (MarketSummary, bool) {
	latest, ok := m.Latest()
	if !ok {
		return MarketSummary{}, false
	}
	summary := MarketSummary{
		Symbol:        m.Symbol,
		Price:         latest.Close,
		PreviousClose: latest.Open,
		Timestamp:     latest.Timestamp,
	}
	if n := len(m.StockPrices); n > 1 {
		summary.PreviousClose = m.StockPrices[n-2].Close
	}
	summary.Change = summary.Price.Sub(summary.PreviousClose)
	if !summary.PreviousClose.IsZero() {
		summary.ChangePercent = summary.Change.Div(summary.PreviousClose).Mul(decimal.NewFromInt(100)).Round(4)
	}
	return summary, true
}
