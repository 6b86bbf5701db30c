package dto

import (
	"time"

	"github.com/polkiloo/tradedesk/internal/domain/model"
)

// PricePointResponse is one bar of a quote series.
type PricePointResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// MarketResponse is the quote series of a symbol.
type MarketResponse struct {
	Symbol      string               `json:"symbol"`
	StockPrices []PricePointResponse `json:"stockPrices"`
}

// MarketSummaryResponse is one entry of the /markets lists.
type MarketSummaryResponse struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	PreviousClose float64   `json:"previousClose"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewPricePointResponse(p model.PricePoint) PricePointResponse {
	return PricePointResponse{
		Timestamp: p.Timestamp,
		Open:      p.Open.InexactFloat64(),
		High:      p.High.InexactFloat64(),
		Low:       p.Low.InexactFloat64(),
		Close:     p.Close.InexactFloat64(),
		Volume:    p.Volume,
	}
}

func NewMarketResponse(m *model.Market) MarketResponse {
	resp := MarketResponse{Symbol: m.Symbol, StockPrices: make([]PricePointResponse, 0, len(m.StockPrices))}
	for _, p := range m.StockPrices {
		resp.StockPrices = append(resp.StockPrices, NewPricePointResponse(p))
	}
	return resp
}

func NewMarketSummaries(summaries []model.MarketSummary) []MarketSummaryResponse {
	resp := make([]MarketSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, MarketSummaryResponse{
			Symbol:        s.Symbol,
			Price:         s.Price.InexactFloat64(),
			PreviousClose: s.PreviousClose.InexactFloat64(),
			Change:        s.Change.InexactFloat64(),
			ChangePercent: s.ChangePercent.InexactFloat64(),
			Timestamp:     s.Timestamp,
		})
	}
	return resp
}
