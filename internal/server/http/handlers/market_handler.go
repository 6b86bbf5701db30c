package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/tradedesk/internal/server/http/dto"
)

const noQuotes = "no quotes available"

// MarketHandler serves quote and trading endpoints.
type MarketHandler struct {
	facade MarketFacade
}

// NewMarketHandler creates MarketHandler instance.
func NewMarketHandler(facade MarketFacade) *MarketHandler {
	return &MarketHandler{facade: facade}
}

// Market handles GET /market.
func (h *MarketHandler) Market(c *gin.Context) {
	symbol, ok := requireQuery(c, "symbol")
	if !ok {
		return
	}
	market, err := h.facade.Market(c.Request.Context(), symbol)
	if err != nil {
		writeError(c, err, noQuotes)
		return
	}
	c.JSON(http.StatusOK, dto.NewMarketResponse(market))
}

// Latest handles GET /market/latest.
func (h *MarketHandler) Latest(c *gin.Context) {
	symbol, ok := requireQuery(c, "symbol")
	if !ok {
		return
	}
	point, err := h.facade.LatestPrice(c.Request.Context(), symbol)
	if err != nil {
		writeError(c, err, noQuotes)
		return
	}
	c.JSON(http.StatusOK, dto.NewPricePointResponse(point))
}

// Buy handles POST /market/buy.
func (h *MarketHandler) Buy(c *gin.Context) {
	symbol, ok := requireQuery(c, "symbol")
	if !ok {
		return
	}
	quantity, ok := requireQuery(c, "quantity")
	if !ok {
		return
	}
	user, err := h.facade.Buy(c.Request.Context(), CurrentIdentity(c).ID, symbol, quantity)
	if err != nil {
		// the account can vanish between auth and the balance update
		writeError(c, err, "user not found")
		return
	}
	c.JSON(http.StatusOK, dto.NewAccountResponse(user))
}

// Markets handles GET /markets.
func (h *MarketHandler) Markets(c *gin.Context) {
	list, err := h.facade.Markets(c.Request.Context())
	if err != nil {
		writeError(c, err, noQuotes)
		return
	}
	c.JSON(http.StatusOK, dto.NewMarketSummaries(list))
}

// Gainers handles GET /markets/gainers.
func (h *MarketHandler) Gainers(c *gin.Context) {
	count, ok := requireQuery(c, "count")
	if !ok {
		return
	}
	list, err := h.facade.Gainers(c.Request.Context(), count)
	if err != nil {
		writeError(c, err, noQuotes)
		return
	}
	c.JSON(http.StatusOK, dto.NewMarketSummaries(list))
}

// Losers handles GET /markets/losers.
func (h *MarketHandler) Losers(c *gin.Context) {
	count, ok := requireQuery(c, "count")
	if !ok {
		return
	}
	list, err := h.facade.Losers(c.Request.Context(), count)
	if err != nil {
		writeError(c, err, noQuotes)
		return
	}
	c.JSON(http.StatusOK, dto.NewMarketSummaries(list))
}

func requireQuery(c *gin.Context, name string) (string, bool) {
	value := c.Query(name)
	if value == "" {
		c.String(http.StatusBadRequest, "missing "+name+" query parameter")
		return "", false
	}
	return value, true
}
