package cachehandler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/janhq/trading-agents/internal/infrastructure/cache"
	"github.com/janhq/trading-agents/internal/interfaces/httpserver/responses"
)

type CacheHandler struct {
	market   *cache.MarketDataCache
	analysis *cache.AnalysisCache
}

func NewCacheHandler(market *cache.MarketDataCache, analysis *cache.AnalysisCache) *CacheHandler {
	return &CacheHandler{market: market, analysis: analysis}
}

type CachedValueResponse struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type InvalidateResponse struct {
	Symbol     string `json:"symbol"`
	MarketData int64  `json:"market_data"`
	Analysis   int64  `json:"analysis"`
}

// GetPrice handles GET /v1/cache/market-data/:symbol/price.
func (h *CacheHandler) GetPrice(c *gin.Context) {
	symbol := normalizeSymbol(c.Param("symbol"))
	value, ok := h.market.GetPrice(c.Request.Context(), symbol)
	h.respond(c, cache.PriceKey(symbol), value, ok)
}

// GetIndicators handles GET /v1/cache/market-data/:symbol/indicators.
func (h *CacheHandler) GetIndicators(c *gin.Context) {
	symbol := normalizeSymbol(c.Param("symbol"))
	value, ok := h.market.GetIndicators(c.Request.Context(), symbol)
	h.respond(c, cache.IndicatorsKey(symbol), value, ok)
}

// GetAnalysis handles GET /v1/cache/analysis/:symbol/:analyst_type.
func (h *CacheHandler) GetAnalysis(c *gin.Context) {
	symbol := normalizeSymbol(c.Param("symbol"))
	analystType := c.Param("analyst_type")
	value, ok := h.analysis.GetResult(c.Request.Context(), symbol, analystType)
	h.respond(c, cache.AnalysisKey(symbol, analystType), value, ok)
}

// InvalidateSymbol handles DELETE /v1/cache/symbols/:symbol and drops every cached entry
// for the symbol in both domains.
func (h *CacheHandler) InvalidateSymbol(c *gin.Context) {
	symbol := normalizeSymbol(c.Param("symbol"))
	ctx := c.Request.Context()

	resp := InvalidateResponse{
		Symbol:     symbol,
		MarketData: h.market.InvalidateSymbol(ctx, symbol),
		Analysis:   h.analysis.InvalidateSymbol(ctx, symbol),
	}
	log.Ctx(ctx).Info().
		Str("symbol", symbol).
		Int64("market_data", resp.MarketData).
		Int64("analysis", resp.Analysis).
		Msg("symbol cache invalidated")
	c.JSON(http.StatusOK, resp)
}

func (h *CacheHandler) respond(c *gin.Context, key string, value any, ok bool) {
	if !ok {
		responses.Error(c, http.StatusNotFound, "not cached: "+key)
		return
	}
	c.JSON(http.StatusOK, CachedValueResponse{Key: key, Value: value})
}

func normalizeSymbol(raw string) string {
	return strings.TrimSpace(raw)
}
