package cache

import (
	"context"
	"time"

	"github.com/janhq/trading-agents/internal/metrics"
)

const (
	DefaultPriceTTL      = 300 * time.Second
	DefaultIndicatorsTTL = 600 * time.Second
)

// MarketDataCache stores quotes and technical indicators per symbol under the
// market_data prefix. Prices go stale fastest and carry the shortest default TTL.
type MarketDataCache struct {
	store *Store
}

func NewMarketDataCache(store *Store) *MarketDataCache {
	return &MarketDataCache{store: store}
}

func PriceKey(symbol string) string {
	return joinKey(MarketDataPrefix, "price", symbol)
}

func IndicatorsKey(symbol string) string {
	return joinKey(MarketDataPrefix, "indicators", symbol)
}

// SetPrice caches price data for symbol. ttl <= 0 uses DefaultPriceTTL.
func (c *MarketDataCache) SetPrice(ctx context.Context, symbol string, data any, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = DefaultPriceTTL
	}
	return c.store.Set(ctx, PriceKey(symbol), data, ttl)
}

func (c *MarketDataCache) GetPrice(ctx context.Context, symbol string) (any, bool) {
	return c.get(ctx, "price", PriceKey(symbol))
}

// SetIndicators caches indicator data for symbol. ttl <= 0 uses DefaultIndicatorsTTL.
func (c *MarketDataCache) SetIndicators(ctx context.Context, symbol string, data any, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = DefaultIndicatorsTTL
	}
	return c.store.Set(ctx, IndicatorsKey(symbol), data, ttl)
}

func (c *MarketDataCache) GetIndicators(ctx context.Context, symbol string) (any, bool) {
	return c.get(ctx, "indicators", IndicatorsKey(symbol))
}

// InvalidateSymbol drops every market data entry for symbol and returns how many were removed.
func (c *MarketDataCache) InvalidateSymbol(ctx context.Context, symbol string) int64 {
	return c.store.ClearPattern(ctx, joinKey(MarketDataPrefix, "*", escapeGlob(symbol)))
}

func (c *MarketDataCache) get(ctx context.Context, kind, key string) (any, bool) {
	value, ok := c.store.Get(ctx, key)
	if ok {
		metrics.RecordCacheHit(MarketDataPrefix + "_" + kind)
	} else {
		metrics.RecordCacheMiss(MarketDataPrefix + "_" + kind)
	}
	return value, ok
}
