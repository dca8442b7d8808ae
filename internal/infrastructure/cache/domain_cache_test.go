package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketDataCache_PriceDefaultTTL(t *testing.T) {
	store, _ := newRedisStore(t)
	market := NewMarketDataCache(store)
	ctx := context.Background()

	require.True(t, market.SetPrice(ctx, "AAPL", map[string]any{"price": 150.5}, 0))

	assert.Equal(t, int64(300), store.TTL(ctx, "market_data:price:AAPL"))

	got, ok := market.GetPrice(ctx, "AAPL")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"price": 150.5}, got)
}

func TestMarketDataCache_Indicators(t *testing.T) {
	store, mr := newRedisStore(t)
	market := NewMarketDataCache(store)
	ctx := context.Background()

	require.True(t, market.SetIndicators(ctx, "AAPL", map[string]any{"rsi": 61.2}, -1))
	assert.Equal(t, int64(600), store.TTL(ctx, "market_data:indicators:AAPL"))

	require.True(t, market.SetIndicators(ctx, "MSFT", map[string]any{"rsi": 40.0}, 30*time.Second))
	assert.Equal(t, int64(30), store.TTL(ctx, "market_data:indicators:MSFT"))

	mr.FastForward(31 * time.Second)
	_, ok := market.GetIndicators(ctx, "MSFT")
	assert.False(t, ok)
	_, ok = market.GetIndicators(ctx, "AAPL")
	assert.True(t, ok)
}

func TestMarketDataCache_InvalidateSymbol(t *testing.T) {
	store, _ := newRedisStore(t)
	market := NewMarketDataCache(store)
	ctx := context.Background()

	require.True(t, market.SetPrice(ctx, "AAPL", 150.5, 0))
	require.True(t, market.SetIndicators(ctx, "AAPL", map[string]any{"rsi": 61.2}, 0))
	require.True(t, market.SetPrice(ctx, "MSFT", 410.1, 0))

	assert.Equal(t, int64(2), market.InvalidateSymbol(ctx, "AAPL"))

	_, ok := market.GetPrice(ctx, "AAPL")
	assert.False(t, ok)
	got, ok := market.GetPrice(ctx, "MSFT")
	require.True(t, ok)
	assert.Equal(t, 410.1, got)
}

func TestMarketDataCache_InvalidateEscapesGlob(t *testing.T) {
	backend, err := NewMemoryBackend(16)
	require.NoError(t, err)
	store := NewStore(backend, zerolog.Nop())
	market := NewMarketDataCache(store)
	ctx := context.Background()

	require.True(t, market.SetPrice(ctx, "AAPL", 1, 0))
	assert.Equal(t, int64(0), market.InvalidateSymbol(ctx, "*"))
	assert.True(t, store.Exists(ctx, "market_data:price:AAPL"))
}

func TestAnalysisCache_Result(t *testing.T) {
	store, _ := newRedisStore(t)
	analysis := NewAnalysisCache(store)
	ctx := context.Background()

	report := map[string]any{"signal": "buy", "confidence": 0.8}
	require.True(t, analysis.SetResult(ctx, "AAPL", "technical", report, 0))

	assert.Equal(t, int64(1800), store.TTL(ctx, "analysis:technical:AAPL"))

	got, ok := analysis.GetResult(ctx, "AAPL", "technical")
	require.True(t, ok)
	assert.Equal(t, report, got)

	_, ok = analysis.GetResult(ctx, "AAPL", "fundamental")
	assert.False(t, ok)
}

func TestAnalysisCache_InvalidateSymbol(t *testing.T) {
	store, _ := newRedisStore(t)
	analysis := NewAnalysisCache(store)
	market := NewMarketDataCache(store)
	ctx := context.Background()

	require.True(t, analysis.SetResult(ctx, "AAPL", "technical", "up", 0))
	require.True(t, analysis.SetResult(ctx, "AAPL", "news", "calm", 0))
	require.True(t, analysis.SetResult(ctx, "MSFT", "news", "busy", 0))
	require.True(t, market.SetPrice(ctx, "AAPL", 150.5, 0))

	assert.Equal(t, int64(2), analysis.InvalidateSymbol(ctx, "AAPL"))
	_, ok := analysis.GetResult(ctx, "MSFT", "news")
	assert.True(t, ok)
	_, ok = market.GetPrice(ctx, "AAPL")
	assert.True(t, ok, "analysis invalidation must not touch market data")
}

func TestAnalysisCache_GetOrCompute(t *testing.T) {
	store, _ := newRedisStore(t)
	analysis := NewAnalysisCache(store)
	ctx := context.Background()

	var calls atomic.Int32
	compute := func(context.Context) (any, error) {
		calls.Add(1)
		return map[string]any{"signal": "hold"}, nil
	}

	got, err := analysis.GetOrCompute(ctx, "AAPL", "fundamental", compute)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"signal": "hold"}, got)

	got, err = analysis.GetOrCompute(ctx, "AAPL", "fundamental", compute)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"signal": "hold"}, got)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int64(1800), store.TTL(ctx, "analysis:fundamental:AAPL"))
}

func TestAnalysisCache_GetOrComputeSharesConcurrentCalls(t *testing.T) {
	backend, err := NewMemoryBackend(64)
	require.NoError(t, err)
	analysis := NewAnalysisCache(NewStore(backend, zerolog.Nop()))
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	compute := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "bullish", nil
	}

	var wg sync.WaitGroup
	results := make([]any, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = analysis.GetOrCompute(ctx, "NVDA", "sentiment", compute)
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, "bullish", r)
	}
}

func TestAnalysisCache_GetOrComputeError(t *testing.T) {
	store, _ := newRedisStore(t)
	analysis := NewAnalysisCache(store)
	ctx := context.Background()

	boom := errors.New("provider unavailable")
	_, err := analysis.GetOrCompute(ctx, "AAPL", "news", func(context.Context) (any, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, store.Exists(ctx, "analysis:news:AAPL"))
	assert.False(t, store.Exists(ctx, "lock:analysis:news:AAPL"))
}

func TestAnalysisCache_GetOrComputeSurvivesFirstCallerCancel(t *testing.T) {
	backend, err := NewMemoryBackend(64)
	require.NoError(t, err)
	analysis := NewAnalysisCache(NewStore(backend, zerolog.Nop()))

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	compute := func(ctx context.Context) (any, error) {
		calls.Add(1)
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return "neutral", nil
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := analysis.GetOrCompute(firstCtx, "TSLA", "technical", compute)
		firstErr <- err
	}()
	<-started

	type outcome struct {
		value any
		err   error
	}
	second := make(chan outcome, 1)
	go func() {
		value, err := analysis.GetOrCompute(context.Background(), "TSLA", "technical", compute)
		second <- outcome{value, err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, "neutral", got.value)
	assert.Equal(t, int32(1), calls.Load())

	cached, ok := analysis.GetResult(context.Background(), "TSLA", "technical")
	require.True(t, ok)
	assert.Equal(t, "neutral", cached)
}
