package cache

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/janhq/trading-agents/internal/metrics"
)

const (
	DefaultAnalysisTTL = 1800 * time.Second

	// recomputeLockTTL bounds how long another process waits on a crashed holder. It also
	// bounds the shared compute, so the lock never outlives the work it guards.
	recomputeLockTTL = 2 * time.Minute
)

// ComputeFunc produces a fresh analysis result on a cache miss.
type ComputeFunc func(ctx context.Context) (any, error)

// AnalysisCache stores analyst output keyed by analyst type and symbol.
type AnalysisCache struct {
	store *Store
	group singleflight.Group
}

func NewAnalysisCache(store *Store) *AnalysisCache {
	return &AnalysisCache{store: store}
}

func AnalysisKey(symbol, analystType string) string {
	return joinKey(AnalysisPrefix, analystType, symbol)
}

// SetResult caches result. ttl <= 0 uses DefaultAnalysisTTL.
func (c *AnalysisCache) SetResult(ctx context.Context, symbol, analystType string, result any, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = DefaultAnalysisTTL
	}
	return c.store.Set(ctx, AnalysisKey(symbol, analystType), result, ttl)
}

func (c *AnalysisCache) GetResult(ctx context.Context, symbol, analystType string) (any, bool) {
	value, ok := c.store.Get(ctx, AnalysisKey(symbol, analystType))
	if ok {
		metrics.RecordCacheHit(AnalysisPrefix)
	} else {
		metrics.RecordCacheMiss(AnalysisPrefix)
	}
	return value, ok
}

// InvalidateSymbol drops the results of every analyst for symbol.
func (c *AnalysisCache) InvalidateSymbol(ctx context.Context, symbol string) int64 {
	return c.store.ClearPattern(ctx, joinKey(AnalysisPrefix, "*", escapeGlob(symbol)))
}

// GetOrCompute returns the cached result or runs compute and caches what it returns.
// Concurrent callers in this process share one compute; across processes a backend lock
// serialises recomputation and the cache is checked again once the lock is held. Errors
// from compute are returned and nothing is cached. A failed cache write is not an error.
// The computing caller gets compute's value as is; later hits return the decoded form.
//
// The shared compute keeps the first caller's values but not its cancellation and is
// bounded by recomputeLockTTL. Each caller stops waiting when its own ctx is done.
func (c *AnalysisCache) GetOrCompute(ctx context.Context, symbol, analystType string, compute ComputeFunc) (any, error) {
	if value, ok := c.GetResult(ctx, symbol, analystType); ok {
		return value, nil
	}

	key := AnalysisKey(symbol, analystType)
	ch := c.group.DoChan(key, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), recomputeLockTTL)
		defer cancel()

		unlock := c.store.Lock(shared, "lock:"+key, recomputeLockTTL)
		defer unlock()

		if value, ok := c.store.Get(shared, key); ok {
			return value, nil
		}

		result, err := compute(shared)
		if err != nil {
			return nil, fmt.Errorf("compute %s analysis for %s: %w", analystType, symbol, err)
		}
		c.SetResult(shared, symbol, analystType, result, 0)
		return result, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
