package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/tidwall/match"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryBackend is a bounded in-process Backend for development and single-instance
// deployments. Least recently used keys are evicted once maxSize is reached, which plays
// the role of the remote store's own eviction policy. Patterns support '*', '?' and
// backslash escapes.
type MemoryBackend struct {
	cache *lru.Cache
	now   func() time.Time

	mu    sync.Mutex // guards read-modify-write sequences on cache
	locks sync.Map   // name -> chan struct{}
}

func NewMemoryBackend(maxSize int) (*MemoryBackend, error) {
	cache, err := lru.New(maxSize)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &MemoryBackend{cache: cache, now: time.Now}, nil
}

// lookup returns the live entry for key, dropping it when expired. Callers hold mu.
func (b *MemoryBackend) lookup(key string) (memoryEntry, bool) {
	val, ok := b.cache.Get(key)
	if !ok {
		return memoryEntry{}, false
	}
	entry := val.(memoryEntry)
	if entry.expired(b.now()) {
		b.cache.Remove(key)
		return memoryEntry{}, false
	}
	return entry, true
}

func (b *MemoryBackend) Get(_ context.Context, key string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.lookup(key)
	if !ok {
		return "", ErrNotFound
	}
	return entry.value, nil
}

func (b *MemoryBackend) Set(_ context.Context, key, value string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = b.now().Add(ttl)
	}
	b.cache.Add(key, entry)
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, keys ...string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var removed int64
	for _, key := range keys {
		if _, ok := b.lookup(key); ok {
			b.cache.Remove(key)
			removed++
		}
	}
	return removed, nil
}

func (b *MemoryBackend) Exists(_ context.Context, key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.lookup(key)
	return ok, nil
}

func (b *MemoryBackend) Expire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.lookup(key)
	if !ok {
		return false, nil
	}
	if ttl <= 0 {
		// the remote store deletes a key given a non-positive expiry
		b.cache.Remove(key)
		return true, nil
	}
	entry.expiresAt = b.now().Add(ttl)
	b.cache.Add(key, entry)
	return true, nil
}

func (b *MemoryBackend) TTL(_ context.Context, key string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.lookup(key)
	if !ok {
		return TTLMissing, nil
	}
	if entry.expiresAt.IsZero() {
		return TTLNoExpiry, nil
	}
	remaining := entry.expiresAt.Sub(b.now())
	return int64((remaining + time.Second/2) / time.Second), nil
}

func (b *MemoryBackend) Scan(_ context.Context, pattern string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var keys []string
	for _, raw := range b.cache.Keys() {
		key, ok := raw.(string)
		if !ok || !match.Match(key, pattern) {
			continue
		}
		if _, live := b.lookup(key); live {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (b *MemoryBackend) Ping(context.Context) error {
	return nil
}

func (b *MemoryBackend) Close() error {
	b.cache.Purge()
	return nil
}

// Lock holds an in-process lock named name. ttl is ignored: the lock lives until unlock.
func (b *MemoryBackend) Lock(ctx context.Context, name string, _ time.Duration) (func(), error) {
	ch, _ := b.locks.LoadOrStore(name, make(chan struct{}, 1))
	sem := ch.(chan struct{})

	select {
	case sem <- struct{}{}:
		return func() { <-sem }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("acquire lock %s: %w", name, ctx.Err())
	}
}
