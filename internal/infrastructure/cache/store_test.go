package cache

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	manager, err := NewRedisManager(context.Background(), RedisOptions{URL: "redis://" + mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	return NewStore(NewRedisBackend(manager), zerolog.Nop()), mr
}

func TestStore_SetGetStructuredValue(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	value := map[string]any{"a": 1, "b": []int{1, 2, 3}}
	require.True(t, store.Set(ctx, "k", value, 0))

	got, ok := store.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"a": float64(1), "b": []any{float64(1), float64(2), float64(3)}}, got)
}

func TestStore_StringsStoredVerbatim(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.True(t, store.Set(ctx, "greeting", "hello world", 0))

	raw, err := mr.Get("greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello world", raw)

	got, ok := store.Get(ctx, "greeting")
	require.True(t, ok)
	assert.Equal(t, "hello world", got)
}

func TestStore_EmptyStringIsAHit(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	require.True(t, store.Set(ctx, "empty", "", 0))

	got, ok := store.Get(ctx, "empty")
	assert.True(t, ok)
	assert.Equal(t, "", got)

	got, ok = store.Get(ctx, "missing")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestStore_TTL(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.True(t, store.Set(ctx, "short", "v", 10*time.Second))
	require.True(t, store.Set(ctx, "forever", "v", 0))

	assert.Equal(t, int64(10), store.TTL(ctx, "short"))
	assert.Equal(t, TTLNoExpiry, store.TTL(ctx, "forever"))
	assert.Equal(t, TTLMissing, store.TTL(ctx, "missing"))

	mr.FastForward(11 * time.Second)

	_, ok := store.Get(ctx, "short")
	assert.False(t, ok)
	assert.False(t, store.Exists(ctx, "short"))
	assert.Equal(t, TTLMissing, store.TTL(ctx, "short"))
	assert.True(t, store.Exists(ctx, "forever"))
}

func TestStore_Expire(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	assert.False(t, store.Expire(ctx, "missing", time.Minute))

	require.True(t, store.Set(ctx, "k", "v", 0))
	assert.True(t, store.Expire(ctx, "k", time.Minute))
	assert.Equal(t, int64(60), store.TTL(ctx, "k"))

	got, ok := store.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestStore_Delete(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	require.True(t, store.Set(ctx, "k", "v", 0))
	assert.True(t, store.Delete(ctx, "k"))
	assert.False(t, store.Delete(ctx, "k"))
	assert.False(t, store.Exists(ctx, "k"))
}

func TestStore_ClearPattern(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	for _, symbol := range []string{"AAPL", "MSFT", "GOOG"} {
		require.True(t, store.Set(ctx, "market_data:price:"+symbol, 1.5, 0))
	}
	require.True(t, store.Set(ctx, "market_data:indicators:AAPL", map[string]any{"rsi": 55}, 0))

	assert.Equal(t, int64(3), store.ClearPattern(ctx, "market_data:price:*"))
	assert.True(t, store.Exists(ctx, "market_data:indicators:AAPL"))
	assert.Equal(t, int64(0), store.ClearPattern(ctx, "market_data:price:*"))
}

func TestGetJSON(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	type quote struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}

	require.True(t, store.Set(ctx, "quote", quote{Symbol: "AAPL", Price: 150.5}, 0))

	got, ok := GetJSON[quote](ctx, store, "quote")
	require.True(t, ok)
	assert.Equal(t, quote{Symbol: "AAPL", Price: 150.5}, *got)

	require.True(t, store.Set(ctx, "text", "not json", 0))
	_, ok = GetJSON[quote](ctx, store, "text")
	assert.False(t, ok)

	_, ok = GetJSON[quote](ctx, store, "missing")
	assert.False(t, ok)
}

type failingBackend struct {
	Backend
	err error
}

func (b failingBackend) Get(context.Context, string) (string, error) { return "", b.err }
func (b failingBackend) Set(context.Context, string, string, time.Duration) error {
	return b.err
}
func (b failingBackend) Delete(context.Context, ...string) (int64, error) { return 0, b.err }
func (b failingBackend) Exists(context.Context, string) (bool, error)     { return false, b.err }
func (b failingBackend) Expire(context.Context, string, time.Duration) (bool, error) {
	return false, b.err
}
func (b failingBackend) TTL(context.Context, string) (int64, error) { return 0, b.err }
func (b failingBackend) Scan(context.Context, string) ([]string, error) {
	return nil, b.err
}

func TestStore_TransportFailureReturnsSafeDefaults(t *testing.T) {
	var buf bytes.Buffer
	store := NewStore(failingBackend{err: errors.New("connection refused")}, zerolog.New(&buf))
	ctx := context.Background()

	assert.False(t, store.Set(ctx, "k", "v", time.Minute))
	assert.Contains(t, buf.String(), `"op":"set"`)
	assert.Contains(t, buf.String(), `"key":"k"`)
	assert.Contains(t, buf.String(), "connection refused")

	got, ok := store.Get(ctx, "k")
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.False(t, store.Delete(ctx, "k"))
	assert.False(t, store.Exists(ctx, "k"))
	assert.False(t, store.Expire(ctx, "k", time.Minute))
	assert.Equal(t, TTLMissing, store.TTL(ctx, "k"))
	assert.Equal(t, int64(0), store.ClearPattern(ctx, "k*"))
	assert.Contains(t, buf.String(), `"op":"clear_pattern"`)
}

func TestStore_ServerGoneAway(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.True(t, store.Set(ctx, "k", "v", 0))
	mr.Close()

	_, ok := store.Get(ctx, "k")
	assert.False(t, ok)
	assert.False(t, store.Set(ctx, "k", "v", 0))
	assert.Equal(t, TTLMissing, store.TTL(ctx, "k"))
}

func TestStore_UnencodableValue(t *testing.T) {
	var buf bytes.Buffer
	backend, err := NewMemoryBackend(16)
	require.NoError(t, err)
	store := NewStore(backend, zerolog.New(&buf))

	assert.False(t, store.Set(context.Background(), "k", make(chan int), 0))
	assert.Contains(t, buf.String(), `"op":"set"`)
	assert.False(t, store.Exists(context.Background(), "k"))
}

func TestStore_LockWithoutLockerIsNoop(t *testing.T) {
	store := NewStore(failingBackend{err: errors.New("down")}, zerolog.Nop())
	unlock := store.Lock(context.Background(), "lock:any", time.Second)
	require.NotNil(t, unlock)
	unlock()
}
