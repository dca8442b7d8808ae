package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by a Backend when the store reports the key as missing.
var ErrNotFound = errors.New("cache: key not found")

// TTL sentinels, matching the remote store.
const (
	TTLNoExpiry int64 = -1
	TTLMissing  int64 = -2
)

// Backend is the live handle the Store needs: text values, optional expiry, and
// enumeration by glob pattern. Errors are returned as-is; the Store decides what callers see.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	// Set stores value; ttl <= 0 stores it without expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes keys and reports how many existed.
	Delete(ctx context.Context, keys ...string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	// Expire reports false when the key does not exist.
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// TTL returns remaining whole seconds, TTLNoExpiry or TTLMissing.
	TTL(ctx context.Context, key string) (int64, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// Locker is implemented by backends that can hold a named lock across processes.
type Locker interface {
	Lock(ctx context.Context, name string, ttl time.Duration) (unlock func(), err error)
}
