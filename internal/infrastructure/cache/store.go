package cache

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/janhq/trading-agents/internal/metrics"
)

const tracerName = "github.com/janhq/trading-agents/internal/infrastructure/cache"

// Store is the typed key-value surface used by the rest of the service.
//
// No method returns an error. A failed round trip to the backend is logged with the
// operation and key, counted, and turned into the operation's safe result: false for
// writes and checks, a miss for reads, 0 for ClearPattern and TTLMissing for TTL. Callers
// must therefore treat the cache as something that may silently never hit.
type Store struct {
	backend Backend
	log     zerolog.Logger
	tracer  trace.Tracer
}

func NewStore(backend Backend, log zerolog.Logger) *Store {
	return &Store{
		backend: backend,
		log:     log.With().Str("component", "cache").Logger(),
		tracer:  otel.Tracer(tracerName),
	}
}

// Set stores value under key. ttl <= 0 keeps the key until it is deleted or evicted.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	ctx, span := s.start(ctx, "set", key)
	defer span.End()

	if err := s.set(ctx, key, value, ttl); err != nil {
		s.fail(span, "set", key, err)
		return false
	}
	s.ok("set")
	return true
}

// Get returns the decoded value and true on a hit. A key holding the empty string is a
// hit with value "".
func (s *Store) Get(ctx context.Context, key string) (any, bool) {
	raw, ok := s.GetString(ctx, key)
	if !ok {
		return nil, false
	}
	return decodeValue(raw), true
}

// GetString returns the stored text without attempting to decode it.
func (s *Store) GetString(ctx context.Context, key string) (string, bool) {
	ctx, span := s.start(ctx, "get", key)
	defer span.End()

	raw, err := s.backend.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		span.SetAttributes(attribute.Bool("cache.hit", false))
		metrics.RecordCacheOperation("get", "miss")
		return "", false
	case err != nil:
		s.fail(span, "get", key, err)
		return "", false
	}

	span.SetAttributes(attribute.Bool("cache.hit", true))
	s.ok("get")
	return raw, true
}

// Delete reports true only when the key existed and was removed.
func (s *Store) Delete(ctx context.Context, key string) bool {
	ctx, span := s.start(ctx, "delete", key)
	defer span.End()

	n, err := s.backend.Delete(ctx, key)
	if err != nil {
		s.fail(span, "delete", key, err)
		return false
	}
	s.ok("delete")
	return n > 0
}

func (s *Store) Exists(ctx context.Context, key string) bool {
	ctx, span := s.start(ctx, "exists", key)
	defer span.End()

	ok, err := s.backend.Exists(ctx, key)
	if err != nil {
		s.fail(span, "exists", key, err)
		return false
	}
	s.ok("exists")
	return ok
}

// Expire sets or replaces the TTL of an existing key without touching its value.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) bool {
	ctx, span := s.start(ctx, "expire", key)
	defer span.End()

	ok, err := s.backend.Expire(ctx, key, ttl)
	if err != nil {
		s.fail(span, "expire", key, err)
		return false
	}
	s.ok("expire")
	return ok
}

// TTL returns the remaining seconds, TTLNoExpiry (-1) for a key without expiry and
// TTLMissing (-2) for a missing key.
func (s *Store) TTL(ctx context.Context, key string) int64 {
	ctx, span := s.start(ctx, "ttl", key)
	defer span.End()

	ttl, err := s.backend.TTL(ctx, key)
	if err != nil {
		s.fail(span, "ttl", key, err)
		return TTLMissing
	}
	s.ok("ttl")
	return ttl
}

// ClearPattern deletes every key matching the glob pattern and returns how many were
// removed. Keys are enumerated first and deleted in one batch afterwards, so the operation
// is not atomic: keys written while it runs may or may not be removed.
func (s *Store) ClearPattern(ctx context.Context, pattern string) int64 {
	ctx, span := s.start(ctx, "clear_pattern", pattern)
	defer span.End()

	n, err := s.clearPattern(ctx, pattern)
	if err != nil {
		s.fail(span, "clear_pattern", pattern, err)
		return 0
	}
	span.SetAttributes(attribute.Int64("cache.cleared", n))
	metrics.RecordClearedKeys(n)
	s.ok("clear_pattern")
	return n
}

// Lock takes a named lock when the backend supports one. When it does not, or when the
// lock cannot be taken, the returned unlock is a no-op and the caller proceeds unlocked.
func (s *Store) Lock(ctx context.Context, name string, ttl time.Duration) func() {
	locker, ok := s.backend.(Locker)
	if !ok {
		return func() {}
	}

	unlock, err := locker.Lock(ctx, name, ttl)
	if err != nil {
		s.log.Warn().Err(err).Str("op", "lock").Str("key", name).Msg("cache lock unavailable, continuing without it")
		metrics.RecordCacheOperation("lock", "error")
		return func() {}
	}
	return unlock
}

// Ping reports backend reachability for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	text, err := encodeValue(value)
	if err != nil {
		return err
	}
	return s.backend.Set(ctx, key, text, ttl)
}

func (s *Store) clearPattern(ctx context.Context, pattern string) (int64, error) {
	keys, err := s.backend.Scan(ctx, pattern)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	return s.backend.Delete(ctx, keys...)
}

func (s *Store) start(ctx context.Context, op, key string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "cache."+op, trace.WithAttributes(
		attribute.String("cache.op", op),
		attribute.String("cache.key", key),
	))
}

func (s *Store) ok(op string) {
	metrics.RecordCacheOperation(op, "ok")
}

func (s *Store) fail(span trace.Span, op, key string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	metrics.RecordCacheOperation(op, "error")
	s.log.Error().Err(err).Str("op", op).Str("key", key).Msg("cache operation failed")
}

// GetJSON decodes the value at key into T. Missing keys, transport failures and values
// that do not decode into T all return false; decode failures are logged.
func GetJSON[T any](ctx context.Context, s *Store, key string) (*T, bool) {
	raw, ok := s.GetString(ctx, key)
	if !ok {
		return nil, false
	}

	var obj T
	if err := unmarshal(raw, &obj); err != nil {
		s.log.Warn().Err(err).Str("op", "get_json").Str("key", key).Msg("cached value does not decode")
		metrics.RecordCacheOperation("get_json", "error")
		return nil, false
	}
	return &obj, true
}
