package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultSocketTimeout = 5 * time.Second
	scanBatchSize        = 1000
)

// RedisOptions configures the connection. URL may hold several comma separated
// addresses, in which case a cluster client is used. MaxRetries follows go-redis: 0 keeps
// the library default and -1 disables retries.
type RedisOptions struct {
	URL          string
	Password     string
	DB           int
	PoolSize     int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

var errManagerClosed = errors.New("redis connection closed")

// RedisManager owns the shared Redis handle. The handle is created once and its pool
// redials on demand, so an outage costs each call at most its own socket timeouts and
// callers never queue behind one another's connection attempts.
type RedisManager struct {
	mu     sync.RWMutex
	opts   *redis.UniversalOptions
	client redis.UniversalClient
	rs     *redsync.Redsync
	log    zerolog.Logger
}

// NewRedisManager parses the options and checks the server once. Only malformed options
// are an error; an unreachable server is logged and the pool keeps redialing.
func NewRedisManager(ctx context.Context, cfg RedisOptions, log zerolog.Logger) (*RedisManager, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("redis url must be provided")
	}

	opts, err := buildUniversalOptions(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	applyOverrides(opts, cfg)

	if len(opts.Addrs) > 1 && opts.DB != 0 {
		log.Warn().Msg("Ignoring non-zero DB when using Redis Cluster configuration")
		opts.DB = 0
	}

	client := redis.NewUniversalClient(opts)
	m := &RedisManager{
		opts:   opts,
		client: client,
		rs:     redsync.New(goredis.NewPool(client)),
		log:    log.With().Str("component", "redis").Logger(),
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		m.log.Error().Err(err).Strs("addrs", opts.Addrs).Msg("Redis connection failed, will retry on demand")
	} else {
		m.log.Info().Strs("addrs", opts.Addrs).Msg("Successfully connected to Redis cache")
	}
	return m, nil
}

// Client returns the shared handle. It fails only after Close.
func (m *RedisManager) Client() (redis.UniversalClient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.client == nil {
		return nil, errManagerClosed
	}
	return m.client, nil
}

// IsConnected pings the server through the shared handle.
func (m *RedisManager) IsConnected(ctx context.Context) bool {
	client, err := m.Client()
	if err != nil {
		return false
	}
	return client.Ping(ctx).Err() == nil
}

func (m *RedisManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return nil
	}
	err := m.client.Close()
	m.client = nil
	m.rs = nil
	return err
}

func (m *RedisManager) redsync() (*redsync.Redsync, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.rs == nil {
		return nil, errManagerClosed
	}
	return m.rs, nil
}

func applyOverrides(opts *redis.UniversalOptions, cfg RedisOptions) {
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MaxRetries != 0 {
		opts.MaxRetries = cfg.MaxRetries
	}

	opts.DialTimeout = firstPositive(cfg.DialTimeout, opts.DialTimeout, defaultSocketTimeout)
	opts.ReadTimeout = firstPositive(cfg.ReadTimeout, opts.ReadTimeout, defaultSocketTimeout)
	opts.WriteTimeout = firstPositive(cfg.WriteTimeout, opts.WriteTimeout, defaultSocketTimeout)
}

func firstPositive(values ...time.Duration) time.Duration {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func buildUniversalOptions(raw string) (*redis.UniversalOptions, error) {
	parts := strings.Split(raw, ",")
	opts := &redis.UniversalOptions{}

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if !strings.Contains(part, "://") {
			opts.Addrs = append(opts.Addrs, part)
			continue
		}

		parsed, err := redis.ParseURL(part)
		if err != nil {
			return nil, err
		}

		opts.Addrs = append(opts.Addrs, parsed.Addr)

		if opts.Username == "" {
			opts.Username = parsed.Username
		}
		if opts.Password == "" {
			opts.Password = parsed.Password
		}
		if opts.DB == 0 {
			opts.DB = parsed.DB
		}
		if opts.TLSConfig == nil {
			opts.TLSConfig = parsed.TLSConfig
		}
		if opts.ReadTimeout == 0 {
			opts.ReadTimeout = parsed.ReadTimeout
		}
		if opts.WriteTimeout == 0 {
			opts.WriteTimeout = parsed.WriteTimeout
		}
		if opts.DialTimeout == 0 {
			opts.DialTimeout = parsed.DialTimeout
		}
		if opts.PoolSize == 0 {
			opts.PoolSize = parsed.PoolSize
		}
		if opts.MinIdleConns == 0 {
			opts.MinIdleConns = parsed.MinIdleConns
		}
	}

	if len(opts.Addrs) == 0 {
		return nil, errors.New("no Redis addresses provided")
	}

	return opts, nil
}

// RedisBackend implements Backend and Locker on top of a RedisManager.
type RedisBackend struct {
	manager *RedisManager
	log     zerolog.Logger
}

func NewRedisBackend(manager *RedisManager) *RedisBackend {
	return &RedisBackend{manager: manager, log: manager.log}
}

func (b *RedisBackend) Get(ctx context.Context, key string) (string, error) {
	client, err := b.manager.Client()
	if err != nil {
		return "", err
	}

	val, err := client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

func (b *RedisBackend) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	client, err := b.manager.Client()
	if err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	return client.Set(ctx, key, value, ttl).Err()
}

// Delete unlinks all keys in one pipeline round trip, which also works across cluster slots.
func (b *RedisBackend) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	client, err := b.manager.Client()
	if err != nil {
		return 0, err
	}

	pipe := client.Pipeline()
	cmds := make([]*redis.IntCmd, 0, len(keys))
	for _, k := range keys {
		cmds = append(cmds, pipe.Unlink(ctx, k))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("unlink keys: %w", err)
	}

	var removed int64
	for _, cmd := range cmds {
		removed += cmd.Val()
	}
	return removed, nil
}

func (b *RedisBackend) Exists(ctx context.Context, key string) (bool, error) {
	client, err := b.manager.Client()
	if err != nil {
		return false, err
	}
	n, err := client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (b *RedisBackend) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	client, err := b.manager.Client()
	if err != nil {
		return false, err
	}
	return client.Expire(ctx, key, ttl).Result()
}

func (b *RedisBackend) TTL(ctx context.Context, key string) (int64, error) {
	client, err := b.manager.Client()
	if err != nil {
		return TTLMissing, err
	}

	d, err := client.TTL(ctx, key).Result()
	if err != nil {
		return TTLMissing, err
	}
	// go-redis passes the -1/-2 replies through unscaled
	if d < 0 {
		return int64(d), nil
	}
	return int64(d / time.Second), nil
}

// Scan walks the keyspace with SCAN. On a cluster every master is scanned.
func (b *RedisBackend) Scan(ctx context.Context, pattern string) ([]string, error) {
	client, err := b.manager.Client()
	if err != nil {
		return nil, err
	}

	if cluster, ok := client.(*redis.ClusterClient); ok {
		var (
			mu   sync.Mutex
			keys []string
		)
		err := cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			nodeKeys, err := scanAll(ctx, node, pattern)
			if err != nil {
				return err
			}
			mu.Lock()
			keys = append(keys, nodeKeys...)
			mu.Unlock()
			return nil
		})
		return keys, err
	}

	return scanAll(ctx, client, pattern)
}

func scanAll(ctx context.Context, client redis.Cmdable, pattern string) ([]string, error) {
	var keys []string
	iter := client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan keys: %w", err)
	}
	return keys, nil
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	client, err := b.manager.Client()
	if err != nil {
		return err
	}
	return client.Ping(ctx).Err()
}

func (b *RedisBackend) Close() error {
	return b.manager.Close()
}

// Lock acquires a redsync mutex named name that expires after ttl.
func (b *RedisBackend) Lock(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	rs, err := b.manager.redsync()
	if err != nil {
		return nil, err
	}

	mutex := rs.NewMutex(name, redsync.WithExpiry(ttl))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", name, err)
	}

	return func() {
		if _, err := mutex.UnlockContext(context.Background()); err != nil {
			b.log.Error().Err(err).Str("lock", name).Msg("Failed to unlock mutex")
		}
	}, nil
}
