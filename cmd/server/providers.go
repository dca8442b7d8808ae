package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/janhq/trading-agents/internal/configs"
	"github.com/janhq/trading-agents/internal/domain/llmmodel"
	"github.com/janhq/trading-agents/internal/infrastructure/cache"
	"github.com/janhq/trading-agents/internal/interfaces/httpserver"
	"github.com/janhq/trading-agents/internal/interfaces/httpserver/handlers/healthhandler"
	"github.com/janhq/trading-agents/internal/metrics"
)

func newRegistry(cfg *configs.Config, log zerolog.Logger) *llmmodel.Registry {
	registry := llmmodel.NewRegistryFromCredentials(cfg.Credentials(), log)
	metrics.SetRegisteredModels(registry.Len())
	return registry
}

func newRouter(cfg *configs.Config, registry *llmmodel.Registry) (*llmmodel.Router, error) {
	policy, err := llmmodel.LoadRolePolicy(cfg.AgentModelPolicyFile)
	if err != nil {
		return nil, fmt.Errorf("load agent model policy: %w", err)
	}
	return llmmodel.NewRouterWithPolicy(registry, policy), nil
}

// newCacheBackend selects the backend named by CACHE_BACKEND. An unreachable Redis is not
// fatal: the cache degrades to misses until the server comes back.
func newCacheBackend(ctx context.Context, cfg *configs.Config, log zerolog.Logger) (cache.Backend, error) {
	if cfg.CacheBackend == configs.CacheBackendMemory {
		log.Info().Int("max_size", cfg.CacheMemoryMaxSize).Msg("Using in-memory cache backend")
		return cache.NewMemoryBackend(cfg.CacheMemoryMaxSize)
	}

	manager, err := cache.NewRedisManager(ctx, cfg.RedisOptions(), log)
	if err != nil {
		return nil, err
	}
	return cache.NewRedisBackend(manager), nil
}

func newStore(backend cache.Backend, log zerolog.Logger) *cache.Store {
	return cache.NewStore(backend, log)
}

// newDatabasePool returns nil when DATABASE_URL is unset. The pool connects lazily, so a
// database that is down only shows up in readiness.
func newDatabasePool(ctx context.Context, cfg *configs.Config) (*pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}
	return pool, nil
}

func newHealthHandler(cfg *configs.Config, store *cache.Store, db *pgxpool.Pool, registry *llmmodel.Registry) *healthhandler.HealthHandler {
	checks := map[string]healthhandler.Pinger{cfg.CacheBackend: store}
	if db != nil {
		checks["database"] = db
	}
	return healthhandler.NewHealthHandler(checks, healthhandler.Info{
		Name:         cfg.ServiceName,
		Version:      cfg.ServiceVersion,
		Environment:  cfg.Environment,
		CacheBackend: cfg.CacheBackend,
		LLMEnabled:   registry.Len() > 0,
		Models:       registry.Len(),
	})
}

func newHTTPServerConfig(cfg *configs.Config) httpserver.Config {
	return httpserver.Config{
		Port:            cfg.HTTPPort,
		ServiceName:     cfg.ServiceName,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}
}
