package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/janhq/trading-agents/internal/infrastructure/cache"
	"github.com/janhq/trading-agents/internal/interfaces/httpserver"
	"github.com/janhq/trading-agents/internal/metrics"
)

const cacheProbeInterval = 30 * time.Second

type Application struct {
	server *httpserver.HTTPServer
	store  *cache.Store
	db     *pgxpool.Pool
	log    zerolog.Logger
}

func NewApplication(server *httpserver.HTTPServer, store *cache.Store, db *pgxpool.Pool, log zerolog.Logger) *Application {
	return &Application{server: server, store: store, db: db, log: log}
}

// Start serves HTTP and watches cache reachability until ctx is cancelled, then releases
// the cache and database handles.
func (a *Application) Start(ctx context.Context) error {
	defer a.close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.server.Run(ctx)
	})
	g.Go(func() error {
		a.watchCache(ctx)
		return nil
	})
	return g.Wait()
}

// watchCache pings the backend periodically and logs reachability changes.
func (a *Application) watchCache(ctx context.Context) {
	ticker := time.NewTicker(cacheProbeInterval)
	defer ticker.Stop()

	up := a.probeCache(ctx, true)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			up = a.probeCache(ctx, up)
		}
	}
}

func (a *Application) probeCache(ctx context.Context, wasUp bool) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := a.store.Ping(probeCtx)
	up := err == nil
	metrics.SetCacheBackendUp(up)

	switch {
	case wasUp && !up:
		a.log.Warn().Err(err).Msg("cache backend unreachable, serving without cache")
	case !wasUp && up:
		a.log.Info().Msg("cache backend reachable again")
	}
	return up
}

func (a *Application) close() {
	if err := a.store.Close(); err != nil {
		a.log.Error().Err(err).Msg("close cache")
	}
	if a.db != nil {
		a.db.Close()
	}
}
