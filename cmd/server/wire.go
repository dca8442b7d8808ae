//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/janhq/trading-agents/internal/configs"
	"github.com/janhq/trading-agents/internal/infrastructure/cache"
	"github.com/janhq/trading-agents/internal/interfaces/httpserver"
	"github.com/janhq/trading-agents/internal/interfaces/httpserver/handlers/cachehandler"
	"github.com/janhq/trading-agents/internal/interfaces/httpserver/handlers/modelhandler"
	v1 "github.com/janhq/trading-agents/internal/interfaces/httpserver/routes/v1"
)

var domainSet = wire.NewSet(
	newRegistry,
	newRouter,
)

var cacheSet = wire.NewSet(
	newCacheBackend,
	newStore,
	cache.NewMarketDataCache,
	cache.NewAnalysisCache,
)

var httpSet = wire.NewSet(
	newHealthHandler,
	modelhandler.NewModelHandler,
	cachehandler.NewCacheHandler,
	v1.NewV1Route,
	newHTTPServerConfig,
	httpserver.New,
)

func CreateApplication(ctx context.Context, cfg *configs.Config, log zerolog.Logger) (*Application, error) {
	wire.Build(
		domainSet,
		cacheSet,
		newDatabasePool,
		httpSet,
		NewApplication,
	)
	return nil, nil
}
