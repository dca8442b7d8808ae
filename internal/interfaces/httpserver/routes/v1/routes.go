package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/trading-agents/internal/interfaces/httpserver/handlers/cachehandler"
	"github.com/janhq/trading-agents/internal/interfaces/httpserver/handlers/modelhandler"
)

type V1Route struct {
	modelHandler *modelhandler.ModelHandler
	cacheHandler *cachehandler.CacheHandler
}

func NewV1Route(modelHandler *modelhandler.ModelHandler, cacheHandler *cachehandler.CacheHandler) *V1Route {
	return &V1Route{modelHandler: modelHandler, cacheHandler: cacheHandler}
}

func (v1Route *V1Route) RegisterRouter(router gin.IRouter) {
	v1 := router.Group("/v1")

	models := v1.Group("/models")
	models.GET("", v1Route.modelHandler.ListModels)
	models.GET("/:id/capabilities", v1Route.modelHandler.GetCapabilities)
	models.POST("/estimate-cost", v1Route.modelHandler.EstimateCost)

	agents := v1.Group("/agents")
	agents.GET("/roles", v1Route.modelHandler.ListRoles)
	agents.GET("/:role/model", v1Route.modelHandler.GetRoleModel)

	caches := v1.Group("/cache")
	caches.GET("/market-data/:symbol/price", v1Route.cacheHandler.GetPrice)
	caches.GET("/market-data/:symbol/indicators", v1Route.cacheHandler.GetIndicators)
	caches.GET("/analysis/:symbol/:analyst_type", v1Route.cacheHandler.GetAnalysis)
	caches.DELETE("/symbols/:symbol", v1Route.cacheHandler.InvalidateSymbol)
}
