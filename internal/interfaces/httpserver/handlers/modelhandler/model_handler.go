package modelhandler

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/janhq/trading-agents/internal/domain/llmmodel"
	"github.com/janhq/trading-agents/internal/interfaces/httpserver/responses"
	"github.com/janhq/trading-agents/internal/metrics"
)

const unmappedRoleLabel = "unmapped"

type ModelHandler struct {
	registry *llmmodel.Registry
	router   *llmmodel.Router
}

func NewModelHandler(registry *llmmodel.Registry, router *llmmodel.Router) *ModelHandler {
	return &ModelHandler{registry: registry, router: router}
}

type EstimateCostRequest struct {
	Model  string   `json:"model" binding:"required"`
	Tokens *float64 `json:"tokens" binding:"required,gte=0"`
}

// ListModels handles GET /v1/models. The optional provider and type filters combine.
func (h *ModelHandler) ListModels(c *gin.Context) {
	models := h.registry.GetAll()

	if raw := strings.TrimSpace(c.Query("provider")); raw != "" {
		provider, ok := llmmodel.ParseProviderKind(raw)
		if !ok {
			responses.Error(c, http.StatusBadRequest, "unknown provider: "+raw)
			return
		}
		models = intersect(models, h.registry.GetByProvider(provider))
	}
	if raw := strings.TrimSpace(c.Query("type")); raw != "" {
		modelType, ok := llmmodel.ParseModelType(raw)
		if !ok {
			responses.Error(c, http.StatusBadRequest, "unknown model type: "+raw)
			return
		}
		models = intersect(models, h.registry.GetByRecommendedType(modelType))
	}

	ids := make([]string, 0, len(models))
	for id := range models {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	data := make([]responses.ModelResponse, 0, len(ids))
	for _, id := range ids {
		data = append(data, responses.NewModelResponse(id, models[id]))
	}
	metrics.SetRegisteredModels(h.registry.Len())
	c.JSON(http.StatusOK, responses.NewListResponse(data))
}

// GetCapabilities handles GET /v1/models/:id/capabilities.
func (h *ModelHandler) GetCapabilities(c *gin.Context) {
	id := c.Param("id")
	caps := h.router.Capabilities(id)
	if caps.IsZero() {
		responses.Error(c, http.StatusNotFound, "model not registered: "+id)
		return
	}
	c.JSON(http.StatusOK, responses.CapabilitiesResponse{ID: id, Capabilities: caps})
}

// EstimateCost handles POST /v1/models/estimate-cost. Unregistered models are estimated at
// zero rather than rejected.
func (h *ModelHandler) EstimateCost(c *gin.Context) {
	var req EstimateCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	cfg, registered := h.registry.Get(req.Model)
	c.JSON(http.StatusOK, responses.CostEstimateResponse{
		Model:           req.Model,
		Tokens:          *req.Tokens,
		Registered:      registered,
		EstimatedCost:   h.router.EstimateCost(req.Model, *req.Tokens),
		CostPer1KTokens: cfg.CostPer1KTokens,
	})
}

// GetRoleModel handles GET /v1/agents/:role/model.
func (h *ModelHandler) GetRoleModel(c *gin.Context) {
	role := c.Param("role")
	model := h.router.ModelForRole(role)
	mapped := h.router.HasRole(role)
	_, registered := h.registry.Get(model)

	label := role
	if !mapped {
		label = unmappedRoleLabel
	}
	metrics.RecordRoleRouting(label, model)

	c.JSON(http.StatusOK, responses.RoleModelResponse{
		Role:       role,
		Model:      model,
		Mapped:     mapped,
		Registered: registered,
	})
}

// ListRoles handles GET /v1/agents/roles.
func (h *ModelHandler) ListRoles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default": h.router.DefaultModel(),
		"roles":   h.router.Roles(),
	})
}

func intersect(a, b map[string]llmmodel.ModelConfig) map[string]llmmodel.ModelConfig {
	out := make(map[string]llmmodel.ModelConfig, len(b))
	for id, cfg := range b {
		if _, ok := a[id]; ok {
			out[id] = cfg
		}
	}
	return out
}
