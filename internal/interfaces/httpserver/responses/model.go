package responses

import (
	"time"

	decimal "github.com/shopspring/decimal"

	"github.com/janhq/trading-agents/internal/domain/llmmodel"
)

type ModelResponse struct {
	ID                      string                `json:"id"`
	Provider                llmmodel.ProviderKind `json:"provider"`
	ModelName               string                `json:"model_name"`
	BaseURL                 string                `json:"base_url,omitempty"`
	MaxTokens               int                   `json:"max_tokens"`
	Temperature             float64               `json:"temperature"`
	TimeoutSeconds          int                   `json:"timeout"`
	MaxRetries              int                   `json:"max_retries"`
	SupportsFunctionCalling bool                  `json:"supports_function_calling"`
	CostPer1KTokens         decimal.Decimal       `json:"cost_per_1k_tokens"`
}

func NewModelResponse(id string, cfg llmmodel.ModelConfig) ModelResponse {
	return ModelResponse{
		ID:                      id,
		Provider:                cfg.Provider,
		ModelName:               cfg.ModelName,
		BaseURL:                 cfg.BaseURL,
		MaxTokens:               cfg.MaxTokens,
		Temperature:             cfg.Temperature,
		TimeoutSeconds:          int(cfg.Timeout / time.Second),
		MaxRetries:              cfg.MaxRetries,
		SupportsFunctionCalling: cfg.SupportsFunctionCalling,
		CostPer1KTokens:         cfg.CostPer1KTokens,
	}
}

type CapabilitiesResponse struct {
	ID string `json:"id"`
	llmmodel.Capabilities
}

type RoleModelResponse struct {
	Role       string `json:"role"`
	Model      string `json:"model"`
	Mapped     bool   `json:"mapped"`
	Registered bool   `json:"registered"`
}

type CostEstimateResponse struct {
	Model           string          `json:"model"`
	Tokens          float64         `json:"tokens"`
	Registered      bool            `json:"registered"`
	EstimatedCost   decimal.Decimal `json:"estimated_cost"`
	CostPer1KTokens decimal.Decimal `json:"cost_per_1k_tokens"`
}
