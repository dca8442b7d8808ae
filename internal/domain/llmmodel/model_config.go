package llmmodel

import (
	"time"

	decimal "github.com/shopspring/decimal"
)

const (
	DefaultMaxTokens   = 2000
	DefaultTemperature = 0.1
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
)

// ModelConfig describes one callable model backend. Values are copied in and out of the
// registry, so a config obtained from a lookup never changes underneath the caller.
type ModelConfig struct {
	Provider                ProviderKind    `json:"provider"`
	ModelName               string          `json:"model_name"`
	APIKey                  string          `json:"-"`
	BaseURL                 string          `json:"base_url"`
	MaxTokens               int             `json:"max_tokens"`
	Temperature             float64         `json:"temperature"`
	Timeout                 time.Duration   `json:"timeout"`
	MaxRetries              int             `json:"max_retries"`
	SupportsFunctionCalling bool            `json:"supports_function_calling"`
	CostPer1KTokens         decimal.Decimal `json:"cost_per_1k_tokens"`
}

// NewModelConfig returns a config with the package defaults applied.
func NewModelConfig(provider ProviderKind, modelName, apiKey, baseURL string) ModelConfig {
	return ModelConfig{
		Provider:        provider,
		ModelName:       modelName,
		APIKey:          apiKey,
		BaseURL:         baseURL,
		MaxTokens:       DefaultMaxTokens,
		Temperature:     DefaultTemperature,
		Timeout:         DefaultTimeout,
		MaxRetries:      DefaultMaxRetries,
		CostPer1KTokens: decimal.Zero,
	}
}

// Capabilities is the caller-facing summary of a registered model.
type Capabilities struct {
	Provider                ProviderKind    `json:"provider,omitempty"`
	MaxTokens               int             `json:"max_tokens,omitempty"`
	SupportsFunctionCalling bool            `json:"supports_function_calling"`
	CostPer1KTokens         decimal.Decimal `json:"cost_per_1k_tokens"`
	TimeoutSeconds          int             `json:"timeout,omitempty"`
	MaxRetries              int             `json:"max_retries,omitempty"`
}

// IsZero reports whether the record is empty, which is what an unregistered model yields.
func (c Capabilities) IsZero() bool {
	return c.Provider == "" && c.MaxTokens == 0 && !c.SupportsFunctionCalling &&
		c.CostPer1KTokens.IsZero() && c.TimeoutSeconds == 0 && c.MaxRetries == 0
}

func (m ModelConfig) capabilities() Capabilities {
	return Capabilities{
		Provider:                m.Provider,
		MaxTokens:               m.MaxTokens,
		SupportsFunctionCalling: m.SupportsFunctionCalling,
		CostPer1KTokens:         m.CostPer1KTokens,
		TimeoutSeconds:          int(m.Timeout / time.Second),
		MaxRetries:              m.MaxRetries,
	}
}
