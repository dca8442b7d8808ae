package llmmodel

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	decimal "github.com/shopspring/decimal"
)

const (
	AnthropicBaseURL = "https://api.anthropic.com"

	reasoningTimeout     = 60 * time.Second
	reasoningTemperature = 1.0 // o1 models reject any other temperature
)

// Credentials is what the catalog needs from configuration. An empty API key keeps the
// provider out of the registry; for the local provider the base URL plays that role.
type Credentials struct {
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	DeepSeekAPIKey  string
	DeepSeekBaseURL string
	AnthropicAPIKey string
	LocalBaseURL    string
	LocalModels     []string
	DefaultTimeout  time.Duration
	MaxRetries      int
}

// NewRegistryFromCredentials builds the startup catalog. No network calls are made;
// credential presence is the only admission check.
func NewRegistryFromCredentials(creds Credentials, log zerolog.Logger) *Registry {
	registry := NewRegistry(log)

	for id, cfg := range catalogModels(creds) {
		registry.models[id] = cfg
	}

	registry.log.Info().Int("models", registry.Len()).Msg("model registry initialized")
	return registry
}

func catalogModels(creds Credentials) map[string]ModelConfig {
	timeout := creds.DefaultTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	retries := creds.MaxRetries
	if retries < 0 {
		retries = DefaultMaxRetries
	}

	models := make(map[string]ModelConfig)
	variant := func(provider ProviderKind, name, apiKey, baseURL string, maxTokens int, fnCalling bool, cost string) ModelConfig {
		cfg := NewModelConfig(provider, name, apiKey, baseURL)
		cfg.MaxTokens = maxTokens
		cfg.Timeout = timeout
		cfg.MaxRetries = retries
		cfg.SupportsFunctionCalling = fnCalling
		cfg.CostPer1KTokens = decimal.RequireFromString(cost)
		return cfg
	}

	if key := strings.TrimSpace(creds.OpenAIAPIKey); key != "" {
		base := creds.OpenAIBaseURL
		models["gpt-4o"] = variant(ProviderOpenAI, "gpt-4o", key, base, 4000, true, "0.03")
		models["gpt-4o-mini"] = variant(ProviderOpenAI, "gpt-4o-mini", key, base, 2000, true, "0.0015")

		o1 := variant(ProviderOpenAI, "o1-preview", key, base, 8000, false, "0.15")
		o1.Temperature = reasoningTemperature
		o1.Timeout = reasoningTimeout
		models["o1-preview"] = o1
	}

	if key := strings.TrimSpace(creds.DeepSeekAPIKey); key != "" {
		base := creds.DeepSeekBaseURL
		models["deepseek-chat"] = variant(ProviderDeepSeek, "deepseek-chat", key, base, 4000, true, "0.002")
		models["deepseek-coder"] = variant(ProviderDeepSeek, "deepseek-coder", key, base, 4000, true, "0.002")
	}

	if key := strings.TrimSpace(creds.AnthropicAPIKey); key != "" {
		models["claude-3-sonnet"] = variant(ProviderAnthropic, "claude-3-sonnet-20240229", key, AnthropicBaseURL, 4000, true, "0.015")
	}

	if base := strings.TrimSpace(creds.LocalBaseURL); base != "" {
		for _, name := range creds.LocalModels {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			models[name] = variant(ProviderLocal, name, "", base, DefaultMaxTokens, false, "0")
		}
	}

	return models
}
