package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/rs/zerolog"

	"github.com/janhq/trading-agents/internal/domain/llmmodel"
	"github.com/janhq/trading-agents/internal/infrastructure/cache"
)

const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

var global *Config

type Config struct {
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"trading-agents"`
	ServiceVersion  string        `env:"SERVICE_VERSION" envDefault:"0.1.0"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// LLM providers; a provider is enabled by its credential
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	DeepSeekAPIKey  string        `env:"DEEPSEEK_API_KEY"`
	DeepSeekBaseURL string        `env:"DEEPSEEK_BASE_URL" envDefault:"https://api.deepseek.com/v1"`
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY"`
	LocalBaseURL    string        `env:"LOCAL_LLM_BASE_URL"`
	LocalModels     []string      `env:"LOCAL_LLM_MODELS" envSeparator:","`
	LLMTimeout      time.Duration `env:"LLM_DEFAULT_TIMEOUT" envDefault:"30s"`
	LLMMaxRetries   int           `env:"LLM_MAX_RETRIES" envDefault:"3"`

	AgentModelPolicyFile string `env:"AGENT_MODEL_POLICY_FILE"`

	// Cache
	CacheBackend        string `env:"CACHE_BACKEND" envDefault:"redis"`
	CacheMemoryMaxSize  int    `env:"CACHE_MEMORY_MAX_SIZE" envDefault:"10000"`
	RedisURL            string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisPassword       string `env:"REDIS_PASSWORD"`
	RedisDB             int    `env:"REDIS_DB" envDefault:"0"`
	RedisMaxConnections int    `env:"REDIS_MAX_CONNECTIONS" envDefault:"20"`

	// Optional; only used by the readiness probe
	DatabaseURL string `env:"DATABASE_URL"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
	LogFile   string `env:"LOG_FILE"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPHeaders  string `env:"OTEL_EXPORTER_OTLP_HEADERS"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(cfg.CacheBackend))

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	global = cfg
	return cfg, nil
}

func GetGlobal() *Config {
	return global
}

func (c *Config) validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	switch c.CacheBackend {
	case CacheBackendRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_BACKEND is redis")
		}
	case CacheBackendMemory:
		if c.CacheMemoryMaxSize <= 0 {
			return fmt.Errorf("CACHE_MEMORY_MAX_SIZE must be positive")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be redis or memory, got %q", c.CacheBackend)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT out of range: %d", c.HTTPPort)
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// Credentials returns the provider settings the model registry is built from.
func (c *Config) Credentials() llmmodel.Credentials {
	locals := make([]string, 0, len(c.LocalModels))
	for _, m := range c.LocalModels {
		if m = strings.TrimSpace(m); m != "" {
			locals = append(locals, m)
		}
	}
	return llmmodel.Credentials{
		OpenAIAPIKey:    c.OpenAIAPIKey,
		OpenAIBaseURL:   c.OpenAIBaseURL,
		DeepSeekAPIKey:  c.DeepSeekAPIKey,
		DeepSeekBaseURL: c.DeepSeekBaseURL,
		AnthropicAPIKey: c.AnthropicAPIKey,
		LocalBaseURL:    c.LocalBaseURL,
		LocalModels:     locals,
		DefaultTimeout:  c.LLMTimeout,
		MaxRetries:      c.LLMMaxRetries,
	}
}

func (c *Config) RedisOptions() cache.RedisOptions {
	return cache.RedisOptions{
		URL:      c.RedisURL,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
		PoolSize: c.RedisMaxConnections,
	}
}
