package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.HTTPPort)
	assert.Equal(t, ":8000", cfg.Addr())
	assert.Equal(t, CacheBackendRedis, cfg.CacheBackend)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 3, cfg.LLMMaxRetries)
	assert.Same(t, cfg, GetGlobal())
}

func TestLoad_NormalisesAndSplits(t *testing.T) {
	t.Setenv("LOG_LEVEL", " DEBUG ")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("CACHE_BACKEND", "Memory")
	t.Setenv("LOCAL_LLM_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("LOCAL_LLM_MODELS", "llama3, qwen2 ,,")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_DEFAULT_TIMEOUT", "45s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, CacheBackendMemory, cfg.CacheBackend)

	creds := cfg.Credentials()
	assert.Equal(t, []string{"llama3", "qwen2"}, creds.LocalModels)
	assert.Equal(t, "sk-test", creds.OpenAIAPIKey)
	assert.Equal(t, 45*time.Second, creds.DefaultTimeout)
}

func TestLoad_RedisOptions(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("REDIS_PASSWORD", "pw")
	t.Setenv("REDIS_MAX_CONNECTIONS", "50")

	cfg, err := Load()
	require.NoError(t, err)

	opts := cfg.RedisOptions()
	assert.Equal(t, "redis://cache:6379/1", opts.URL)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 50, opts.PoolSize)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown log level":    {"LOG_LEVEL": "loud"},
		"unknown log format":   {"LOG_FORMAT": "xml"},
		"unknown backend":      {"CACHE_BACKEND": "memcached"},
		"empty memory size":    {"CACHE_BACKEND": "memory", "CACHE_MEMORY_MAX_SIZE": "0"},
		"bad port":             {"HTTP_PORT": "70000"},
		"unparseable duration": {"LLM_DEFAULT_TIMEOUT": "soon"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
