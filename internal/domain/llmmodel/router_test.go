package llmmodel

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"
	decimal "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *Router {
	return NewRouter(NewRegistryFromCredentials(allCredentials(), zerolog.Nop()))
}

func TestRouter_ModelForRole(t *testing.T) {
	router := newTestRouter()

	cases := map[string]string{
		"fundamental_analyst": "gpt-4o",
		"sentiment_analyst":   "gpt-4o-mini",
		"bullish_researcher":  "o1-preview",
		"fund_manager":        "o1-preview",
		"trader":              "gpt-4o",
		"":                    DefaultAgentModel,
		"janitor":             DefaultAgentModel,
	}
	for role, want := range cases {
		assert.Equal(t, want, router.ModelForRole(role), "role %q", role)
	}
}

func TestRouter_HasRole(t *testing.T) {
	router := newTestRouter()
	assert.True(t, router.HasRole("trader"))
	assert.False(t, router.HasRole("janitor"))
	assert.Len(t, router.Roles(), 13)
}

func TestRouter_ModelForRoleReturnsUnregisteredRecommendation(t *testing.T) {
	// no credentials at all: the recommendation is still returned
	router := NewRouter(NewRegistry(zerolog.Nop()))
	assert.Equal(t, "o1-preview", router.ModelForRole("fund_manager"))
}

func TestRouter_EstimateCost(t *testing.T) {
	router := newTestRouter()

	assert.True(t, router.EstimateCost("gpt-4o", 1000).Equal(decimal.RequireFromString("0.03")))
	assert.True(t, router.EstimateCost("gpt-4o", 500).Equal(decimal.RequireFromString("0.015")))
	assert.True(t, router.EstimateCost("gpt-4o-mini", 2500.5).Equal(decimal.RequireFromString("0.00375075")))
	assert.True(t, router.EstimateCost("gpt-4o", 0).IsZero())
	assert.True(t, router.EstimateCost("not-registered", 123456).IsZero())

	for _, tokens := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		assert.NotPanics(t, func() {
			assert.True(t, router.EstimateCost("gpt-4o", tokens).IsZero())
		})
	}
}

func TestRouter_Capabilities(t *testing.T) {
	router := newTestRouter()

	caps := router.Capabilities("o1-preview")
	assert.Equal(t, ProviderOpenAI, caps.Provider)
	assert.Equal(t, 8000, caps.MaxTokens)
	assert.False(t, caps.SupportsFunctionCalling)
	assert.Equal(t, 60, caps.TimeoutSeconds)
	assert.Equal(t, 3, caps.MaxRetries)
	assert.True(t, caps.CostPer1KTokens.Equal(decimal.RequireFromString("0.15")))
	assert.False(t, caps.IsZero())

	assert.True(t, router.Capabilities("missing").IsZero())
}

func TestRouter_PolicyIsCopiedAtConstruction(t *testing.T) {
	policy := RolePolicy{Roles: map[string]string{"trader": "deepseek-chat"}}
	router := NewRouterWithPolicy(NewRegistry(zerolog.Nop()), policy)

	policy.Roles["trader"] = "gpt-4o"
	assert.Equal(t, "deepseek-chat", router.ModelForRole("trader"))
	assert.Equal(t, DefaultAgentModel, router.DefaultModel())

	roles := router.Roles()
	roles["trader"] = "changed"
	assert.Equal(t, "deepseek-chat", router.ModelForRole("trader"))
}

func TestLoadRolePolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agent_models.yml")
	content := "default: deepseek-chat\nroles:\n  trader: claude-3-sonnet\n  macro_analyst: gpt-4o\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	policy, err := LoadRolePolicy(path)
	require.NoError(t, err)

	router := NewRouterWithPolicy(NewRegistry(zerolog.Nop()), policy)
	assert.Equal(t, "claude-3-sonnet", router.ModelForRole("trader"))
	assert.Equal(t, "gpt-4o", router.ModelForRole("macro_analyst"))
	assert.Equal(t, "o1-preview", router.ModelForRole("fund_manager"))
	assert.Equal(t, "deepseek-chat", router.ModelForRole("unmapped"))
}

func TestLoadRolePolicy_Errors(t *testing.T) {
	_, err := LoadRolePolicy(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("roles:\n  trader: \"\"\n"), 0o600))
	_, err = LoadRolePolicy(path)
	assert.Error(t, err)

	policy, err := LoadRolePolicy("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAgentModel, policy.Default)
}

func TestProperty_ModelForRoleIsTotal(t *testing.T) {
	router := newTestRouter()
	properties := gopter.NewProperties(nil)

	properties.Property("every role resolves to a non-empty id", prop.ForAll(
		func(role string) bool {
			model := router.ModelForRole(role)
			if model == "" {
				return false
			}
			if _, mapped := defaultRolePolicy[role]; !mapped {
				return model == DefaultAgentModel
			}
			return true
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestProperty_EstimateCostIsLinear(t *testing.T) {
	router := newTestRouter()
	properties := gopter.NewProperties(nil)
	ids := []string{"gpt-4o", "gpt-4o-mini", "o1-preview", "deepseek-chat", "claude-3-sonnet"}

	properties.Property("cost doubles when tokens double", prop.ForAll(
		func(idx int, tokens int64) bool {
			id := ids[idx]
			single := router.EstimateCost(id, float64(tokens))
			double := router.EstimateCost(id, float64(2*tokens))
			return double.Equal(single.Mul(decimal.NewFromInt(2)))
		},
		gen.IntRange(0, len(ids)-1),
		gen.Int64Range(0, 10_000_000),
	))

	properties.Property("1000 tokens cost exactly the rate", prop.ForAll(
		func(idx int) bool {
			id := ids[idx]
			cfg, _ := router.registry.Get(id)
			return router.EstimateCost(id, 1000).Equal(cfg.CostPer1KTokens)
		},
		gen.IntRange(0, len(ids)-1),
	))

	properties.Property("unknown models are free", prop.ForAll(
		func(tokens int64) bool {
			return router.EstimateCost("unregistered-model", float64(tokens)).IsZero()
		},
		gen.Int64Range(0, 10_000_000),
	))

	properties.TestingRun(t)
}
