package llmmodel

import (
	"math"

	decimal "github.com/shopspring/decimal"
)

// DefaultAgentModel answers any role the policy does not name.
const DefaultAgentModel = "gpt-4o-mini"

var thousand = decimal.NewFromInt(1000)

// defaultRolePolicy is the human-chosen mapping from agent role to backend.
var defaultRolePolicy = map[string]string{
	// analyst team
	"fundamental_analyst": "gpt-4o",
	"technical_analyst":   "gpt-4o",
	"sentiment_analyst":   "gpt-4o-mini",
	"news_analyst":        "gpt-4o-mini",

	// research team
	"bullish_researcher": "o1-preview",
	"bearish_researcher": "o1-preview",
	"debate_facilitator": "gpt-4o",

	"trader": "gpt-4o",

	// risk management
	"risky_analyst":    "gpt-4o",
	"neutral_analyst":  "gpt-4o",
	"safe_analyst":     "gpt-4o",
	"risk_facilitator": "gpt-4o",

	"fund_manager": "o1-preview",
}

// Router maps agent roles to model ids and answers cost and capability questions using
// the registry. The role policy is copied at construction and never changes afterwards.
type Router struct {
	registry     *Registry
	roles        map[string]string
	defaultModel string
}

// NewRouter builds a router over the built-in role policy.
func NewRouter(registry *Registry) *Router {
	return NewRouterWithPolicy(registry, RolePolicy{Roles: defaultRolePolicy, Default: DefaultAgentModel})
}

// NewRouterWithPolicy builds a router over policy. An empty policy default falls back to
// DefaultAgentModel.
func NewRouterWithPolicy(registry *Registry, policy RolePolicy) *Router {
	roles := make(map[string]string, len(policy.Roles))
	for role, model := range policy.Roles {
		if model != "" {
			roles[role] = model
		}
	}

	def := policy.Default
	if def == "" {
		def = DefaultAgentModel
	}

	return &Router{registry: registry, roles: roles, defaultModel: def}
}

// ModelForRole never fails: unmapped roles get the default id. The returned id is not
// guaranteed to be registered.
func (r *Router) ModelForRole(role string) string {
	if model, ok := r.roles[role]; ok {
		return model
	}
	return r.defaultModel
}

// HasRole reports whether role has an explicit mapping.
func (r *Router) HasRole(role string) bool {
	_, ok := r.roles[role]
	return ok
}

func (r *Router) DefaultModel() string {
	return r.defaultModel
}

// Roles returns a copy of the role policy.
func (r *Router) Roles() map[string]string {
	out := make(map[string]string, len(r.roles))
	for role, model := range r.roles {
		out[role] = model
	}
	return out
}

// EstimateCost returns tokens/1000 * cost rate. Unknown models and token counts that are
// NaN or infinite cost zero.
func (r *Router) EstimateCost(modelID string, tokens float64) decimal.Decimal {
	if math.IsNaN(tokens) || math.IsInf(tokens, 0) {
		return decimal.Zero
	}
	cfg, ok := r.registry.Get(modelID)
	if !ok {
		return decimal.Zero
	}
	return decimal.NewFromFloat(tokens).Div(thousand).Mul(cfg.CostPer1KTokens)
}

// Capabilities returns the capability record for modelID, or the zero record when the
// model is not registered.
func (r *Router) Capabilities(modelID string) Capabilities {
	cfg, ok := r.registry.Get(modelID)
	if !ok {
		return Capabilities{}
	}
	return cfg.capabilities()
}
