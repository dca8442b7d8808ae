package llmmodel

import (
	"sync"

	"github.com/rs/zerolog"
)

// Registry holds the catalog of invocable model backends keyed by model id.
// Reads hand out copies, so snapshots never observe later Add/Remove calls.
type Registry struct {
	mu     sync.RWMutex
	models map[string]ModelConfig
	log    zerolog.Logger
}

func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		models: make(map[string]ModelConfig),
		log:    log.With().Str("component", "model_registry").Logger(),
	}
}

// Get returns the config registered under id. The bool is false when id is not registered.
func (r *Registry) Get(id string) (ModelConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.models[id]
	return cfg, ok
}

func (r *Registry) GetAll() map[string]ModelConfig {
	return r.filter(func(string, ModelConfig) bool { return true })
}

func (r *Registry) GetByProvider(provider ProviderKind) map[string]ModelConfig {
	return r.filter(func(_ string, cfg ModelConfig) bool {
		return cfg.Provider == provider
	})
}

// GetByRecommendedType returns the registered subset of the candidates recommended for
// modelType. Candidates that are not registered are skipped; an unknown type yields an
// empty map.
func (r *Registry) GetByRecommendedType(modelType ModelType) map[string]ModelConfig {
	candidates := recommendedModels[modelType]

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]ModelConfig, len(candidates))
	for _, id := range candidates {
		if cfg, ok := r.models[id]; ok {
			result[id] = cfg
		}
	}
	return result
}

// Add inserts or overwrites the config under id.
func (r *Registry) Add(id string, cfg ModelConfig) {
	r.mu.Lock()
	_, replaced := r.models[id]
	r.models[id] = cfg
	r.mu.Unlock()

	r.log.Info().
		Str("model", id).
		Str("provider", string(cfg.Provider)).
		Bool("replaced", replaced).
		Msg("model added")
}

// Remove deletes id from the registry. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	_, ok := r.models[id]
	delete(r.models, id)
	r.mu.Unlock()

	if ok {
		r.log.Info().Str("model", id).Msg("model removed")
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.models)
}

func (r *Registry) filter(keep func(id string, cfg ModelConfig) bool) map[string]ModelConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]ModelConfig)
	for id, cfg := range r.models {
		if keep(id, cfg) {
			result[id] = cfg
		}
	}
	return result
}
