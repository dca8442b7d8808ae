package llmmodel

type ProviderKind string

const (
	ProviderOpenAI    ProviderKind = "openai"
	ProviderDeepSeek  ProviderKind = "deepseek"
	ProviderAnthropic ProviderKind = "anthropic"
	ProviderLocal     ProviderKind = "local"
)

// ModelType groups models by the kind of work they are recommended for.
type ModelType string

const (
	ModelTypeReasoning ModelType = "reasoning" // slow, deliberate models such as o1-preview
	ModelTypeFast      ModelType = "fast"      // cheap, low latency
	ModelTypeAnalysis  ModelType = "analysis"
	ModelTypeChat      ModelType = "chat"
)

// recommendedModels lists candidate ids per type in preference order.
var recommendedModels = map[ModelType][]string{
	ModelTypeReasoning: {"o1-preview", "gpt-4o"},
	ModelTypeFast:      {"gpt-4o-mini", "deepseek-chat"},
	ModelTypeAnalysis:  {"gpt-4o", "claude-3-sonnet"},
	ModelTypeChat:      {"gpt-4o-mini", "deepseek-chat"},
}

func ParseProviderKind(raw string) (ProviderKind, bool) {
	switch kind := ProviderKind(raw); kind {
	case ProviderOpenAI, ProviderDeepSeek, ProviderAnthropic, ProviderLocal:
		return kind, true
	}
	return "", false
}

func ParseModelType(raw string) (ModelType, bool) {
	t := ModelType(raw)
	_, ok := recommendedModels[t]
	return t, ok
}
