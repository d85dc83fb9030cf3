package api

// ProviderName identifies which upstream vendor owns a model.
type ProviderName string

const (
	ProviderOpenAI    ProviderName = "openai"
	ProviderAnthropic ProviderName = "anthropic"
)

// ModelInfo describes one selectable model. Built fresh on every listing
// call; never persisted.
type ModelInfo struct {
	ID                  string       `json:"id"`
	Provider            ProviderName `json:"provider"`
	Name                string       `json:"name"`
	MaxTokens           int          `json:"maxTokens"`
	InputPricePerToken  float64      `json:"inputPricePerToken"`
	OutputPricePerToken float64      `json:"outputPricePerToken"`
}

// ModelsResponse wraps the aggregated listing consumed by the client
// settings UI.
type ModelsResponse struct {
	Models []ModelInfo `json:"models"`
}
