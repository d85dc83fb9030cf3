package llm

import (
	"context"
	"strings"

	"github.com/terrascribe/llm-api/pkg/api"
)

// Provider is the translation layer between the proxy's generic shapes and
// one vendor's HTTP API. Adapters are stateless: constructed once at process
// start from read-only configuration and reused across requests.
type Provider interface {
	Name() api.ProviderName
	Complete(ctx context.Context, req *api.CompletionRequest) (*api.CompletionResponse, error)
	ListModels(ctx context.Context) ([]api.ModelInfo, error)
}

// anthropicModelPrefix is the model family token that routes a request to
// the Anthropic adapter. This naming convention is the sole dispatch
// mechanism; there is no provider field on the completion request.
const anthropicModelPrefix = "claude"

// ProviderFor selects the vendor for a model identifier. Deterministic:
// every id maps to exactly one provider.
func ProviderFor(modelID string) api.ProviderName {
	if strings.HasPrefix(modelID, anthropicModelPrefix) {
		return api.ProviderAnthropic
	}
	return api.ProviderOpenAI
}
