package llm

import (
	"fmt"
	"sync"

	"github.com/terrascribe/llm-api/pkg/api"
)

// ProviderConfig is the read-only configuration an adapter is constructed
// from.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	// Extra vendor-specific settings (e.g. the Anthropic API version).
	Config map[string]string
}

type Factory func(cfg ProviderConfig) (Provider, error)

var (
	mu        sync.RWMutex
	factories = make(map[api.ProviderName]Factory)
)

// Register is called from adapter package init() functions.
func Register(name api.ProviderName, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("provider factory %s already registered", name))
	}
	factories[name] = f
}

// New builds a provider by looking up its registered factory.
func New(name api.ProviderName, cfg ProviderConfig) (Provider, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("provider factory not found for: %s", name)
	}
	return f(cfg)
}
