package llm

import (
	"fmt"
	"os"
	"sync"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
)

// AllProviders lists the known providers in resolution priority order.
var AllProviders = []string{ProviderAnthropic, ProviderOpenAI, ProviderOllama}

// ClientKey uniquely identifies a resolved LLM client configuration.
type ClientKey struct {
	Provider     string
	Model        string
	APIKey       string // For credential-based providers
	Host         string // For Ollama
	BaseURL      string // For OpenAI
	Organization string // For OpenAI
}

// ProviderConfig holds the raw provider settings needed by the registry.
// This mirrors the config package's provider sections without importing it,
// to avoid an import cycle.
type ProviderConfig struct {
	AnthropicAPIKey string
	AnthropicModel  string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string
	OpenAIOrg       string
	OllamaHost      string
	OllamaModel     string
}

// Registry manages provider selection and configuration resolution.
// Client construction is handled by the factory package to avoid import
// cycles between this package and the vendor adapter packages.
type Registry struct {
	enabled map[string]bool
	mu      sync.RWMutex
	config  *ProviderConfig
}

// NewRegistry creates a Registry with the given config and enabled providers.
// An empty enabled list enables every known provider.
func NewRegistry(cfg *ProviderConfig, enabledProviders []string) *Registry {
	if len(enabledProviders) == 0 {
		enabledProviders = AllProviders
	}
	enabled := make(map[string]bool, len(enabledProviders))
	for _, p := range enabledProviders {
		enabled[p] = true
	}
	return &Registry{enabled: enabled, config: cfg}
}

// IsProviderEnabled checks if a provider is in the enabled providers list.
func (r *Registry) IsProviderEnabled(provider string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled[provider]
}

// IsProviderConfigured checks if a provider has the required configuration
// (API keys, hosts) either in config or the environment.
func (r *Registry) IsProviderConfigured(provider string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isConfiguredLocked(provider)
}

// Providers returns the enabled and configured providers, in a stable order.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for _, p := range AllProviders {
		if r.enabled[p] && r.isConfiguredLocked(p) {
			out = append(out, p)
		}
	}
	return out
}

// Resolve returns a ClientKey for the requested provider, applying the model
// override when non-empty and falling back to the provider's configured
// default model otherwise.
func (r *Registry) Resolve(provider, modelOverride string) (*ClientKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.enabled[provider] {
		return nil, fmt.Errorf("provider %s is not enabled", provider)
	}
	if !r.isConfiguredLocked(provider) {
		return nil, fmt.Errorf("provider %s is not configured", provider)
	}
	return r.resolveLocked(provider, modelOverride)
}

// ResolveFirst returns a ClientKey for the first enabled, configured provider.
func (r *Registry) ResolveFirst() (*ClientKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range AllProviders {
		if r.enabled[p] && r.isConfiguredLocked(p) {
			return r.resolveLocked(p, "")
		}
	}
	return nil, fmt.Errorf("no configured provider available")
}

// isConfiguredLocked must be called with r.mu held.
func (r *Registry) isConfiguredLocked(provider string) bool {
	switch provider {
	case ProviderAnthropic:
		return r.config.AnthropicAPIKey != "" || os.Getenv("ANTHROPIC_API_KEY") != ""
	case ProviderOpenAI:
		return r.config.OpenAIAPIKey != "" || os.Getenv("OPENAI_API_KEY") != ""
	case ProviderOllama:
		// Ollama needs no credentials, only a host, which has a default.
		return true
	default:
		return false
	}
}

// resolveLocked must be called with r.mu held.
func (r *Registry) resolveLocked(provider, modelOverride string) (*ClientKey, error) {
	key := &ClientKey{Provider: provider, Model: modelOverride}

	switch provider {
	case ProviderAnthropic:
		key.APIKey = firstNonEmpty(r.config.AnthropicAPIKey, os.Getenv("ANTHROPIC_API_KEY"))
		if key.APIKey == "" {
			return nil, fmt.Errorf("anthropic API key not configured")
		}
		if key.Model == "" {
			key.Model = firstNonEmpty(r.config.AnthropicModel, "claude-sonnet-4-5")
		}

	case ProviderOpenAI:
		key.APIKey = firstNonEmpty(r.config.OpenAIAPIKey, os.Getenv("OPENAI_API_KEY"))
		if key.APIKey == "" {
			return nil, fmt.Errorf("openai API key not configured")
		}
		key.BaseURL = firstNonEmpty(r.config.OpenAIBaseURL, os.Getenv("OPENAI_BASE_URL"))
		key.Organization = firstNonEmpty(r.config.OpenAIOrg, os.Getenv("OPENAI_ORG_ID"))
		if key.Model == "" {
			key.Model = firstNonEmpty(r.config.OpenAIModel, "gpt-4o-mini")
		}

	case ProviderOllama:
		key.Host = firstNonEmpty(r.config.OllamaHost, os.Getenv("OLLAMA_HOST"), "http://localhost:11434")
		if key.Model == "" {
			key.Model = firstNonEmpty(r.config.OllamaModel, os.Getenv("OLLAMA_MODEL"))
		}
		if key.Model == "" {
			return nil, fmt.Errorf("ollama model not specified and no default configured")
		}

	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}

	return key, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
