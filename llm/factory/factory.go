// Package factory constructs concrete llm.Client values from resolved
// ClientKeys. It lives outside the llm package so the provider-neutral types
// need not import the vendor adapter packages.
package factory

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/codelens-ai/codelens/llm"
	"github.com/codelens-ai/codelens/llm/anthropic"
	"github.com/codelens-ai/codelens/llm/ollama"
	"github.com/codelens-ai/codelens/llm/openai"
)

// NewClient builds a client for the vendor named in key. This is the only
// place in the codebase that branches on provider identity.
func NewClient(key *llm.ClientKey, logger zerolog.Logger) (llm.Client, error) {
	if key == nil {
		return nil, fmt.Errorf("client key is required")
	}

	switch key.Provider {
	case llm.ProviderAnthropic:
		return anthropic.New(key.APIKey, key.Model, logger)
	case llm.ProviderOpenAI:
		return openai.New(key.APIKey, key.BaseURL, key.Model, key.Organization, logger)
	case llm.ProviderOllama:
		return ollama.New(key.Host, key.Model, logger)
	default:
		return nil, fmt.Errorf("unknown provider: %s", key.Provider)
	}
}
