package llm

import (
	"context"
)

// Client provides a provider-neutral interface for making LLM completion calls.
// Implementations handle provider-specific details internally and translate
// vendor errors into *Error values.
type Client interface {
	// GenerateCompletion sends a prompt and returns the complete response text
	// along with token usage and derived cost. Exactly one outbound network
	// call is made per invocation; retries are the caller's concern.
	GenerateCompletion(ctx context.Context, req *CompletionRequest) (*CompletionResult, error)

	// Name returns the vendor identifier, e.g. "anthropic".
	Name() string

	// Model returns the default model this client was configured with.
	Model() string

	// CalculateCost computes the USD cost for the given token counts against
	// the client's configured model. Pure function of its inputs.
	CalculateCost(inputTokens, outputTokens int64) float64
}

// StructuredClient is implemented by providers with native structured-output
// support. Callers should type-assert; when the assertion fails they fall back
// to GenerateCompletion plus the resilience pipeline.
type StructuredClient interface {
	Client

	// GenerateStructured sends a prompt and asks the provider for a JSON
	// payload conforming to schema.
	GenerateStructured(ctx context.Context, req *CompletionRequest, schema Schema) (*StructuredResult, error)
}
