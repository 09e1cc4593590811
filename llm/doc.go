// Package llm provides a provider-neutral abstraction layer for Large Language Model (LLM) APIs.
//
// This package defines common types, interfaces, and utilities that allow the codebase
// to work with multiple LLM providers (Anthropic, OpenAI, Ollama) without being
// tightly coupled to any specific provider's SDK.
//
// # Core Concepts
//
//  1. Requests: CompletionRequest is an immutable value describing a single
//     prompt-completion call. Its Fingerprint() is a stable hash over all request
//     parameters, used as the cache key by the cache package.
//
//  2. Client Interface: The Client interface provides GenerateCompletion() for
//     freeform completions plus Name(), Model(), and CalculateCost(). Providers with
//     native structured-output support additionally implement StructuredClient.
//
//  3. Pricing: Each provider package declares an immutable PriceTable matching model
//     names by substring pattern. Cost calculation is a pure function of the table,
//     the model name, and the token counts.
//
//  4. Errors: The Error type provides provider-neutral error handling with a
//     Retryable flag consumed by the retry package. Adapter packages translate
//     provider-specific errors into Error values.
//
// # Extension Points
//
// To add a new LLM provider:
//  1. Implement the Client interface (and StructuredClient if the vendor supports it)
//  2. Declare a PriceTable for the vendor's models
//  3. Handle provider-specific errors and translate to llm.Error types
//  4. Register a constructor case in the factory package
package llm
