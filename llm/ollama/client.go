// Package ollama implements the llm.Client interface for a local Ollama
// server. Local models have no per-token billing, so the price table is all
// zeroes. Ollama's JSON format mode backs llm.StructuredClient.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"

	"github.com/codelens-ai/codelens/llm"
)

const requestTimeout = 10 * time.Minute // local models can be slow

// Client implements llm.Client and llm.StructuredClient for Ollama.
type Client struct {
	client *api.Client
	model  string
	logger zerolog.Logger
}

// New creates an Ollama-backed client. If host is empty, the client is built
// from the environment (OLLAMA_HOST or http://localhost:11434).
func New(host, model string, logger zerolog.Logger) (*Client, error) {
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	var client *api.Client
	if host != "" {
		baseURL, err := parseHost(host)
		if err != nil {
			return nil, fmt.Errorf("invalid host: %w", err)
		}
		client = api.NewClient(baseURL, &http.Client{})
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
	}

	return &Client{
		client: client,
		model:  model,
		logger: logger.With().Str("component", "ollama").Logger(),
	}, nil
}

// parseHost parses a host string into a URL, defaulting the scheme to http.
func parseHost(host string) (*url.URL, error) {
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return url.Parse(host)
}

// Name implements llm.Client.
func (c *Client) Name() string { return llm.ProviderOllama }

// Model implements llm.Client.
func (c *Client) Model() string { return c.model }

// CalculateCost implements llm.Client. Local inference is free.
func (c *Client) CalculateCost(inputTokens, outputTokens int64) float64 {
	return Prices.Cost(c.model, inputTokens, outputTokens)
}

// GenerateCompletion implements llm.Client.
func (c *Client) GenerateCompletion(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResult, error) {
	return c.complete(ctx, req, nil)
}

// GenerateStructured implements llm.StructuredClient using Ollama's JSON
// format mode.
func (c *Client) GenerateStructured(ctx context.Context, req *llm.CompletionRequest, schema llm.Schema) (*llm.StructuredResult, error) {
	result, err := c.complete(ctx, req, json.RawMessage(`"json"`))
	if err != nil {
		return nil, err
	}
	if !json.Valid([]byte(result.Content)) {
		return nil, llm.NewExtractionError("ollama JSON mode returned invalid JSON")
	}
	return &llm.StructuredResult{
		CompletionResult: *result,
		Data:             json.RawMessage(result.Content),
	}, nil
}

func (c *Client) complete(ctx context.Context, req *llm.CompletionRequest, format json.RawMessage) (*llm.CompletionResult, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	stream := false
	chatReq := &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{Role: "user", Content: req.Prompt},
		},
		Stream: &stream,
		Format: format,
		Options: map[string]any{
			"temperature": req.Temperature,
		},
	}
	if req.MaxTokens > 0 {
		chatReq.Options["num_predict"] = int(req.MaxTokens)
	}

	var chatResp api.ChatResponse
	err := c.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		chatResp = resp
		return nil
	})
	if err != nil {
		return nil, convertError(err)
	}

	if chatResp.Message.Content == "" {
		return nil, llm.NewExtractionError("ollama response contained no text content")
	}

	in := int64(chatResp.Metrics.PromptEvalCount)
	out := int64(chatResp.Metrics.EvalCount)
	c.logger.Debug().
		Str("model", model).
		Int64("input_tokens", in).
		Int64("output_tokens", out).
		Msg("Completion finished")

	return &llm.CompletionResult{
		Content:      chatResp.Message.Content,
		InputTokens:  in,
		OutputTokens: out,
		Cost:         Prices.Cost(model, in, out),
	}, nil
}

// convertError converts Ollama API errors to llm.Error types.
func convertError(err error) error {
	if err == nil {
		return nil
	}

	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return llm.NewRateLimitError("ollama server busy", nil, err)
		case statusErr.StatusCode == http.StatusNotFound, statusErr.StatusCode == http.StatusBadRequest:
			return llm.NewInvalidRequestError("ollama invalid request", err)
		case statusErr.StatusCode >= 500:
			return llm.NewProviderError("ollama server error", true, err)
		default:
			return llm.NewProviderError("ollama API error", false, err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return llm.NewTimeoutError("ollama request timed out", err)
	}
	return llm.NewNetworkError("ollama request failed", err)
}

var (
	_ llm.Client           = (*Client)(nil)
	_ llm.StructuredClient = (*Client)(nil)
)
