// Package anthropic implements the llm.Client interface on top of the
// official Anthropic Go SDK. Anthropic has no generic JSON output mode, so
// structured jobs fall back to freeform generation plus the resilience
// pipeline at the orchestrator layer.
package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/codelens-ai/codelens/llm"
)

const defaultRetryAfter = 60 * time.Second

// requestTimeout bounds a single completion call. The retry executor owns
// re-attempts; this only prevents a hung connection from stalling a batch.
const requestTimeout = 5 * time.Minute

// Client implements llm.Client for Anthropic's Messages API.
type Client struct {
	client *anthropic.Client
	model  string
	logger zerolog.Logger
}

// New creates an Anthropic-backed client.
func New(apiKey, model string, logger zerolog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Client{
		client: &client,
		model:  model,
		logger: logger.With().Str("component", "anthropic").Logger(),
	}, nil
}

// Name implements llm.Client.
func (c *Client) Name() string { return llm.ProviderAnthropic }

// Model implements llm.Client.
func (c *Client) Model() string { return c.model }

// CalculateCost implements llm.Client.
func (c *Client) CalculateCost(inputTokens, outputTokens int64) float64 {
	return Prices.Cost(c.model, inputTokens, outputTokens)
}

// GenerateCompletion implements llm.Client.
func (c *Client) GenerateCompletion(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResult, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: req.MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		Temperature: anthropic.Float(req.Temperature),
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, convertError(err)
	}

	var sb strings.Builder
	for _, blockUnion := range message.Content {
		if block, ok := blockUnion.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(block.Text)
		}
	}
	content := sb.String()
	if content == "" {
		return nil, llm.NewExtractionError("anthropic response contained no text content")
	}

	in := message.Usage.InputTokens
	out := message.Usage.OutputTokens
	c.logger.Debug().
		Str("model", model).
		Int64("input_tokens", in).
		Int64("output_tokens", out).
		Str("stop_reason", string(message.StopReason)).
		Msg("Completion finished")

	return &llm.CompletionResult{
		Content:      content,
		InputTokens:  in,
		OutputTokens: out,
		Cost:         Prices.Cost(model, in, out),
	}, nil
}

// convertError converts Anthropic SDK errors to llm.Error types.
func convertError(err error) error {
	if err == nil {
		return nil
	}

	if apierr, ok := asAPIError(err); ok {
		switch apierr.StatusCode {
		case http.StatusTooManyRequests:
			retryAfter := defaultRetryAfter
			return llm.NewRateLimitError("anthropic rate limit", &retryAfter, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return llm.NewInvalidRequestError("anthropic authentication failed", err)
		case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
			return llm.NewInvalidRequestError("anthropic invalid request", err)
		case http.StatusRequestTimeout:
			return llm.NewTimeoutError("anthropic request timed out", err)
		default:
			if apierr.StatusCode >= 500 {
				return llm.NewProviderError("anthropic server error", true, err)
			}
			return llm.NewProviderError("anthropic API error", false, err)
		}
	}

	if isTimeout(err) {
		return llm.NewTimeoutError("anthropic request timed out", err)
	}
	return llm.NewNetworkError("anthropic request failed", err)
}

var _ llm.Client = (*Client)(nil)
