// Package openai implements the llm.Client interface for OpenAI's chat
// completion API. OpenAI's JSON response mode backs llm.StructuredClient.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/codelens-ai/codelens/llm"
)

// OpenAI API errors don't directly expose retry-after headers.
// We use a default retry-after duration for rate limits.
const defaultRetryAfter = 60 * time.Second

const requestTimeout = 5 * time.Minute

// Client implements llm.Client and llm.StructuredClient for OpenAI's API.
type Client struct {
	client *openai.Client
	model  string
	logger zerolog.Logger
}

// New creates an OpenAI-backed client.
// If baseURL is empty, the default OpenAI API endpoint is used.
func New(apiKey, baseURL, model, organization string, logger zerolog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if organization != "" {
		config.OrgID = organization
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger.With().Str("component", "openai").Logger(),
	}, nil
}

// Name implements llm.Client.
func (c *Client) Name() string { return llm.ProviderOpenAI }

// Model implements llm.Client.
func (c *Client) Model() string { return c.model }

// CalculateCost implements llm.Client.
func (c *Client) CalculateCost(inputTokens, outputTokens int64) float64 {
	return Prices.Cost(c.model, inputTokens, outputTokens)
}

// GenerateCompletion implements llm.Client.
func (c *Client) GenerateCompletion(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResult, error) {
	return c.complete(ctx, req, nil)
}

// GenerateStructured implements llm.StructuredClient using OpenAI's JSON
// response mode. The schema definition itself is carried in the prompt; the
// response format only constrains the output to valid JSON.
func (c *Client) GenerateStructured(ctx context.Context, req *llm.CompletionRequest, schema llm.Schema) (*llm.StructuredResult, error) {
	format := &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}
	result, err := c.complete(ctx, req, format)
	if err != nil {
		return nil, err
	}
	if !json.Valid([]byte(result.Content)) {
		return nil, llm.NewExtractionError("openai JSON mode returned invalid JSON")
	}
	return &llm.StructuredResult{
		CompletionResult: *result,
		Data:             json.RawMessage(result.Content),
	}, nil
}

func (c *Client) complete(ctx context.Context, req *llm.CompletionRequest, format *openai.ChatCompletionResponseFormat) (*llm.CompletionResult, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature:    float32(req.Temperature),
		ResponseFormat: format,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = int(req.MaxTokens)
	}

	chatResp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, convertError(err)
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return nil, llm.NewExtractionError("openai response contained no text content")
	}

	in := int64(chatResp.Usage.PromptTokens)
	out := int64(chatResp.Usage.CompletionTokens)
	c.logger.Debug().
		Str("model", model).
		Int64("input_tokens", in).
		Int64("output_tokens", out).
		Str("finish_reason", string(chatResp.Choices[0].FinishReason)).
		Msg("Completion finished")

	return &llm.CompletionResult{
		Content:      chatResp.Choices[0].Message.Content,
		InputTokens:  in,
		OutputTokens: out,
		Cost:         Prices.Cost(model, in, out),
	}, nil
}

// convertError converts OpenAI API errors to llm.Error types.
func convertError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return llm.NewTimeoutError("openai request timed out", err)
		}
		return llm.NewNetworkError("openai request failed", err)
	}

	switch apiErr.HTTPStatusCode {
	case http.StatusTooManyRequests:
		retryAfter := defaultRetryAfter
		return llm.NewRateLimitError(fmt.Sprintf("openai rate limit: %s", apiErr.Message), &retryAfter, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return llm.NewInvalidRequestError(fmt.Sprintf("openai authentication failed: %s", apiErr.Message), err)
	case http.StatusBadRequest, http.StatusNotFound:
		return llm.NewInvalidRequestError(fmt.Sprintf("openai invalid request: %s", apiErr.Message), err)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return llm.NewProviderError(fmt.Sprintf("openai server error: %s", apiErr.Message), true, err)
	default:
		return llm.NewProviderError(fmt.Sprintf("openai API error: %s", apiErr.Message), false, err)
	}
}

var (
	_ llm.Client           = (*Client)(nil)
	_ llm.StructuredClient = (*Client)(nil)
)
