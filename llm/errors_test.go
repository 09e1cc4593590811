package llm

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsRateLimitError(t *testing.T) {
	err := NewRateLimitError("rate limit exceeded", nil, nil)
	if !IsRateLimitError(err) {
		t.Error("Expected IsRateLimitError to return true for rate limit error")
	}

	regularErr := NewProviderError("some error", false, nil)
	if IsRateLimitError(regularErr) {
		t.Error("Expected IsRateLimitError to return false for non-rate-limit error")
	}
}

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"rate limit", NewRateLimitError("rate limit", nil, nil), true},
		{"timeout", NewTimeoutError("timed out", nil), true},
		{"network", NewNetworkError("connection reset", nil), true},
		{"retryable provider", NewProviderError("server error", true, nil), true},
		{"non-retryable provider", NewProviderError("bad gateway config", false, nil), false},
		{"invalid request", NewInvalidRequestError("bad prompt", nil), false},
		{"extraction", NewExtractionError("no payload"), false},
		{"schema", NewSchemaError("missing field", nil), false},
		{"plain error", errors.New("plain"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryableError(tc.err); got != tc.retryable {
				t.Errorf("IsRetryableError(%v) = %v, want %v", tc.err, got, tc.retryable)
			}
		})
	}
}

func TestIsRetryableErrorWrapped(t *testing.T) {
	wrapped := fmt.Errorf("calling provider: %w", NewTimeoutError("timed out", nil))
	if !IsRetryableError(wrapped) {
		t.Error("Expected IsRetryableError to see through fmt.Errorf wrapping")
	}
}

func TestIsExtractionError(t *testing.T) {
	if !IsExtractionError(NewExtractionError("empty response")) {
		t.Error("Expected IsExtractionError to return true for extraction error")
	}
	if IsExtractionError(NewSchemaError("bad field", nil)) {
		t.Error("Expected IsExtractionError to return false for schema error")
	}
}

func TestExtractRetryAfter(t *testing.T) {
	retryAfter := 5 * time.Minute
	err := NewRateLimitError("rate limit", &retryAfter, nil)
	extracted := ExtractRetryAfter(err)
	if extracted == nil {
		t.Fatal("Expected non-nil retry after")
	}
	if *extracted != retryAfter {
		t.Errorf("Expected retry after %v, got %v", retryAfter, *extracted)
	}

	regularErr := NewProviderError("some error", false, nil)
	if ExtractRetryAfter(regularErr) != nil {
		t.Error("Expected nil retry after for non-rate-limit error")
	}
}

func TestErrorUnwrap(t *testing.T) {
	originalErr := errors.New("original error")
	wrappedErr := NewProviderError("wrapped", false, originalErr)
	if !errors.Is(wrappedErr, originalErr) {
		t.Error("Expected error to unwrap to original error")
	}
}

func TestErrorMessage(t *testing.T) {
	bare := NewExtractionError("no payload")
	if bare.Error() != "no payload" {
		t.Errorf("Expected bare message, got %q", bare.Error())
	}

	withCause := NewProviderError("upstream failed", true, errors.New("503"))
	if withCause.Error() != "upstream failed: 503" {
		t.Errorf("Expected message with cause, got %q", withCause.Error())
	}
}
