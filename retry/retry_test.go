package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/codelens-ai/codelens/llm"
)

func testExecutor() *Executor {
	e := New(zerolog.Nop())
	e.InitialDelay = time.Millisecond
	return e
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	e := testExecutor()
	calls := 0
	err := e.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestDoRetriesTransientFailures(t *testing.T) {
	e := testExecutor()
	calls := 0
	err := e.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return llm.NewTimeoutError("transient", nil)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls (fail, fail, succeed), got %d", calls)
	}
}

func TestDoExhaustsAttemptBudget(t *testing.T) {
	e := testExecutor()
	providerErr := llm.NewRateLimitError("rate limited", nil, nil)
	calls := 0
	err := e.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return providerErr
	})
	if calls != DefaultMaxAttempts {
		t.Errorf("Expected exactly %d invocations, got %d", DefaultMaxAttempts, calls)
	}
	// The last underlying error must surface unchanged.
	if !errors.Is(err, providerErr) {
		t.Errorf("Expected the provider error back, got %v", err)
	}
}

func TestDoNonRetryableReturnsImmediately(t *testing.T) {
	e := testExecutor()
	calls := 0
	err := e.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return llm.NewInvalidRequestError("bad request", nil)
	})
	if calls != 1 {
		t.Errorf("Expected a single call for a non-retryable error, got %d", calls)
	}
	var llmErr *llm.Error
	if !errors.As(err, &llmErr) || llmErr.Type != llm.ErrorTypeInvalidRequest {
		t.Errorf("Expected invalid request error, got %v", err)
	}
}

func TestDoHonorsRetryAfter(t *testing.T) {
	e := testExecutor()
	e.MaxAttempts = 2
	retryAfter := 30 * time.Millisecond

	start := time.Now()
	calls := 0
	err := e.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return llm.NewRateLimitError("slow down", &retryAfter, nil)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if elapsed := time.Since(start); elapsed < retryAfter {
		t.Errorf("Expected to wait at least the provider retry-after (%v), waited %v", retryAfter, elapsed)
	}
}

func TestDoContextCancellation(t *testing.T) {
	e := testExecutor()
	e.InitialDelay = time.Minute // would block without cancellation

	ctx, cancel := context.WithCancel(context.Background())
	transient := llm.NewTimeoutError("transient", nil)
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := e.Do(ctx, func(ctx context.Context) error {
		return transient
	})
	if !errors.Is(err, transient) {
		t.Errorf("Expected the last attempt error after cancellation, got %v", err)
	}
}

func TestDoZeroMaxAttempts(t *testing.T) {
	e := testExecutor()
	e.MaxAttempts = 0
	calls := 0
	_ = e.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return llm.NewTimeoutError("transient", nil)
	})
	if calls != 1 {
		t.Errorf("Expected the budget to clamp to one attempt, got %d", calls)
	}
}

func TestDoValue(t *testing.T) {
	e := testExecutor()
	calls := 0
	v, err := DoValue(context.Background(), e, func(ctx context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", llm.NewTimeoutError("transient", nil)
		}
		return "payload", nil
	})
	if err != nil {
		t.Fatalf("DoValue: %v", err)
	}
	if v != "payload" {
		t.Errorf("Expected the operation value, got %q", v)
	}
}

func TestDoValueError(t *testing.T) {
	e := testExecutor()
	_, err := DoValue(context.Background(), e, func(ctx context.Context) (int, error) {
		return 0, llm.NewInvalidRequestError("nope", nil)
	})
	if err == nil {
		t.Fatal("Expected error from DoValue")
	}
}
