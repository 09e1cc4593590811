// Package retry wraps fallible operations with bounded exponential backoff.
// Only errors the llm package marks retryable (rate limits, timeouts, server
// errors) consume retry budget; validation and client errors propagate
// immediately. When attempts are exhausted, the last underlying error is
// returned unchanged so callers can distinguish transient exhaustion from
// logic errors.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/codelens-ai/codelens/llm"
)

const (
	// DefaultMaxAttempts is the total number of invocations, not re-tries.
	DefaultMaxAttempts = 3
	// DefaultInitialDelay is the delay before the first retry; it doubles
	// on each subsequent retry.
	DefaultInitialDelay = 2 * time.Second
)

// Executor retries a fallible operation with exponential backoff.
type Executor struct {
	MaxAttempts  int
	InitialDelay time.Duration
	logger       zerolog.Logger
}

// New creates an Executor with the default policy.
func New(logger zerolog.Logger) *Executor {
	return &Executor{
		MaxAttempts:  DefaultMaxAttempts,
		InitialDelay: DefaultInitialDelay,
		logger:       logger.With().Str("component", "retry").Logger(),
	}
}

// Do invokes op until it succeeds, returns a non-retryable error, or the
// attempt budget is exhausted.
func (e *Executor) Do(ctx context.Context, op func(ctx context.Context) error) error {
	maxAttempts := e.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	b := e.newBackoff()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !llm.IsRetryableError(err) {
			return err
		}
		if attempt == maxAttempts {
			break
		}

		delay := b.NextBackOff()
		if delay == backoff.Stop {
			break
		}
		// A provider-supplied retry-after wins over the computed delay when
		// it is longer; retrying sooner would just burn an attempt.
		if ra := llm.ExtractRetryAfter(err); ra != nil && *ra > delay {
			delay = *ra
		}

		e.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Dur("delay", delay).
			Msg("Transient failure, retrying after delay")

		if err := e.wait(ctx, delay); err != nil {
			return lastErr
		}
	}

	return lastErr
}

func (e *Executor) newBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.InitialDelay
	if b.InitialInterval <= 0 {
		b.InitialInterval = DefaultInitialDelay
	}
	b.Multiplier = 2.0
	b.RandomizationFactor = 0
	b.MaxInterval = 5 * time.Minute
	b.MaxElapsedTime = 0 // attempt count is the only limit
	b.Reset()
	return b
}

// wait sleeps for delay, respecting context cancellation.
func (e *Executor) wait(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DoValue invokes op through the executor's retry policy and returns its
// value on success.
func DoValue[T any](ctx context.Context, e *Executor, op func(ctx context.Context) (T, error)) (T, error) {
	var value T
	err := e.Do(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	return value, err
}
