// Package orchestrator composes the provider client, retry executor, and
// result cache into cached completion primitives, and runs batches of named
// jobs concurrently with per-job failure isolation.
package orchestrator

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/codelens-ai/codelens/cache"
	"github.com/codelens-ai/codelens/llm"
	"github.com/codelens-ai/codelens/retry"
)

// Orchestrator drives completion jobs against a single provider client.
type Orchestrator struct {
	client  llm.Client
	cache   *cache.Cache // nil disables caching
	retrier *retry.Executor
	logger  zerolog.Logger
}

// New creates an Orchestrator. cache may be nil to disable caching; a nil
// retrier gets the default policy.
func New(client llm.Client, c *cache.Cache, retrier *retry.Executor, logger zerolog.Logger) *Orchestrator {
	if retrier == nil {
		retrier = retry.New(logger)
	}
	return &Orchestrator{
		client:  client,
		cache:   c,
		retrier: retrier,
		logger:  logger.With().Str("component", "orchestrator").Logger(),
	}
}

// Client returns the underlying provider client.
func (o *Orchestrator) Client() llm.Client { return o.client }

// Completion is a completion result annotated with provenance and timing.
type Completion struct {
	llm.CompletionResult
	FromCache bool
	Duration  time.Duration
}

// CachedCompletion serves req from the cache when possible; on a miss it
// calls the provider through the retry executor and stores the result. Cache
// write failures are logged and never fail the call.
func (o *Orchestrator) CachedCompletion(ctx context.Context, req *llm.CompletionRequest) (*Completion, error) {
	start := time.Now()

	if o.cache != nil {
		if result, ok := o.cache.Get(req); ok {
			return &Completion{CompletionResult: *result, FromCache: true, Duration: time.Since(start)}, nil
		}
	}

	result, err := retry.DoValue(ctx, o.retrier, func(ctx context.Context) (*llm.CompletionResult, error) {
		return o.client.GenerateCompletion(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	o.store(req, result)
	return &Completion{CompletionResult: *result, Duration: time.Since(start)}, nil
}

// StructuredCompletion is CachedCompletion for jobs that want a JSON payload.
// Providers implementing llm.StructuredClient are asked for native structured
// output; others fall back to freeform generation, with payload recovery left
// to the caller's resilience decoding. Cached structured results are ordinary
// completions whose content is the JSON document.
func (o *Orchestrator) StructuredCompletion(ctx context.Context, req *llm.CompletionRequest, schema llm.Schema) (*Completion, error) {
	start := time.Now()

	if o.cache != nil {
		if result, ok := o.cache.Get(req); ok {
			return &Completion{CompletionResult: *result, FromCache: true, Duration: time.Since(start)}, nil
		}
	}

	var result *llm.CompletionResult
	var err error
	if sc, ok := o.client.(llm.StructuredClient); ok {
		var structured *llm.StructuredResult
		structured, err = retry.DoValue(ctx, o.retrier, func(ctx context.Context) (*llm.StructuredResult, error) {
			return sc.GenerateStructured(ctx, req, schema)
		})
		if structured != nil {
			result = &structured.CompletionResult
		}
	} else {
		result, err = retry.DoValue(ctx, o.retrier, func(ctx context.Context) (*llm.CompletionResult, error) {
			return o.client.GenerateCompletion(ctx, req)
		})
	}
	if err != nil {
		return nil, err
	}

	o.store(req, result)
	return &Completion{CompletionResult: *result, Duration: time.Since(start)}, nil
}

func (o *Orchestrator) store(req *llm.CompletionRequest, result *llm.CompletionResult) {
	if o.cache == nil {
		return
	}
	if err := o.cache.Set(req, result); err != nil {
		o.logger.Warn().Err(err).Msg("Cache write failed")
	}
}
