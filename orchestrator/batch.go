package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/codelens-ai/codelens/llm"
	"github.com/codelens-ai/codelens/scheduler"
)

// Status classifies a job outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// Job is a named unit of orchestrated work: one analysis run or one generated
// artifact. Request builds the completion request; for non-foundational jobs
// it receives the foundational job's output (or "" when the batch has none or
// it failed).
type Job struct {
	Name         string
	Foundational bool
	Request      func(foundation string) llm.CompletionRequest
	Schema       *llm.Schema // non-nil requests native structured output
	Postprocess  func(content string) (string, error)
}

// JobOutcome is the per-job result reported to downstream consumers. A batch
// of N jobs always yields exactly N outcomes.
type JobOutcome struct {
	Name         string        `json:"name"`
	Status       Status        `json:"status"`
	Output       string        `json:"output,omitempty"`
	InputTokens  int64         `json:"input_tokens"`
	OutputTokens int64         `json:"output_tokens"`
	Cost         float64       `json:"cost"`
	Duration     time.Duration `json:"duration"`
	FromCache    bool          `json:"from_cache"`
	Err          string        `json:"error,omitempty"`
}

// BatchResult aggregates a batch's outcomes and totals.
type BatchResult struct {
	Outcomes     []JobOutcome
	InputTokens  int64
	OutputTokens int64
	Cost         float64
	Duration     time.Duration
}

// ProgressFunc is invoked as each job settles, in completion order.
type ProgressFunc func(completed, total int, outcome JobOutcome)

// RunBatch executes jobs concurrently under the given limit. Every exception
// escaping a job is converted into an error-status outcome; the batch itself
// only fails on malformed input (duplicate job names).
//
// When a job is flagged Foundational, it completes before any other job is
// dispatched and its output is offered to the remaining jobs' request
// builders. This is a correctness requirement for jobs that consume the
// foundational output as context, not a performance choice.
func (o *Orchestrator) RunBatch(ctx context.Context, jobs []Job, limit int, onProgress ProgressFunc) (*BatchResult, error) {
	start := time.Now()

	var foundationID string
	for _, j := range jobs {
		if j.Foundational {
			foundationID = j.Name
			break
		}
	}

	// Written only by the foundational task; the level barrier inside the
	// staged scheduler orders that write before any dependent task starts.
	var foundation string

	staged := make([]scheduler.StagedTask[JobOutcome], len(jobs))
	for i, job := range jobs {
		job := job
		isFoundation := job.Name == foundationID && job.Foundational
		st := scheduler.StagedTask[JobOutcome]{
			ID: job.Name,
			Run: func(ctx context.Context) (JobOutcome, error) {
				outcome := o.runJob(ctx, job, foundation)
				if isFoundation && outcome.Status == StatusSuccess {
					foundation = outcome.Output
				}
				return outcome, nil
			},
		}
		if foundationID != "" && !isFoundation {
			st.BlocksOn = []string{foundationID}
		}
		staged[i] = st
	}

	var progress scheduler.ProgressFunc[JobOutcome]
	if onProgress != nil {
		progress = func(completed, total int, res scheduler.TaskResult[JobOutcome]) {
			onProgress(completed, total, res.Value)
		}
	}

	results, err := scheduler.RunStaged(ctx, staged, limit, progress)
	if err != nil {
		return nil, err
	}

	outcomes := lo.Map(results, func(res scheduler.TaskResult[JobOutcome], _ int) JobOutcome {
		if res.Err != nil {
			// runJob never returns an error, so this only covers a panic
			// recovered by the scheduler.
			return JobOutcome{Name: jobs[res.Index].Name, Status: StatusError, Err: res.Err.Error()}
		}
		return res.Value
	})

	return &BatchResult{
		Outcomes:     outcomes,
		InputTokens:  lo.SumBy(outcomes, func(j JobOutcome) int64 { return j.InputTokens }),
		OutputTokens: lo.SumBy(outcomes, func(j JobOutcome) int64 { return j.OutputTokens }),
		Cost:         lo.SumBy(outcomes, func(j JobOutcome) float64 { return j.Cost }),
		Duration:     time.Since(start),
	}, nil
}

// runJob executes one job and converts every failure into an error-status
// outcome so sibling jobs are never affected.
func (o *Orchestrator) runJob(ctx context.Context, job Job, foundation string) JobOutcome {
	start := time.Now()
	outcome := JobOutcome{Name: job.Name}

	req := job.Request(foundation)
	if strings.TrimSpace(req.Prompt) == "" {
		outcome.Status = StatusSkipped
		outcome.Duration = time.Since(start)
		o.logger.Debug().Str("job", job.Name).Msg("Job skipped: empty prompt")
		return outcome
	}

	var completion *Completion
	var err error
	if job.Schema != nil {
		completion, err = o.StructuredCompletion(ctx, &req, *job.Schema)
	} else {
		completion, err = o.CachedCompletion(ctx, &req)
	}
	if err != nil {
		outcome.Status = StatusError
		outcome.Err = err.Error()
		outcome.Duration = time.Since(start)
		o.logger.Error().Err(err).Str("job", job.Name).Msg("Job failed")
		return outcome
	}

	outcome.InputTokens = completion.InputTokens
	outcome.OutputTokens = completion.OutputTokens
	outcome.Cost = completion.Cost
	outcome.FromCache = completion.FromCache

	output := completion.Content
	if job.Postprocess != nil {
		output, err = job.Postprocess(completion.Content)
		if err != nil {
			outcome.Status = StatusError
			outcome.Err = err.Error()
			outcome.Duration = time.Since(start)
			o.logger.Error().Err(err).Str("job", job.Name).Msg("Job postprocessing failed")
			return outcome
		}
	}

	outcome.Status = StatusSuccess
	outcome.Output = output
	outcome.Duration = time.Since(start)
	o.logger.Info().
		Str("job", job.Name).
		Bool("from_cache", outcome.FromCache).
		Int64("input_tokens", outcome.InputTokens).
		Int64("output_tokens", outcome.OutputTokens).
		Float64("cost", outcome.Cost).
		Dur("duration", outcome.Duration).
		Msg("Job finished")
	return outcome
}
