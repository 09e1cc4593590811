// Package scheduler executes independent tasks under a concurrency bound.
//
// All variants share the same guarantees: result index i always corresponds
// to input task i regardless of completion order, one task failing never
// affects its siblings, and at most the effective limit of tasks are in
// flight at any instant. Workers claim task indices from a shared monotonic
// counter, so tasks start in submission order.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
)

// Task is a unit of asynchronous work.
type Task[T any] func(ctx context.Context) (T, error)

// TaskResult captures one task's settlement. Index equals the task's position
// in the input list.
type TaskResult[T any] struct {
	Index int
	Value T
	Err   error
}

// Fulfilled reports whether the task settled successfully.
func (r TaskResult[T]) Fulfilled() bool { return r.Err == nil }

// ProgressFunc is invoked each time any task settles, in completion order.
// Invocations are serialized; completed counts from 1 to total.
type ProgressFunc[T any] func(completed, total int, res TaskResult[T])

// Run executes tasks with at most limit in flight and returns one result per
// task, in input order. The effective limit is clamped to [1, len(tasks)].
func Run[T any](ctx context.Context, tasks []Task[T], limit int) []TaskResult[T] {
	return RunWithProgress(ctx, tasks, limit, nil)
}

// RunWithProgress is Run with a progress callback.
func RunWithProgress[T any](ctx context.Context, tasks []Task[T], limit int, onProgress ProgressFunc[T]) []TaskResult[T] {
	n := len(tasks)
	results := make([]TaskResult[T], n)
	if n == 0 {
		return results
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	tracker := &progressTracker[T]{total: n, fn: onProgress}
	executeBounded(ctx, tasks, indices, limit, results, tracker)
	return results
}

// RunStrict executes identically to Run, then, after all tasks have settled,
// inspects results in index order and returns the first failure found. On
// success it returns the unwrapped values in index order.
//
// Siblings of a failed task always run to completion; failures are only
// surfaced after everything has settled.
func RunStrict[T any](ctx context.Context, tasks []Task[T], limit int) ([]T, error) {
	results := Run(ctx, tasks, limit)
	for _, res := range results {
		if res.Err != nil {
			return nil, res.Err
		}
	}
	return lo.Map(results, func(res TaskResult[T], _ int) T { return res.Value }), nil
}

// progressTracker serializes progress callbacks and owns the completed count.
type progressTracker[T any] struct {
	mu        sync.Mutex
	completed int
	total     int
	fn        ProgressFunc[T]
}

func (p *progressTracker[T]) settle(res TaskResult[T]) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed++
	if p.fn != nil {
		p.fn(p.completed, p.total, res)
	}
}

// executeBounded runs tasks[i] for each i in indices with at most limit
// workers, writing each outcome to results[i]. Each result slot is written by
// exactly one goroutine, so no lock guards results.
func executeBounded[T any](ctx context.Context, tasks []Task[T], indices []int, limit int, results []TaskResult[T], tracker *progressTracker[T]) {
	n := len(indices)
	if n == 0 {
		return
	}
	if limit < 1 {
		limit = 1
	}
	if limit > n {
		limit = n
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < limit; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				claim := int(next.Add(1)) - 1
				if claim >= n {
					return
				}
				i := indices[claim]
				res := runTask(ctx, tasks[i], i)
				results[i] = res
				tracker.settle(res)
			}
		}()
	}
	wg.Wait()
}

// runTask invokes a single task, converting a panic into a failed result so
// one misbehaving task cannot take down the batch.
func runTask[T any](ctx context.Context, task Task[T], index int) (res TaskResult[T]) {
	res.Index = index
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("task %d panicked: %v", index, r)
		}
	}()
	res.Value, res.Err = task(ctx)
	return res
}
