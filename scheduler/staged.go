package scheduler

import (
	"context"
	"fmt"
)

// StagedTask is a task that may declare dependencies on other tasks by id.
// Tasks are dispatched in topological levels: a task runs only after every
// task it blocks on has settled (successfully or not).
type StagedTask[T any] struct {
	ID       string
	BlocksOn []string
	Run      Task[T]
}

// RunStaged executes staged tasks in dependency order with at most limit
// tasks in flight within each level. Results are returned in input order,
// like Run. A duplicate id, a reference to an unknown id, or a dependency
// cycle fails the whole call before any task runs.
//
// Progress callbacks span the whole batch: completed counts from 1 to
// len(tasks) across all levels.
func RunStaged[T any](ctx context.Context, tasks []StagedTask[T], limit int, onProgress ProgressFunc[T]) ([]TaskResult[T], error) {
	n := len(tasks)
	results := make([]TaskResult[T], n)
	if n == 0 {
		return results, nil
	}

	levels, err := stageLevels(tasks)
	if err != nil {
		return nil, err
	}

	plain := make([]Task[T], n)
	for i, t := range tasks {
		plain[i] = t.Run
	}

	tracker := &progressTracker[T]{total: n, fn: onProgress}
	for _, level := range levels {
		executeBounded(ctx, plain, level, limit, results, tracker)
	}
	return results, nil
}

// stageLevels validates the dependency graph and returns task indices grouped
// into topological levels, preserving input order within each level.
func stageLevels[T any](tasks []StagedTask[T]) ([][]int, error) {
	byID := make(map[string]int, len(tasks))
	for i, t := range tasks {
		if t.ID == "" {
			return nil, fmt.Errorf("task %d has no id", i)
		}
		if _, dup := byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate task id %q", t.ID)
		}
		byID[t.ID] = i
	}

	indegree := make([]int, len(tasks))
	dependents := make([][]int, len(tasks))
	for i, t := range tasks {
		for _, dep := range t.BlocksOn {
			j, ok := byID[dep]
			if !ok {
				return nil, fmt.Errorf("task %q blocks on unknown id %q", t.ID, dep)
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	// Kahn's algorithm, peeling one full level at a time.
	var levels [][]int
	var current []int
	for i := range tasks {
		if indegree[i] == 0 {
			current = append(current, i)
		}
	}

	placed := 0
	for len(current) > 0 {
		levels = append(levels, current)
		placed += len(current)

		var nextLevel []int
		for _, i := range current {
			for _, d := range dependents[i] {
				indegree[d]--
				if indegree[d] == 0 {
					nextLevel = append(nextLevel, d)
				}
			}
		}
		current = nextLevel
	}

	if placed != len(tasks) {
		return nil, fmt.Errorf("dependency cycle among staged tasks")
	}
	return levels, nil
}
