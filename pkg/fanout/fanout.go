// Package fanout runs independent provider calls concurrently under a
// settle-all contract: every task's outcome is collected, and no task's
// failure cancels or blocks its siblings.
package fanout

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Task is one independent fetch operation with its own timeout budget.
type Task struct {
	Name    string
	Timeout time.Duration
	Run     func(ctx context.Context) (interface{}, error)
}

// Result is the settled outcome of one task: a value or an error, never both
// meaningful at once.
type Result struct {
	Name  string
	Value interface{}
	Err   error
}

// Batch executes all tasks concurrently and waits for every one to settle.
// maxInFlight > 0 bounds concurrent upstream calls; 0 means unbounded.
// A task panic settles as an error rather than killing the request.
func Batch(ctx context.Context, maxInFlight int, tasks []Task) []Result {
	results := make([]Result, len(tasks))

	var g errgroup.Group
	if maxInFlight > 0 {
		g.SetLimit(maxInFlight)
	}
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			results[i] = settle(ctx, task)
			// never propagate: a failed task must not cancel siblings
			return nil
		})
	}
	g.Wait()
	return results
}

func settle(ctx context.Context, task Task) (res Result) {
	res.Name = task.Name
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("task %s panicked: %v", task.Name, r)
		}
	}()

	if task.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}
	res.Value, res.Err = task.Run(ctx)
	return res
}

// ByName indexes settled results for lookup by task name.
func ByName(results []Result) map[string]Result {
	m := make(map[string]Result, len(results))
	for _, r := range results {
		m[r.Name] = r
	}
	return m
}
