package list

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/semaphore"
)

// DefaultJobs bounds concurrent tasks when no override is configured.
const DefaultJobs = 8

// DefaultTaskTimeout bounds a single task's external call.
const DefaultTaskTimeout = 10 * time.Second

// Dispatch runs all tasks with at most jobs executing at once and
// streams outcomes into results, closing the channel when every task
// has reported. Each task gets its own timeout; cancelling ctx cancels
// everything outstanding. Every dispatched task delivers exactly one
// Result, even when cancelled before it ran.
//
// Local tasks dispatch before network-bound ones so the cheap columns
// fill in first regardless of queue order.
func Dispatch(ctx context.Context, tasks []Task, jobs int, timeout time.Duration, results chan<- Result) {
	if jobs <= 0 {
		jobs = DefaultJobs
	}
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}

	ordered := make([]Task, len(tasks))
	copy(ordered, tasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return !ordered[i].Network && ordered[j].Network
	})

	sem := semaphore.NewWeighted(int64(jobs))
	go func() {
		defer close(results)

		done := make(chan struct{}, len(ordered))
		for _, t := range ordered {
			t := t
			if err := sem.Acquire(ctx, 1); err != nil {
				// Cancelled while waiting for a slot: the task still
				// owes its outcome.
				results <- Result{Row: t.Row, Kind: t.Kind, Err: ctx.Err()}
				done <- struct{}{}
				continue
			}
			go func() {
				defer sem.Release(1)
				defer func() { done <- struct{}{} }()

				tctx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()
				results <- t.run(tctx)
			}()
		}
		for range ordered {
			<-done
		}
	}()
}
