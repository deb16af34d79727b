package concurrent

import (
	"context"
	"sync"
)

// WorkerPool bounds the number of goroutines doing work at once. Used to keep
// a batch of tool executions or outbound lookups from stampeding.
type WorkerPool struct {
	sem chan struct{}
}

// NewWorkerPool creates a pool admitting at most maxWorkers concurrent tasks.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = 8
	}
	return &WorkerPool{sem: make(chan struct{}, maxWorkers)}
}

// Do runs fn once a worker slot is free, or fails early when ctx is done.
func (wp *WorkerPool) Do(ctx context.Context, fn func() error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case wp.sem <- struct{}{}:
		defer func() { <-wp.sem }()
		return fn()
	}
}

// ParallelMap applies fn to every item concurrently, bounded by
// maxConcurrency, and returns the results in input order. All items are
// attempted; the first error observed (in input order) is returned alongside
// the partial results.
func ParallelMap[T, R any](ctx context.Context, items []T, fn func(T) (R, error), maxConcurrency int) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}

	results := make([]R, len(items))
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrency)

	for i, item := range items {
		wg.Add(1)
		go func(idx int, val T) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				errs[idx] = ctx.Err()
			case sem <- struct{}{}:
				defer func() { <-sem }()
				results[idx], errs[idx] = fn(val)
			}
		}(i, item)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// ParallelForEach applies fn to every item concurrently, bounded by
// maxConcurrency, and returns the first error observed.
func ParallelForEach[T any](ctx context.Context, items []T, fn func(T) error, maxConcurrency int) error {
	_, err := ParallelMap(ctx, items, func(item T) (struct{}, error) {
		return struct{}{}, fn(item)
	}, maxConcurrency)
	return err
}
