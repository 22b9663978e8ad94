package async

import (
	"context"
	"sync"
)

// Future represents the result of an asynchronous computation.
type Future[U any] struct {
	result U
	err    error
	done   chan struct{}
}

// AwaitContext blocks until the computation finishes or ctx is done.
func (f *Future[U]) AwaitContext(ctx context.Context) (U, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero U
		return zero, ctx.Err()
	}
}

// Async runs fn(ctx, param) in its own goroutine. A context that is already
// cancelled completes the future with ctx.Err() without calling fn.
func Async[T any, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := &Future[U]{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}
		f.result, f.err = fn(ctx, param)
	}()

	return f
}

// Result pairs an input with the outcome of processing it.
type Result[T, U any] struct {
	Input T
	Value U
	Err   error
}

// Map applies fn to every item with at most limit calls in flight
// (limit <= 0 means unbounded) and returns one Result per item in input
// order. Individual failures never abort the remaining items; items not yet
// started when ctx is cancelled fail with ctx.Err().
func Map[T, U any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (U, error)) []Result[T, U] {
	results := make([]Result[T, U], len(items))
	if len(items) == 0 {
		return results
	}
	if limit <= 0 || limit > len(items) {
		limit = len(items)
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i, item := range items {
		results[i].Input = item

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			results[i].Err = ctx.Err()
			continue
		}

		wg.Add(1)
		go func(i int, item T) {
			defer func() {
				<-sem
				wg.Done()
			}()
			results[i].Value, results[i].Err = fn(ctx, item)
		}(i, item)
	}
	wg.Wait()

	return results
}
