package worker

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunParallelWithResults executes the functions concurrently and returns
// their results in input order, alongside the non-nil errors. The group
// context is cancelled if the caller's context is.
func RunParallelWithResults[T any](ctx context.Context, funcs []func(ctx context.Context) (T, error)) ([]T, []error) {
	if len(funcs) == 0 {
		return nil, nil
	}

	results := make([]T, len(funcs))
	errors := make([]error, len(funcs))

	g, ctx := errgroup.WithContext(ctx)
	for i, fn := range funcs {
		i, fn := i, fn // capture loop variables
		g.Go(func() error {
			results[i], errors[i] = fn(ctx)
			// Errors are collected per slot; the group never aborts early.
			return nil
		})
	}
	_ = g.Wait()

	var nonNilErrors []error
	for _, err := range errors {
		if err != nil {
			nonNilErrors = append(nonNilErrors, err)
		}
	}

	return results, nonNilErrors
}
