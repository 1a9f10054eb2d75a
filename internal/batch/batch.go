// Package batch runs independent jobs with bounded concurrency.
package batch

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var ErrConcurrency = errors.New("concurrent must be greater than 0")

type job[I any] struct {
	idx   int
	input I
}

func sequentialMapFn[I any, O any](ctx context.Context, goIdx int, jobs <-chan job[I], outputs []O, mapFn func(context.Context, I) (O, error)) error {
	for {
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "go routine %d:", goIdx)
		case jb, ok := <-jobs:
			if !ok {
				return nil
			}
			out, err := mapFn(ctx, jb.input)
			if err != nil {
				return errors.Wrapf(err, "go routine %d:", goIdx)
			}
			// each index is written by exactly one go routine
			outputs[jb.idx] = out
		}
	}
}

// Map applies mapFn to every input with at most concurrent calls in flight and returns the
// outputs in input order. It stops on the first error, cancelling the context given to the
// remaining calls.
func Map[I any, O any](ctx context.Context, inputs []I, concurrent int, mapFn func(context.Context, I) (O, error)) ([]O, error) {
	if concurrent < 1 {
		return nil, ErrConcurrency
	}
	concurrent = min(concurrent, max(1, len(inputs)))

	outputs := make([]O, len(inputs))
	jobs := make(chan job[I])

	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(concurrent + 1)

	errGrp.Go(func() error {
		defer close(jobs)
		for idx, input := range inputs {
			select {
			case <-dCtx.Done():
				return errors.Wrap(dCtx.Err(), "dispatch stopped")
			case jobs <- job[I]{idx: idx, input: input}:
			}
		}

		return nil
	})

	// starts many consumers concurrently
	// each consumer stops as soon as an error happens
	for goIdx := 0; goIdx < concurrent; goIdx++ {
		localGoIdx := goIdx
		errGrp.Go(func() error {
			return sequentialMapFn(dCtx, localGoIdx, jobs, outputs, mapFn)
		})
	}

	err := errGrp.Wait()
	if err != nil {
		return nil, err
	}
	// a cancellation racing with the last job must not pass for a complete batch
	if ctx.Err() != nil {
		return nil, errors.Wrap(ctx.Err(), "batch cancelled")
	}

	return outputs, nil
}
