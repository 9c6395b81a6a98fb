package worker

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// AwaitAll waits for every future and returns the results in input order.
// The first failure (or ctx ending) cancels the remaining waits and is
// returned; the tasks themselves keep running.
func AwaitAll[R any](ctx context.Context, futures []*Future[R]) ([]R, error) {
	results := make([]R, len(futures))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range futures {
		g.Go(func() error {
			value, err := f.GetWithContext(ctx)
			if err != nil {
				return err
			}
			results[i] = value
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SubmitAll submits every function and returns their futures. Submission
// stops at the first error; futures already returned stay valid.
func SubmitAll[R any](p *Pool, fns []func() (R, error)) ([]*Future[R], error) {
	futures := make([]*Future[R], 0, len(fns))
	for _, fn := range fns {
		f, err := Submit(p, fn)
		if err != nil {
			return futures, err
		}
		futures = append(futures, f)
	}
	return futures, nil
}
