package scheduler

import (
	"context"
	"sync"
	"sync/atomic"

	srvErrors "github.com/jkilzi/taskqueue/pkg/errors"
)

// MapAsync runs fn over items with at most limit calls in flight and returns
// the outputs in input order.
//
// The first failure stops dispatch: items still waiting are dropped without
// running, items already running finish and their results are discarded.
// MapAsync returns once nothing is running anymore, with the first failure
// wrapped in a *errors.BatchItemError.
func MapAsync[I, O any](ctx context.Context, items []I, limit int, fn func(ctx context.Context, item I, idx int) (O, error)) ([]O, error) {
	s, err := NewScheduler(limit, WithContext(ctx), WithName("map_async"))
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var (
		failed   atomic.Bool
		once     sync.Once
		firstErr error
	)
	fail := func(idx int, err error) {
		once.Do(func() {
			firstErr = srvErrors.NewBatchItemError(idx, err)
			failed.Store(true)
			s.CancelPending()
		})
	}

	futures := make([]*Future[O], len(items))
	for i, item := range items {
		futures[i] = Submit(s, func(ctx context.Context) (O, error) {
			var zero O
			// dispatched before CancelPending got to it
			if failed.Load() {
				return zero, srvErrors.ErrTaskCanceled
			}
			if err := ctx.Err(); err != nil {
				fail(i, err)
				return zero, err
			}

			v, err := fn(ctx, item, i)
			if err != nil {
				fail(i, err)
				return zero, err
			}
			return v, nil
		})
	}

	results := make([]O, len(items))
	for i, f := range futures {
		// every future settles: either its task ran or it was dropped
		<-f.Done()
		r, _ := f.Result()
		results[i] = r.Data
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// All waits for every future and returns their values in argument order.
// It returns as soon as one of them fails, without waiting for the others.
func All[T any](ctx context.Context, futures ...*Future[T]) ([]T, error) {
	type settled struct {
		idx int
		r   Result[T]
	}

	c := make(chan settled, len(futures))
	for i, f := range futures {
		f.OnComplete(func(r Result[T]) {
			c <- settled{idx: i, r: r}
		})
	}

	results := make([]T, len(futures))
	for range futures {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case s := <-c:
			if s.r.Err != nil {
				return nil, srvErrors.NewBatchItemError(s.idx, s.r.Err)
			}
			results[s.idx] = s.r.Data
		}
	}
	return results, nil
}
