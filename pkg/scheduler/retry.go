package scheduler

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker"
)

// Retry wraps w so that a failing call is retried according to opts. The
// scheduler never retries on its own; callers opt in per task. Return
// backoff.Permanent(err) from w to stop retrying early.
func Retry[T any](w Work[T], opts ...backoff.RetryOption) Work[T] {
	return func(ctx context.Context) (T, error) {
		return backoff.Retry(ctx, func() (T, error) {
			if err := ctx.Err(); err != nil {
				var zero T
				return zero, backoff.Permanent(err)
			}
			return w(ctx)
		}, opts...)
	}
}

// Breaker runs w through cb. While the breaker is open the work fails with
// gobreaker.ErrOpenState without being called. Combined with Retry, an open
// breaker stops the retries.
func Breaker[T any](cb *gobreaker.CircuitBreaker, w Work[T]) Work[T] {
	return func(ctx context.Context) (T, error) {
		var zero T
		out, err := cb.Execute(func() (interface{}, error) {
			return w(ctx)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return zero, backoff.Permanent(err)
			}
			return zero, err
		}
		v, _ := out.(T)
		return v, nil
	}
}
