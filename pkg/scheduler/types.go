package scheduler

import (
	"context"
	"sync"

	"go.uber.org/zap"

	srvErrors "github.com/jkilzi/taskqueue/pkg/errors"
)

type Work[T any] func(ctx context.Context) (T, error)

type Result[T any] struct {
	Data T
	Err  error
}

// Future is the single-assignment handle returned for every submitted task.
// It resolves exactly once, either with the task's outcome or with the error
// that prevented the task from running.
type Future[T any] struct {
	id   string
	stop func()

	mu        sync.Mutex
	resolved  bool
	result    Result[T]
	done      chan struct{}
	listeners []func(Result[T])
}

func newFuture[T any](id string) *Future[T] {
	return &Future[T]{
		id:   id,
		done: make(chan struct{}),
	}
}

// ID returns the identifier of the task behind the future.
func (f *Future[T]) ID() string {
	return f.id
}

// C returns a channel that receives the result once the task settles.
// Every call returns a new channel.
func (f *Future[T]) C() <-chan Result[T] {
	c := make(chan Result[T], 1)
	f.OnComplete(func(r Result[T]) {
		c <- r
	})
	return c
}

// Done is closed when the future resolves.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Result returns the outcome without blocking. The boolean is false while the
// task is still pending or running.
func (f *Future[T]) Result() (Result[T], bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result, f.resolved
}

// Wait blocks until the future resolves or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		r, _ := f.Result()
		return r.Data, r.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnComplete registers fn to run with the result. If the future is already
// resolved fn runs immediately on the caller's goroutine.
func (f *Future[T]) OnComplete(fn func(Result[T])) {
	f.mu.Lock()
	if !f.resolved {
		f.listeners = append(f.listeners, fn)
		f.mu.Unlock()
		return
	}
	r := f.result
	f.mu.Unlock()
	callListener(fn, r)
}

func (f *Future[T]) OnSuccess(fn func(T)) {
	f.OnComplete(func(r Result[T]) {
		if r.Err == nil {
			fn(r.Data)
		}
	})
}

func (f *Future[T]) OnFailure(fn func(error)) {
	f.OnComplete(func(r Result[T]) {
		if r.Err != nil {
			fn(r.Err)
		}
	})
}

// Stop removes the task from the pending queue, or cancels its context if it
// is already running. It has no effect on a settled task.
func (f *Future[T]) Stop() {
	if f.stop != nil {
		f.stop()
	}
}

func (f *Future[T]) resolve(r Result[T]) {
	f.mu.Lock()
	if f.resolved {
		f.mu.Unlock()
		panic(srvErrors.NewSchedulerMisuseError("future %s resolved twice", f.id))
	}
	f.resolved = true
	f.result = r
	listeners := f.listeners
	f.listeners = nil
	close(f.done)
	f.mu.Unlock()

	for _, fn := range listeners {
		callListener(fn, r)
	}
}

// callListener keeps a panicking listener from skipping the scheduler's
// bookkeeping for the task.
func callListener[T any](fn func(T), v T) {
	defer recoverListener()
	fn(v)
}

func recoverListener() {
	if rec := recover(); rec != nil {
		zap.S().Named("scheduler").Errorw("listener panicked", "panic", rec)
	}
}
