package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	srvErrors "github.com/jkilzi/taskqueue/pkg/errors"
	"github.com/jkilzi/taskqueue/pkg/scheduler"
)

type FilesOption func(*Files)

// WithReadRetry replaces the retry policy of file reads.
func WithReadRetry(opts ...backoff.RetryOption) FilesOption {
	return func(f *Files) {
		f.retry = opts
	}
}

// WithReadBreaker replaces the circuit breaker shared by file reads.
func WithReadBreaker(cb *gobreaker.CircuitBreaker) FilesOption {
	return func(f *Files) {
		f.breaker = cb
	}
}

// Files runs file system jobs with at most concurrency operations in flight.
type Files struct {
	concurrency int
	retry       []backoff.RetryOption
	breaker     *gobreaker.CircuitBreaker
	log         *zap.SugaredLogger
}

func NewFilesService(concurrency int, opts ...FilesOption) *Files {
	f := &Files{
		concurrency: concurrency,
		retry: []backoff.RetryOption{
			backoff.WithBackOff(backoff.NewExponentialBackOff()),
			backoff.WithMaxTries(3),
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "file_reads",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				return !isReadFault(err)
			},
		}),
		log: zap.S().Named("files_service"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Concat reads files concurrently and appends their content to dest in
// argument order. Nothing is written if any read fails.
func (f *Files) Concat(ctx context.Context, dest string, files ...string) error {
	contents, err := scheduler.MapAsync(ctx, files, f.concurrency, func(ctx context.Context, path string, _ int) ([]byte, error) {
		return f.read(path)(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to read input files: %w", err)
	}

	out, err := os.OpenFile(dest, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	for _, c := range contents {
		if _, err := out.Write(c); err != nil {
			return err
		}
	}

	f.log.Debugw("files concatenated", "dest", dest, "files", len(files))
	return out.Close()
}

// List returns every file below dir, sorted.
func (f *Files) List(ctx context.Context, dir string) ([]string, error) {
	return f.walk(ctx, dir, nil)
}

// Find returns the files below dir whose content contains keyword, sorted.
func (f *Files) Find(ctx context.Context, dir, keyword string) ([]string, error) {
	if keyword == "" {
		return nil, srvErrors.NewInvalidConfigurationError("keyword", "must not be empty")
	}
	needle := []byte(keyword)
	return f.walk(ctx, dir, func(ctx context.Context, path string) (bool, error) {
		content, err := f.read(path)(ctx)
		if err != nil {
			return false, err
		}
		return bytes.Contains(content, needle), nil
	})
}

// walk traverses root on a dedicated scheduler. Every directory read is a task
// that submits one task per subdirectory, and one per file when match is set.
// The traversal is over when the scheduler goes idle.
func (f *Files) walk(ctx context.Context, root string, match func(ctx context.Context, path string) (bool, error)) ([]string, error) {
	s, err := scheduler.NewScheduler(f.concurrency, scheduler.WithContext(ctx), scheduler.WithName("files_walk"))
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var (
		mu       sync.Mutex
		found    []string
		firstErr error
		stopped  atomic.Bool
	)
	add := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		found = append(found, path)
	}
	// spawn and the error listener share mu, so nothing is submitted once
	// the listener has returned.
	spawn := func(w scheduler.Work[any]) {
		mu.Lock()
		defer mu.Unlock()
		if stopped.Load() {
			return
		}
		s.AddWork(w)
	}
	s.OnTaskError(func(err *srvErrors.TaskError) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err.Err
		}
		stopped.Store(true)
		mu.Unlock()
		s.CancelPending()
	})

	var readDir func(dir string) scheduler.Work[any]
	readDir = func(dir string) scheduler.Work[any] {
		return func(ctx context.Context) (any, error) {
			if stopped.Load() {
				return nil, nil
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			entries, err := os.ReadDir(dir)
			if err != nil {
				return nil, err
			}
			for _, e := range entries {
				if stopped.Load() {
					break
				}
				path := filepath.Join(dir, e.Name())
				switch {
				case e.IsDir():
					spawn(readDir(path))
				case match == nil:
					add(path)
				default:
					spawn(func(ctx context.Context) (any, error) {
						if stopped.Load() {
							return nil, nil
						}
						ok, err := match(ctx, path)
						if ok {
							add(path)
						}
						return nil, err
					})
				}
			}
			return nil, nil
		}
	}

	s.AddWork(readDir(root))
	if err := s.WaitIdle(ctx); err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	if firstErr != nil {
		return nil, firstErr
	}
	sort.Strings(found)
	f.log.Debugw("walk finished", "root", root, "found", len(found), "peak_running", s.Stats().PeakRunning)
	return found, nil
}

// isReadFault reports whether err says something about the file system
// rather than the file asked for. Only faults count against the read breaker.
func isReadFault(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

// read returns the work reading path with retries behind the shared breaker.
// Missing or unreadable files fail at once and leave the breaker alone.
func (f *Files) read(path string) scheduler.Work[[]byte] {
	return scheduler.Retry(scheduler.Breaker(f.breaker, func(ctx context.Context) ([]byte, error) {
		content, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, backoff.Permanent(err)
		}
		return content, err
	}), f.retry...)
}
