package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	srvErrors "github.com/jkilzi/taskqueue/pkg/errors"
)

type taskState int

const (
	taskPending taskState = iota
	taskRunning
	taskDone
)

type task struct {
	id     string
	state  taskState
	ctx    context.Context
	cancel context.CancelFunc
	// exec runs the work and keeps its outcome for settle.
	exec func(ctx context.Context) error
	// settle resolves the future with the kept outcome, or with err when it
	// is not nil.
	settle func(err error)
}

type worker struct {
	s *Scheduler
}

func (w worker) Work(t *task) {
	defer w.s.wg.Done()

	err := w.exec(t)
	canceled := errors.Is(err, srvErrors.ErrTaskCanceled)
	if err != nil && !canceled {
		w.s.notifyTaskError(srvErrors.NewTaskError(t.id, err))
	}
	w.s.complete(t, err, canceled)
}

func (w worker) exec(t *task) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("worker panicked: %v", rec)
			t.settle(err)
		}
	}()
	err = t.exec(t.ctx)
	t.settle(nil)
	return err
}

type listener[F any] struct {
	id   int
	once bool
	fn   F
}

// Stats is a point-in-time snapshot of scheduler activity.
type Stats struct {
	Limit       int   `json:"limit"`
	Running     int   `json:"running"`
	Pending     int   `json:"pending"`
	Submitted   int64 `json:"submitted"`
	Completed   int64 `json:"completed"`
	Failed      int64 `json:"failed"`
	Canceled    int64 `json:"canceled"`
	PeakRunning int   `json:"peak_running"`
}

type Option func(*Scheduler)

// WithContext sets the parent context of every task context.
func WithContext(ctx context.Context) Option {
	return func(s *Scheduler) {
		s.parent = ctx
	}
}

// WithName sets the logger name used by the scheduler.
func WithName(name string) Option {
	return func(s *Scheduler) {
		s.name = name
	}
}

type Scheduler struct {
	name   string
	parent context.Context
	log    *zap.SugaredLogger

	mu        sync.Mutex
	limit     int
	running   int
	workQueue *queue[*task]
	closed    bool
	// epoch counts idle to busy transitions. An idle notification is only
	// delivered if no new work arrived since the transition was observed.
	epoch          uint64
	idleListeners  []listener[func()]
	errorListeners []listener[func(*srvErrors.TaskError)]
	nextListenerID int
	stats          Stats

	notifyMu   sync.Mutex
	mainCtx    context.Context
	mainCancel context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewScheduler(limit int, opts ...Option) (*Scheduler, error) {
	if limit < 1 {
		return nil, srvErrors.NewInvalidConfigurationError("concurrency limit", fmt.Sprintf("must be at least 1, got %d", limit))
	}

	s := &Scheduler{
		name:      "scheduler",
		parent:    context.Background(),
		limit:     limit,
		workQueue: &queue[*task]{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mainCtx, s.mainCancel = context.WithCancel(s.parent)
	s.log = zap.S().Named(s.name)

	return s, nil
}

// Submit hands work to the scheduler and returns its future immediately.
// The work starts right away when a slot is free, otherwise it waits in FIFO
// order behind previously submitted work.
//
// Work that gives up without doing anything can return ErrTaskCanceled. It is
// counted as canceled and is not reported to OnTaskError listeners.
func Submit[T any](s *Scheduler, w Work[T]) *Future[T] {
	t := &task{id: uuid.NewString()}
	f := newFuture[T](t.id)

	var res Result[T]
	t.exec = func(ctx context.Context) error {
		res.Data, res.Err = w(ctx)
		return res.Err
	}
	t.settle = func(err error) {
		if err != nil {
			f.resolve(Result[T]{Err: err})
			return
		}
		f.resolve(res)
	}
	f.stop = func() { s.stop(t) }

	s.submit(t)
	return f
}

func (s *Scheduler) AddWork(w Work[any]) *Future[any] {
	return Submit(s, w)
}

func (s *Scheduler) submit(t *task) {
	s.mu.Lock()
	if s.closed {
		t.state = taskDone
		s.mu.Unlock()
		t.settle(srvErrors.ErrSchedulerClosed)
		return
	}

	if s.idle() {
		s.epoch++
	}
	t.ctx, t.cancel = context.WithCancel(s.mainCtx)
	t.state = taskPending
	s.stats.Submitted++
	s.workQueue.Push(t)
	s.log.Debugw("task submitted", "task", t.id, "running", s.running, "pending", s.workQueue.Len())
	s.dispatch()
	s.mu.Unlock()
}

// dispatch drains the workQueue as much as possible
// based on available capacity. Must be called with s.mu held.
func (s *Scheduler) dispatch() {
	for s.running < s.limit && s.workQueue.Len() > 0 {
		t := s.workQueue.Pop()
		t.state = taskRunning
		s.running++
		if s.running > s.stats.PeakRunning {
			s.stats.PeakRunning = s.running
		}
		s.wg.Add(1)
		go worker{s: s}.Work(t)
	}
}

func (s *Scheduler) complete(t *task, err error, canceled bool) {
	s.mu.Lock()
	t.cancel()
	t.state = taskDone
	s.running--
	switch {
	case canceled:
		s.stats.Canceled++
		s.log.Debugw("task canceled", "task", t.id)
	case err != nil:
		s.stats.Completed++
		s.stats.Failed++
		s.log.Debugw("task failed", "task", t.id, "error", err)
	default:
		s.stats.Completed++
	}
	s.dispatch()
	idle := s.idle()
	epoch := s.epoch
	s.mu.Unlock()

	if idle {
		s.notifyIdle(epoch)
	}
}

func (s *Scheduler) stop(t *task) {
	s.mu.Lock()
	switch t.state {
	case taskPending:
		s.workQueue.Remove(t)
		t.state = taskDone
		s.stats.Canceled++
		s.mu.Unlock()
		t.cancel()
		t.settle(srvErrors.ErrTaskCanceled)
	case taskRunning:
		s.mu.Unlock()
		t.cancel()
	default:
		s.mu.Unlock()
	}
}

// CancelPending removes every task that has not started yet and resolves its
// future with ErrTaskCanceled. Running tasks are left alone.
func (s *Scheduler) CancelPending() int {
	s.mu.Lock()
	pending := s.drainPending()
	s.mu.Unlock()

	for _, t := range pending {
		t.cancel()
		t.settle(srvErrors.ErrTaskCanceled)
	}
	return len(pending)
}

func (s *Scheduler) drainPending() []*task {
	pending := s.workQueue.Drain()
	for _, t := range pending {
		t.state = taskDone
	}
	s.stats.Canceled += int64(len(pending))
	return pending
}

// SetLimit changes the concurrency limit. Raising it starts pending work
// right away; lowering it holds dispatch until enough running tasks finish.
func (s *Scheduler) SetLimit(limit int) error {
	if limit < 1 {
		return srvErrors.NewInvalidConfigurationError("concurrency limit", fmt.Sprintf("must be at least 1, got %d", limit))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Infow("concurrency limit changed", "from", s.limit, "to", limit)
	s.limit = limit
	s.dispatch()
	return nil
}

func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.stats
	stats.Limit = s.limit
	stats.Running = s.running
	stats.Pending = s.workQueue.Len()
	return stats
}

// Close cancels every pending task, cancels the context of the running ones
// and waits for them to return. Work submitted afterwards resolves with
// ErrSchedulerClosed.
func (s *Scheduler) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		pending := s.drainPending()
		s.mu.Unlock()

		for _, t := range pending {
			t.cancel()
			t.settle(srvErrors.ErrTaskCanceled)
		}
		s.mainCancel()
		s.wg.Wait()
		s.log.Debugw("scheduler closed", "canceled", len(pending))
	})
}

func (s *Scheduler) idle() bool {
	return s.running == 0 && s.workQueue.Len() == 0
}
