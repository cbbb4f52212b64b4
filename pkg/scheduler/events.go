package scheduler

import (
	"context"

	srvErrors "github.com/jkilzi/taskqueue/pkg/errors"
)

// OnIdle registers fn to run every time the scheduler goes from busy to idle,
// that is when no task is running and none is pending. The returned function
// removes the listener.
//
// Listeners run on the goroutine of the task that completed last. They may
// submit new work but must not block waiting for it.
func (s *Scheduler) OnIdle(fn func()) (unsubscribe func()) {
	return s.addIdleListener(fn, false)
}

// OnceIdle registers fn for the next idle transition only.
func (s *Scheduler) OnceIdle(fn func()) (unsubscribe func()) {
	return s.addIdleListener(fn, true)
}

// WaitIdle blocks until the scheduler is idle. It returns immediately when
// nothing is running or pending.
func (s *Scheduler) WaitIdle(ctx context.Context) error {
	idle := make(chan struct{})

	s.mu.Lock()
	if s.idle() {
		s.mu.Unlock()
		return nil
	}
	unsubscribe := s.addIdleListenerLocked(func() { close(idle) }, true)
	s.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		unsubscribe()
		return ctx.Err()
	}
}

// OnTaskError registers fn to run whenever a task fails. The failure is still
// delivered to the task's own future.
func (s *Scheduler) OnTaskError(fn func(err *srvErrors.TaskError)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextListenerID
	s.nextListenerID++
	s.errorListeners = append(s.errorListeners, listener[func(*srvErrors.TaskError)]{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.errorListeners = removeListener(s.errorListeners, id)
	}
}

func (s *Scheduler) addIdleListener(fn func(), once bool) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addIdleListenerLocked(fn, once)
}

func (s *Scheduler) addIdleListenerLocked(fn func(), once bool) func() {
	id := s.nextListenerID
	s.nextListenerID++
	s.idleListeners = append(s.idleListeners, listener[func()]{id: id, once: once, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.idleListeners = removeListener(s.idleListeners, id)
	}
}

// notifyIdle delivers the idle transition observed at epoch. It is dropped if
// work was submitted in the meantime.
func (s *Scheduler) notifyIdle(epoch uint64) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.epoch != epoch || !s.idle() {
		s.mu.Unlock()
		return
	}
	fns := make([]func(), 0, len(s.idleListeners))
	kept := s.idleListeners[:0]
	for _, l := range s.idleListeners {
		fns = append(fns, l.fn)
		if !l.once {
			kept = append(kept, l)
		}
	}
	s.idleListeners = kept
	s.mu.Unlock()

	s.log.Debugw("scheduler idle", "listeners", len(fns))
	for _, fn := range fns {
		callIdleListener(fn)
	}
}

func (s *Scheduler) notifyTaskError(err *srvErrors.TaskError) {
	s.mu.Lock()
	fns := make([]func(*srvErrors.TaskError), 0, len(s.errorListeners))
	for _, l := range s.errorListeners {
		fns = append(fns, l.fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		callListener(fn, err)
	}
}

func callIdleListener(fn func()) {
	defer recoverListener()
	fn()
}

func removeListener[F any](listeners []listener[F], id int) []listener[F] {
	for i, l := range listeners {
		if l.id == id {
			return append(listeners[:i], listeners[i+1:]...)
		}
	}
	return listeners
}
