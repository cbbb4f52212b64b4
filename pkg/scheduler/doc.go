// Package scheduler runs asynchronous work under a concurrency cap and hands
// back a future for every submission.
//
// The scheduler tracks how many tasks are running and keeps a FIFO queue of
// the ones waiting for a free slot. Submitting never blocks: work either
// starts immediately or waits its turn. Observers can be told when the
// scheduler becomes idle and whenever a task fails.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────────┐
//	│                           Scheduler                                 │
//	│                                                                     │
//	│   running: 2 / limit: 2                                             │
//	│  ┌──────────────┐      ┌──────────────┐                             │
//	│  │   worker     │      │   worker     │     (one goroutine per      │
//	│  │   task 1     │      │   task 2     │      running task)          │
//	│  └──────┬───────┘      └──────┬───────┘                             │
//	│         │   complete()        │                                     │
//	│         └──────────┬──────────┘                                     │
//	│                    ▼                                                │
//	│             ┌─────────────┐        ┌─────────────────────────┐      │
//	│             │ dispatch()  │───────►│ idle? notify OnIdle     │      │
//	│             └──────┬──────┘        └─────────────────────────┘      │
//	│                    │                                                │
//	│  ┌─────────────────┴───────────────────────────────────────┐        │
//	│  │                      Work Queue                         │        │
//	│  │  [task3] [task4] [task5] ...                            │        │
//	│  └─────────────────────────────────────────────────────────┘        │
//	│                    ▲                                                │
//	│                    │                                                │
//	│              Submit(s, fn)                                          │
//	└─────────────────────────────────────────────────────────────────────┘
//
// # Bookkeeping
//
// A single mutex guards the work queue, the running count, the listener
// lists and the closed flag. dispatch() is the only place capacity is
// consumed:
//
//	for running < limit && len(queue) > 0 {
//	    t := queue.Pop()
//	    running++
//	    go worker.Work(t)
//	}
//
// It runs under the lock, after every submission and after every
// completion, so popping a task and counting it as running is a single step.
// Completions never call back into dispatch recursively: each task runs on
// its own goroutine and releases its slot when it returns.
//
// # Task Lifecycle
//
//	┌───────────┐   dispatch()   ┌───────────┐   work returns   ┌───────────┐
//	│  Pending  │ ─────────────► │  Running  │ ───────────────► │   Done    │
//	└─────┬─────┘                └───────────┘                  └───────────┘
//	      │          Stop() / CancelPending() / Close()               ▲
//	      └───────────────────────────────────────────────────────────┘
//
// When the work returns, the worker:
//
//  1. resolves the future (exactly once; a second resolution panics with a
//     SchedulerMisuseError)
//  2. notifies OnTaskError listeners if the work failed
//  3. decrements the running count and calls dispatch()
//  4. notifies OnIdle listeners if nothing is running or pending anymore
//
// Panics in work functions are recovered and reported as failures. Work
// returning ErrTaskCanceled is counted as canceled instead of failed.
//
// # Future
//
//	f := scheduler.Submit(s, func(ctx context.Context) (int, error) {
//	    return 42, nil
//	})
//
//	v, err := f.Wait(ctx)               // block
//	r := <-f.C()                        // or receive a Result
//	f.OnSuccess(func(v int) { ... })    // or attach listeners
//	f.OnFailure(func(err error) { ... })
//	f.Stop()                            // drop it if still pending
//
// # Idle Notification
//
// OnIdle listeners fire once per busy to idle transition. The transition is
// detected under the same lock as submissions, and it is dropped if new work
// arrived before the listeners could be called, so a listener never reports
// idleness after work resumed.
//
//	s.OnIdle(func() { log.Println("done") })
//	err := s.WaitIdle(ctx)
//
// # Bounded Batches
//
// MapAsync maps a slice through an async function with a concurrency limit,
// keeps input order and fails fast: the first failure stops dispatch of the
// remaining items, lets the running ones finish and returns that failure.
//
//	out, err := scheduler.MapAsync(ctx, []int{1, 2, 3}, 2,
//	    func(ctx context.Context, v, idx int) (int, error) {
//	        return v * 2, nil
//	    })
//
// All waits for several futures and fails on the first failure.
//
// # Retries
//
// The scheduler never retries. Work can be wrapped before submission:
//
//	w := scheduler.Retry(scheduler.Breaker(cb, read), backoff.WithMaxTries(3))
//
// An open breaker fails at once and stops the retries.
//
// # Concurrency Limit
//
// The limit is fixed at construction and must be at least 1. SetLimit
// changes it at runtime: raising it dispatches queued work at once, lowering
// it pauses dispatch until the running count falls below the new limit.
//
// # Shutdown
//
// Close() cancels pending tasks (their futures resolve with ErrTaskCanceled),
// cancels the context handed to running tasks and waits for them. Close is
// idempotent. Work submitted after Close resolves with ErrSchedulerClosed.
package scheduler
