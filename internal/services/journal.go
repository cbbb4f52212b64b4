package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jkilzi/taskqueue/internal/models"
	"github.com/jkilzi/taskqueue/internal/store"
	srvErrors "github.com/jkilzi/taskqueue/pkg/errors"
	"github.com/jkilzi/taskqueue/pkg/scheduler"
)

const journalSaveTimeout = 5 * time.Second

// Journal records the outcome of tracked jobs. Runs stay in memory while
// their future is unresolved and are written to the store once it settles.
type Journal struct {
	store  *store.Store
	mu     sync.Mutex
	active map[string]models.Run
	log    *zap.SugaredLogger
}

func NewJournalService(st *store.Store) *Journal {
	return &Journal{
		store:  st,
		active: make(map[string]models.Run),
		log:    zap.S().Named("journal_service"),
	}
}

// Track journals the run behind f as job and returns the run id, which is
// the id of the future.
func Track[T any](j *Journal, job string, f *scheduler.Future[T]) string {
	run := models.Run{
		ID:        f.ID(),
		Job:       job,
		State:     models.RunStateRunning,
		StartedAt: time.Now().UTC(),
	}

	j.mu.Lock()
	j.active[run.ID] = run
	j.mu.Unlock()

	f.OnComplete(func(r scheduler.Result[T]) {
		finishedAt := time.Now().UTC()
		run.FinishedAt = &finishedAt

		switch {
		case r.Err == nil:
			run.State = models.RunStateCompleted
			if out, err := json.Marshal(r.Data); err == nil {
				run.Output = string(out)
			} else {
				j.log.Warnw("failed to encode run output", "run", run.ID, "error", err)
			}
		case errors.Is(r.Err, context.Canceled), errors.Is(r.Err, srvErrors.ErrSchedulerClosed):
			run.State = models.RunStateCanceled
			run.Error = r.Err.Error()
		default:
			run.State = models.RunStateFailed
			run.Error = r.Err.Error()
		}

		j.finish(run)
	})

	return run.ID
}

func (j *Journal) finish(run models.Run) {
	ctx, cancel := context.WithTimeout(context.Background(), journalSaveTimeout)
	defer cancel()

	if err := j.store.Runs().Save(ctx, run); err != nil {
		j.log.Errorw("failed to journal run", "run", run.ID, "job", run.Job, "error", err)
	} else {
		j.log.Debugw("run journaled", "run", run.ID, "job", run.Job, "state", run.State)
	}

	j.mu.Lock()
	delete(j.active, run.ID)
	j.mu.Unlock()
}

// Get returns the run with id, whether it is still running or journaled.
func (j *Journal) Get(ctx context.Context, id string) (*models.Run, error) {
	j.mu.Lock()
	run, ok := j.active[id]
	j.mu.Unlock()
	if ok {
		return &run, nil
	}
	return j.store.Runs().Get(ctx, id)
}

// Active returns the number of tracked runs not journaled yet.
func (j *Journal) Active() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.active)
}

type RunListParams struct {
	Jobs   []string
	States []models.RunState
	Limit  uint64
	Offset uint64
}

type RunListResult struct {
	Runs  []models.Run
	Total int
}

// List returns journaled runs. Total counts every match regardless of
// pagination.
func (j *Journal) List(ctx context.Context, params RunListParams) (*RunListResult, error) {
	runs, err := j.store.Runs().List(ctx, j.buildListOptions(params)...)
	if err != nil {
		return nil, err
	}

	total, err := j.store.Runs().Count(ctx, j.buildListOptions(RunListParams{
		Jobs:   params.Jobs,
		States: params.States,
	})...)
	if err != nil {
		return nil, err
	}

	return &RunListResult{
		Runs:  runs,
		Total: total,
	}, nil
}

func (j *Journal) buildListOptions(params RunListParams) []store.ListOption {
	var opts []store.ListOption

	if len(params.Jobs) > 0 {
		opts = append(opts, store.ByJob(params.Jobs...))
	}
	if len(params.States) > 0 {
		opts = append(opts, store.ByState(params.States...))
	}
	if params.Limit > 0 {
		opts = append(opts, store.WithLimit(params.Limit))
	}
	if params.Offset > 0 {
		opts = append(opts, store.WithOffset(params.Offset))
	}

	return opts
}
