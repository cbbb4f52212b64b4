package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/jkilzi/taskqueue/internal/models"
	srvErrors "github.com/jkilzi/taskqueue/pkg/errors"
)

// RunStore keeps the journal of finished job runs.
type RunStore struct {
	db QueryInterceptor
}

func NewRunStore(db QueryInterceptor) *RunStore {
	return &RunStore{db: db}
}

// Save inserts the run or updates its outcome.
func (s *RunStore) Save(ctx context.Context, run models.Run) error {
	var finishedAt sql.NullTime
	if run.FinishedAt != nil {
		finishedAt = sql.NullTime{Time: run.FinishedAt.UTC(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, queryUpsertRun,
		run.ID,
		run.Job,
		run.State.Value(),
		run.Error,
		run.Output,
		run.StartedAt.UTC(),
		finishedAt,
	)
	return err
}

func (s *RunStore) Get(ctx context.Context, id string) (*models.Run, error) {
	query, args, err := sq.Select(runColumns...).From("runs").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	run, err := scanRun(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewRunNotFoundError(id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List returns runs, most recent first unless opts sort otherwise.
func (s *RunStore) List(ctx context.Context, opts ...ListOption) ([]models.Run, error) {
	builder := sq.Select(runColumns...).From("runs").OrderBy("started_at DESC", "id")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []models.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// Count returns the number of runs matching opts. Pagination options are
// ignored.
func (s *RunStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	builder := sq.Select("COUNT(*)").From("runs")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.RemoveLimit().RemoveOffset().ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

// Prune deletes runs that finished before t.
func (s *RunStore) Prune(ctx context.Context, t time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, queryDeleteRunsBefore, t.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	var (
		run        models.Run
		state      string
		finishedAt sql.NullTime
	)
	if err := row.Scan(&run.ID, &run.Job, &state, &run.Error, &run.Output, &run.StartedAt, &finishedAt); err != nil {
		return nil, err
	}
	run.State = models.RunState(state)
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}
	return &run, nil
}

type ListOption func(sq.SelectBuilder) sq.SelectBuilder

func ByJob(jobs ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(jobs) == 0 {
			return b
		}
		return b.Where(sq.Eq{"job": jobs})
	}
}

func ByState(states ...models.RunState) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(states) == 0 {
			return b
		}
		values := make([]string, 0, len(states))
		for _, s := range states {
			values = append(values, s.Value())
		}
		return b.Where(sq.Eq{"state": values})
	}
}

func WithLimit(limit uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if limit == 0 {
			return b
		}
		return b.Limit(limit)
	}
}

func WithOffset(offset uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if offset == 0 {
			return b
		}
		return b.Offset(offset)
	}
}
