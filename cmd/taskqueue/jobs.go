package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/jkilzi/taskqueue/internal/services"
	"github.com/jkilzi/taskqueue/internal/store"
	"github.com/jkilzi/taskqueue/internal/store/migrations"
	"github.com/jkilzi/taskqueue/pkg/scheduler"
)

func openStore(ctx context.Context) (*store.Store, error) {
	db, err := store.NewDB(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := migrations.Run(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return store.NewStore(db), nil
}

// runJob runs w as a journaled job named job and waits for its outcome.
// The job gets a scheduler of its own so that Close waits for the journal
// write before the store is closed.
func runJob[T any](cmd *cobra.Command, job string, w scheduler.Work[T]) (T, error) {
	var zero T
	ctx := cmd.Context()

	st, err := openStore(ctx)
	if err != nil {
		return zero, err
	}
	defer st.Close()

	s, err := scheduler.NewScheduler(1, scheduler.WithContext(ctx), scheduler.WithName(job))
	if err != nil {
		return zero, err
	}
	defer s.Close()

	f := scheduler.Submit(s, w)
	services.Track(services.NewJournalService(st), job, f)

	v, err := f.Wait(ctx)
	if errors.Is(err, context.Canceled) {
		return zero, errors.New("interrupted")
	}
	return v, err
}
