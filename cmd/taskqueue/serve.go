package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	v1 "github.com/jkilzi/taskqueue/api/v1"
	"github.com/jkilzi/taskqueue/internal/handlers"
	"github.com/jkilzi/taskqueue/internal/server"
	"github.com/jkilzi/taskqueue/internal/services"
	"github.com/jkilzi/taskqueue/internal/store"
	"github.com/jkilzi/taskqueue/pkg/scheduler"
)

const shutdownTimeout = 30 * time.Second

var serveRetention time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run jobs on a shared scheduler",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().DurationVar(&serveRetention, "retention", 0, "delete journaled runs older than this, checked hourly (0 keeps everything)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := zap.S().Named("serve")

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	s, err := scheduler.NewScheduler(cfg.Scheduler.Concurrency, scheduler.WithContext(ctx), scheduler.WithName("jobs"))
	if err != nil {
		return err
	}
	// runs the journal writes of the in-flight jobs before the store closes
	defer s.Close()

	journal := services.NewJournalService(st)
	jobs := services.NewJobsService(s, journal, services.NewFilesService(cfg.Scheduler.Concurrency))
	h := handlers.New(jobs, journal)

	srv, err := server.NewServer(cfg, func(router *gin.RouterGroup) {
		v1.RegisterHandlers(router, h)
	})
	if err != nil {
		return err
	}

	if serveRetention > 0 {
		go pruneRuns(ctx, st, serveRetention)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	srv.Stop(shutdownCtx)

	log.Infow("scheduler stopped", "stats", s.Stats())
	return nil
}

func pruneRuns(ctx context.Context, st *store.Store, retention time.Duration) {
	log := zap.S().Named("retention")
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		n, err := st.Runs().Prune(ctx, time.Now().Add(-retention))
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Errorw("failed to prune runs", "error", err)
		} else if n > 0 {
			log.Infow("runs pruned", "count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
