package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	srvErrors "github.com/jkilzi/taskqueue/pkg/errors"
	"github.com/jkilzi/taskqueue/pkg/scheduler"
)

var (
	demoTasks     int
	demoDelay     time.Duration
	demoFailEvery int
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run delayed tasks under the concurrency limit and report the timings",
	Args:  cobra.NoArgs,
	RunE:  runDemo,
}

func init() {
	demoCmd.Flags().IntVar(&demoTasks, "tasks", 10, "number of tasks to submit")
	demoCmd.Flags().DurationVar(&demoDelay, "delay", 100*time.Millisecond, "duration of every task")
	demoCmd.Flags().IntVar(&demoFailEvery, "fail-every", 0, "make every n-th task fail (0 disables)")
}

func runDemo(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	s, err := scheduler.NewScheduler(cfg.Scheduler.Concurrency, scheduler.WithContext(cmd.Context()), scheduler.WithName("demo"))
	if err != nil {
		return err
	}
	defer s.Close()

	start := time.Now()
	s.OnTaskError(func(err *srvErrors.TaskError) {
		fmt.Fprintf(out, "%s task %s: %v\n", failure("✗"), shortID(err.TaskID), err.Err)
	})
	s.OnIdle(func() {
		fmt.Fprintf(out, "%s scheduler idle after %s\n", header("●"), time.Since(start).Round(time.Millisecond))
	})

	fmt.Fprintf(out, "%s %d tasks of %s at concurrency %d\n", header("▶"), demoTasks, demoDelay, cfg.Scheduler.Concurrency)

	futures := make([]*scheduler.Future[int], demoTasks)
	for i := range demoTasks {
		n := i + 1
		futures[i] = scheduler.Submit(s, func(ctx context.Context) (int, error) {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(demoDelay):
			}
			if demoFailEvery > 0 && n%demoFailEvery == 0 {
				return 0, fmt.Errorf("task %d failed on purpose", n)
			}
			return n, nil
		})
		futures[i].OnSuccess(func(n int) {
			fmt.Fprintf(out, "%s task %d done at %s\n", success("✓"), n, time.Since(start).Round(time.Millisecond))
		})
	}

	if err := s.WaitIdle(cmd.Context()); err != nil {
		return err
	}

	stats := s.Stats()
	fmt.Fprintf(out, "\n%s\n", header("Summary"))
	fmt.Fprintf(out, "  elapsed       %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(out, "  completed     %d\n", stats.Completed-stats.Failed)
	fmt.Fprintf(out, "  failed        %d\n", stats.Failed)
	fmt.Fprintf(out, "  peak running  %d\n", stats.PeakRunning)
	return nil
}
