package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	srvErrors "github.com/jkilzi/taskqueue/pkg/errors"
	"github.com/jkilzi/taskqueue/pkg/scheduler"
)

var (
	mapDelay  time.Duration
	mapFailOn int
)

var mapCmd = &cobra.Command{
	Use:   "map <n>...",
	Short: "Square numbers concurrently and print them in input order",
	Long: `map squares every argument on a bounded batch. The first failure stops the
batch: numbers not started yet are skipped and the failing position is
reported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMap,
}

func init() {
	mapCmd.Flags().DurationVar(&mapDelay, "delay", 50*time.Millisecond, "duration of every item")
	mapCmd.Flags().IntVar(&mapFailOn, "fail-on", 0, "fail the item equal to this value (0 disables)")
}

func runMap(cmd *cobra.Command, args []string) error {
	numbers := make([]int, 0, len(args))
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return fmt.Errorf("invalid number %q", a)
		}
		numbers = append(numbers, n)
	}

	squares, err := scheduler.MapAsync(cmd.Context(), numbers, cfg.Scheduler.Concurrency, func(ctx context.Context, n int, _ int) (int, error) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(mapDelay):
		}
		if mapFailOn != 0 && n == mapFailOn {
			return 0, fmt.Errorf("refusing to square %d", n)
		}
		return n * n, nil
	})
	if err != nil {
		var itemErr *srvErrors.BatchItemError
		if errors.As(err, &itemErr) {
			return fmt.Errorf("item %d (%d): %w", itemErr.Index, numbers[itemErr.Index], itemErr.Err)
		}
		return err
	}

	for i, sq := range squares {
		fmt.Fprintf(cmd.OutOrStdout(), "%d² = %d\n", numbers[i], sq)
	}
	return nil
}
