package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jkilzi/taskqueue/internal/models"
	"github.com/jkilzi/taskqueue/internal/services"
)

var (
	tickerMax      time.Duration
	tickerInterval time.Duration
)

var tickerCmd = &cobra.Command{
	Use:   "ticker",
	Short: "Tick until a maximum duration, reporting faulty ticks",
	Long: `ticker emits a tick every interval until --max has elapsed. A tick firing on
a millisecond timestamp divisible by 5 is reported as an error and the
ticker keeps going.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		svc := services.NewTickerService(services.WithTickInterval(tickerInterval))

		var faulty int
		count, err := svc.Run(cmd.Context(), tickerMax,
			func(t models.Tick) {
				fmt.Fprintf(out, "%s tick %d at %s\n", success("✓"), t.Seq, t.Elapsed)
			},
			func(err error) {
				faulty++
				fmt.Fprintf(out, "%s %v\n", failure("✗"), err)
			},
		)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\n%d ticks, %d faulty\n", count, faulty)
		return nil
	},
}

func init() {
	tickerCmd.Flags().DurationVar(&tickerMax, "max", time.Second, "maximum duration")
	tickerCmd.Flags().DurationVar(&tickerInterval, "interval", 50*time.Millisecond, "tick interval")
}
