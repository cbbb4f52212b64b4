package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jkilzi/taskqueue/internal/models"
	"github.com/jkilzi/taskqueue/internal/services"
	"github.com/jkilzi/taskqueue/internal/util"
)

var compressCmd = &cobra.Command{
	Use:   "compress <file>...",
	Short: "Compress files with gzip, deflate and zstd at once and compare the results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := services.NewCompressionService(cfg.Scheduler.Concurrency)

		all, err := runJob(cmd, "compress", func(ctx context.Context) ([][]models.CompressionStat, error) {
			return svc.CompressAll(ctx, args...)
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, stats := range all {
			original := stats[0]
			fmt.Fprintf(w, "%s\t%s\n", header(original.Path), util.HumanBytes(original.Size))
			for _, s := range stats[1:] {
				fmt.Fprintf(w, "  %s\t%s\t%.2f%%\t%s\n", s.Algorithm, util.HumanBytes(s.Size), util.Percent(s.Size, original.Size), faint(s.Duration))
			}
		}
		return w.Flush()
	},
}
