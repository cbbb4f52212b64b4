package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jkilzi/taskqueue/internal/config"
	"github.com/jkilzi/taskqueue/internal/logger"
)

var (
	cfg         *config.Configuration
	flushLogger = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "taskqueue",
	Short: "Run asynchronous jobs under a concurrency limit",
	Long: `taskqueue runs units of work on a bounded-concurrency scheduler: file
jobs, stream compression, CSV aggregation and timers. Job outcomes are
journaled in a DuckDB database and exposed over an HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		cfg = c

		flush, err := logger.Setup(cfg.LogFormat, cfg.LogLevel)
		if err != nil {
			return err
		}
		flushLogger = flush

		zap.S().Named("cli").Debugw("configuration loaded", "command", cmd.Name(), "config", cfg)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		flushLogger()
	},
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(mapCmd)
	rootCmd.AddCommand(concatCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(compressCmd)
	rootCmd.AddCommand(crimesCmd)
	rootCmd.AddCommand(tickerCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, failure(err.Error()))
		stop()
		os.Exit(1)
	}
}
