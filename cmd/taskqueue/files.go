package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jkilzi/taskqueue/internal/services"
	"github.com/jkilzi/taskqueue/pkg/client"
)

var (
	findServer string
	findWait   bool
)

var concatCmd = &cobra.Command{
	Use:   "concat <dest> <file>...",
	Short: "Append files to dest in argument order, reading them concurrently",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest, files := args[0], args[1:]
		svc := services.NewFilesService(cfg.Scheduler.Concurrency)

		if _, err := runJob(cmd, "concat", func(ctx context.Context) (int, error) {
			return len(files), svc.Concat(ctx, dest, files...)
		}); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s appended %d files to %s\n", success("✓"), len(files), dest)
		return nil
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls <dir>",
	Short: "List every file below dir",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := services.NewFilesService(cfg.Scheduler.Concurrency)

		files, err := runJob(cmd, "ls", func(ctx context.Context) ([]string, error) {
			return svc.List(ctx, args[0])
		})
		if err != nil {
			return err
		}

		for _, f := range files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		return nil
	},
}

var findCmd = &cobra.Command{
	Use:   "find <dir> <keyword>",
	Short: "List the files below dir containing keyword",
	Long: `find searches every file below dir for keyword. With --server the search
runs as a background job on a running taskqueue server and the run id is
printed; --wait polls the server until the job settles.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if findServer != "" {
			return findRemote(cmd, args[0], args[1])
		}

		svc := services.NewFilesService(cfg.Scheduler.Concurrency)
		files, err := runJob(cmd, "find", func(ctx context.Context) ([]string, error) {
			return svc.Find(ctx, args[0], args[1])
		})
		if err != nil {
			return err
		}

		printMatches(cmd, files)
		return nil
	},
}

func init() {
	findCmd.Flags().StringVar(&findServer, "server", "", "submit the search to the taskqueue server at this url")
	findCmd.Flags().BoolVar(&findWait, "wait", false, "with --server, wait for the search to finish")
}

func findRemote(cmd *cobra.Command, dir, keyword string) error {
	c, err := client.NewClient(findServer)
	if err != nil {
		return err
	}

	id, err := c.Find(cmd.Context(), dir, keyword)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s find job %s started\n", header("▶"), id)
	if !findWait {
		return nil
	}

	run, err := c.WaitRun(cmd.Context(), id, 200*time.Millisecond)
	if err != nil {
		return err
	}
	printRun(cmd, *run)
	return nil
}

func printMatches(cmd *cobra.Command, files []string) {
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), warning("no match"))
		return
	}
	for _, f := range files {
		fmt.Fprintln(cmd.OutOrStdout(), f)
	}
}
