package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	v1 "github.com/jkilzi/taskqueue/api/v1"
	"github.com/jkilzi/taskqueue/internal/services"
	"github.com/jkilzi/taskqueue/pkg/client"
)

var (
	runsServer string
	runsParams v1.ListRunsParams
	runsStates []string
)

var runsCmd = &cobra.Command{
	Use:   "runs [id]",
	Short: "Show journaled job runs",
	Long: `runs lists the journaled runs, newest first, or shows one run when an id is
given. Runs are read from the --db journal, or from a running server with
--server.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, s := range runsStates {
			runsParams.State = append(runsParams.State, v1.RunState(s))
		}

		if len(args) == 1 {
			run, err := getRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printRun(cmd, *run)
			return nil
		}

		list, err := listRuns(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", header("ID"), header("JOB"), header("STATE"), header("STARTED"), header("DURATION"))
		for _, r := range list.Runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Id, r.Job, colorState(r.State), r.StartedAt.Local().Format(time.DateTime), formatDuration(r.Duration))
		}
		fmt.Fprintf(w, "\n%d of %d runs\n", len(list.Runs), list.Total)
		return w.Flush()
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsServer, "server", "", "read runs from the taskqueue server at this url")
	runsCmd.Flags().StringSliceVar(&runsParams.Job, "job", nil, "only show runs of these jobs")
	runsCmd.Flags().StringSliceVar(&runsStates, "state", nil, "only show runs in these states")
	runsCmd.Flags().IntVar(&runsParams.Limit, "limit", 20, "maximum number of runs")
	runsCmd.Flags().IntVar(&runsParams.Offset, "offset", 0, "number of runs to skip")
}

func getRun(ctx context.Context, id string) (*v1.Run, error) {
	if runsServer != "" {
		c, err := client.NewClient(runsServer)
		if err != nil {
			return nil, err
		}
		return c.GetRun(ctx, id)
	}

	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	run, err := services.NewJournalService(st).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	apiRun := v1.NewRunFromModel(*run)
	return &apiRun, nil
}

func listRuns(ctx context.Context) (*v1.RunListResponse, error) {
	if runsServer != "" {
		c, err := client.NewClient(runsServer)
		if err != nil {
			return nil, err
		}
		return c.ListRuns(ctx, runsParams)
	}

	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	result, err := services.NewJournalService(st).List(ctx, runsParams.ToListParams(20, 1000))
	if err != nil {
		return nil, err
	}
	list := v1.NewRunListResponse(result)
	return &list, nil
}

func printRun(cmd *cobra.Command, r v1.Run) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", header("run"), r.Id)
	fmt.Fprintf(out, "  job       %s\n", r.Job)
	fmt.Fprintf(out, "  state     %s\n", colorState(r.State))
	fmt.Fprintf(out, "  started   %s\n", r.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "  duration  %s\n", formatDuration(r.Duration))
	if r.Error != nil {
		fmt.Fprintf(out, "  error     %s\n", failure(*r.Error))
	}
	if r.Output != nil {
		data, err := json.MarshalIndent(r.Output, "  ", "  ")
		if err == nil {
			fmt.Fprintf(out, "  output    %s\n", data)
		}
	}
}

func colorState(s v1.RunState) string {
	switch s {
	case v1.RunStateCompleted:
		return success(s)
	case v1.RunStateFailed:
		return failure(s)
	case v1.RunStateCanceled:
		return warning(s)
	default:
		return string(s)
	}
}

func formatDuration(ms *int64) string {
	if ms == nil {
		return faint("-")
	}
	return (time.Duration(*ms) * time.Millisecond).String()
}
