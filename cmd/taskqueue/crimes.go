package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jkilzi/taskqueue/internal/models"
	"github.com/jkilzi/taskqueue/internal/services"
)

var (
	crimesWindow int
	crimesXLSX   string
)

var crimesCmd = &cobra.Command{
	Use:   "crimes <csv>...",
	Short: "Aggregate London crime statistics",
	Long: `crimes streams the London crime CSV files
(lsoa_code,borough,major_category,minor_category,value,year,month) and
reports the least common crime, the most dangerous borough, the most common
crime per borough and whether crimes increased over the last years.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := services.NewCrimesService(cfg.Scheduler.Concurrency, services.WithTrendWindow(crimesWindow))

		report, err := runJob(cmd, "crimes", func(ctx context.Context) (*models.CrimeReport, error) {
			return svc.Report(ctx, args...)
		})
		if err != nil {
			return err
		}

		printCrimeReport(cmd, report)

		if crimesXLSX != "" {
			if err := services.ExportCrimeReport(report, crimesXLSX); err != nil {
				return fmt.Errorf("failed to export report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s report written to %s\n", success("✓"), crimesXLSX)
		}
		return nil
	},
}

func init() {
	crimesCmd.Flags().IntVar(&crimesWindow, "years", 4, "number of most recent years covered by the trend")
	crimesCmd.Flags().StringVar(&crimesXLSX, "xlsx", "", "also write the report to this XLSX file")
}

func printCrimeReport(cmd *cobra.Command, r *models.CrimeReport) {
	out := cmd.OutOrStdout()

	trend := warning("no")
	if r.Increasing {
		trend = failure("yes")
	}

	fmt.Fprintf(out, "%s\n", header("Crime report"))
	fmt.Fprintf(out, "  rows                    %d\n", r.Rows)
	fmt.Fprintf(out, "  least common crime      %s\n", r.LeastCommonCrime)
	fmt.Fprintf(out, "  most dangerous borough  %s\n", r.MostDangerousBorough)
	fmt.Fprintf(out, "  increasing (%d years)    %s\n", r.TrendWindow, trend)

	boroughs := make([]string, 0, len(r.MostCommonCrimeByBorough))
	for b := range r.MostCommonCrimeByBorough {
		boroughs = append(boroughs, b)
	}
	sort.Strings(boroughs)

	fmt.Fprintf(out, "\n%s\n", header("Most common crime by borough"))
	for _, b := range boroughs {
		fmt.Fprintf(out, "  %-24s%s\n", b, r.MostCommonCrimeByBorough[b])
	}
}
