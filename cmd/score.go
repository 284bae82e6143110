package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a CSV cohort without detection",
	Long:  "Computes CPS, TPI, and (with --performance) MDS over a business CSV. No network calls and no persistence.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		csvPath, _ := cmd.Flags().GetString("businesses")
		perfPath, _ := cmd.Flags().GetString("performance")
		if csvPath == "" {
			return eris.New("--businesses is required")
		}

		businesses, err := loadBusinessesCSV(ctx, csvPath)
		if err != nil {
			return eris.Wrap(err, "score: load businesses")
		}
		perf, err := loadPerformanceCSV(ctx, perfPath)
		if err != nil {
			return eris.Wrap(err, "score: load performance")
		}

		// nil detector: verdicts stay zero, only the indices are computed.
		analyzer := buildAnalyzer(nil)
		reports, summary, err := analyzer.Analyze(ctx, businesses, perf)
		if err != nil {
			return eris.Wrap(err, "score")
		}

		formatReports(os.Stdout, reports)
		formatSummary(os.Stdout, summary)
		return nil
	},
}

func init() {
	scoreCmd.Flags().String("businesses", "", "path to a business snapshot CSV")
	scoreCmd.Flags().String("performance", "", "path to a district performance CSV for MDS")

	rootCmd.AddCommand(scoreCmd)
}
