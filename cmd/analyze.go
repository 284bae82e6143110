package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/market-intel/internal/model"
	"github.com/sells-group/market-intel/pkg/places"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a full analysis: gather, detect, score, persist",
	Long:  "Loads businesses from a CSV or the Places API, runs ad detection and the scoring pipeline, stores the run, and prints a summary.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		csvPath, _ := cmd.Flags().GetString("businesses")
		perfPath, _ := cmd.Flags().GetString("performance")
		sector, _ := cmd.Flags().GetString("sector")
		location, _ := cmd.Flags().GetString("location")

		var businesses []model.Business
		var err error
		switch {
		case csvPath != "":
			businesses, err = loadBusinessesCSV(ctx, csvPath)
		case sector != "":
			if cfg.Places.Key == "" {
				return eris.New("places api key is required (MARKETINTEL_PLACES_KEY)")
			}
			client := places.NewClient(cfg.Places.Key, places.WithLanguage(cfg.Places.Language))
			businesses, err = client.NearbySearch(ctx, sector,
				cfg.Places.CenterLat, cfg.Places.CenterLng, cfg.Places.RadiusMeters)
		default:
			return eris.New("either --businesses or --sector is required")
		}
		if err != nil {
			return eris.Wrap(err, "analyze: gather businesses")
		}
		zap.L().Info("analyze: businesses gathered", zap.Int("count", len(businesses)))

		perf, err := loadPerformanceCSV(ctx, perfPath)
		if err != nil {
			return eris.Wrap(err, "analyze: load performance")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.CreateRun(ctx, sector, location)
		if err != nil {
			return eris.Wrap(err, "analyze: create run")
		}

		analyzer := buildAnalyzer(buildDetector())
		reports, summary, err := analyzer.Analyze(ctx, businesses, perf)
		if err != nil {
			if failErr := st.FailRun(ctx, run.ID, err.Error()); failErr != nil {
				zap.L().Warn("analyze: fail run", zap.Error(failErr))
			}
			return eris.Wrap(err, "analyze")
		}

		if err := st.SaveReports(ctx, run.ID, reports); err != nil {
			return eris.Wrap(err, "analyze: save reports")
		}
		if err := st.CompleteRun(ctx, run.ID, summary); err != nil {
			return eris.Wrap(err, "analyze: complete run")
		}

		fmt.Printf("Run %s complete.\n\n", run.ID)
		formatReports(os.Stdout, reports)
		formatSummary(os.Stdout, summary)
		return nil
	},
}

func formatReports(w io.Writer, reports []model.BusinessReport) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDISTRICT\tADS\tCONF\tCPS\tTPI\tMDS")
	for _, r := range reports {
		ads := "-"
		if r.Verdict.HasSignal {
			ads = "yes"
		}
		mds := "-"
		if r.MDS != nil {
			mds = fmt.Sprintf("%.1f", *r.MDS)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f\t%.2f\t%s\n",
			r.Business.Name, r.Business.District, ads, r.Verdict.Confidence, r.CPS, r.TPI, mds)
	}
	tw.Flush()
}

func formatSummary(w io.Writer, s *model.RunSummary) {
	fmt.Fprintf(w, "\nBusinesses: %d  Advertisers: %d  Mean CPS: %.1f  Mean signal score: %.2f\n",
		s.Businesses, s.Advertisers, s.MeanCPS, s.MeanScore)
	for _, c := range []model.Confidence{model.ConfidenceVeryHigh, model.ConfidenceHigh, model.ConfidenceMedium, model.ConfidenceLow} {
		if n := s.ByConfidence[c]; n > 0 {
			fmt.Fprintf(w, "  %s: %d\n", c, n)
		}
	}
}

func init() {
	analyzeCmd.Flags().String("businesses", "", "path to a business snapshot CSV (skips the Places API)")
	analyzeCmd.Flags().String("performance", "", "path to a district performance CSV for MDS")
	analyzeCmd.Flags().String("sector", "", "Places keyword to search for (e.g. \"antique shop\")")
	analyzeCmd.Flags().String("location", "", "human-readable location label stored with the run")

	rootCmd.AddCommand(analyzeCmd)
}
