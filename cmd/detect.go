package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/market-intel/internal/model"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Run ad detection only",
	Long:  "Runs the signal extractors against one business or a CSV batch and prints the verdicts as JSON, without scoring or persistence.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		csvPath, _ := cmd.Flags().GetString("businesses")
		name, _ := cmd.Flags().GetString("name")
		website, _ := cmd.Flags().GetString("website")
		rating, _ := cmd.Flags().GetFloat64("rating")
		reviews, _ := cmd.Flags().GetInt("reviews")

		var businesses []model.Business
		switch {
		case csvPath != "":
			var err error
			businesses, err = loadBusinessesCSV(ctx, csvPath)
			if err != nil {
				return eris.Wrap(err, "detect: load businesses")
			}
		case name != "":
			businesses = []model.Business{{
				Name:        name,
				Website:     website,
				Rating:      rating,
				ReviewCount: reviews,
			}}
		default:
			return eris.New("either --businesses or --name is required")
		}

		detector := buildDetector()
		verdicts := detector.DetectAll(ctx, businesses, cfg.Batch.MaxConcurrentBusinesses)

		type row struct {
			Name    string                 `json:"name"`
			Verdict model.DetectionVerdict `json:"verdict"`
		}
		out := make([]row, len(businesses))
		for i := range businesses {
			out[i] = row{Name: businesses[i].Name, Verdict: verdicts[i]}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	detectCmd.Flags().String("businesses", "", "path to a business snapshot CSV")
	detectCmd.Flags().String("name", "", "single business name")
	detectCmd.Flags().String("website", "", "single business website URL")
	detectCmd.Flags().Float64("rating", 0, "single business rating [0,5]")
	detectCmd.Flags().Int("reviews", 0, "single business review count")

	rootCmd.AddCommand(detectCmd)
}
