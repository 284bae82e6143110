package scoring

import (
	"math"

	"github.com/sells-group/market-intel/internal/model"
)

// ratioCap bounds the CVR and CPA performance ratios so a single outlier
// district cannot dominate the score.
const ratioCap = 2.0

// MarketDominance combines market opportunity (TPI) with observed campaign
// performance into a Market Dominance Score in [0,100].
//
// The CVR ratio is direct (converting better than the cohort raises the
// score); the CPA ratio is inverted (acquiring cheaper than the cohort
// raises the score). Zero denominators yield the neutral ratio 1.0, so
// absent data earns neither penalty nor bonus.
func MarketDominance(tpi, actualCVR, actualCPA, avgCVR, avgCPA float64) float64 {
	tpiComponent := (tpi / 100) * 40

	cvrRatio := 1.0
	if avgCVR > 0 {
		cvrRatio = actualCVR / avgCVR
	}
	cvrComponent := math.Min(cvrRatio, ratioCap) * 15

	cpaRatio := 1.0
	if actualCPA > 0 {
		cpaRatio = avgCPA / actualCPA
	}
	cpaComponent := math.Min(cpaRatio, ratioCap) * 15

	return math.Min(tpiComponent+cvrComponent+cpaComponent, 100)
}

// CohortAverages returns the mean CVR and CPA across the performance cohort.
// The performance cohort is independent of the CPS cohort used for TPI; the
// two need not coincide. An empty cohort returns ErrEmptyCohort.
func CohortAverages(perf []model.DistrictPerformance) (avgCVR, avgCPA float64, err error) {
	if len(perf) == 0 {
		return 0, 0, ErrEmptyCohort
	}

	var sumCVR, sumCPA float64
	for _, p := range perf {
		sumCVR += p.CVR
		sumCPA += p.CPA
	}
	n := float64(len(perf))
	return sumCVR / n, sumCPA / n, nil
}
