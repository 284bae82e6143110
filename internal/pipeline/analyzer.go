// Package pipeline orchestrates a full analysis run: geography, competitive
// pressure, cohort normalization, ad detection, and the district performance
// join.
package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/market-intel/internal/detect"
	"github.com/sells-group/market-intel/internal/geo"
	"github.com/sells-group/market-intel/internal/model"
	"github.com/sells-group/market-intel/internal/scoring"
)

// Config holds the per-run analysis parameters.
type Config struct {
	// CenterLat/CenterLng anchor the distance factor of CPS, typically the
	// city center of the searched location.
	CenterLat float64
	CenterLng float64
	// DensityRadiusKM is the neighbor-count radius. Zero means the default.
	DensityRadiusKM float64
	Weights         scoring.PressureWeights
	// Concurrency bounds parallel detection. Zero means sequential.
	Concurrency int
}

// Analyzer runs the scoring pipeline over a business cohort.
type Analyzer struct {
	detector *detect.Detector
	cfg      Config
}

// NewAnalyzer creates an Analyzer. A nil detector skips detection and leaves
// every verdict at its zero value (score-only runs).
func NewAnalyzer(detector *detect.Detector, cfg Config) *Analyzer {
	if cfg.DensityRadiusKM <= 0 {
		cfg.DensityRadiusKM = geo.DefaultDensityRadiusKM
	}
	return &Analyzer{detector: detector, cfg: cfg}
}

// Analyze scores the cohort end to end and returns per-business reports plus
// the aggregate run summary.
//
// CPS and TPI always cover the whole cohort; MDS is attached only to
// businesses whose district appears in the performance data. An empty
// business list returns scoring.ErrEmptyCohort.
func (a *Analyzer) Analyze(ctx context.Context, businesses []model.Business, perf []model.DistrictPerformance) ([]model.BusinessReport, *model.RunSummary, error) {
	if len(businesses) == 0 {
		return nil, nil, scoring.ErrEmptyCohort
	}
	log := zap.L().With(zap.Int("cohort", len(businesses)))

	if err := a.cfg.Weights.Validate(); err != nil {
		return nil, nil, err
	}

	reports := make([]model.BusinessReport, len(businesses))
	cpsValues := make([]float64, len(businesses))
	for i, b := range businesses {
		dist := geo.DistanceKM(a.cfg.CenterLat, a.cfg.CenterLng, b.Latitude, b.Longitude)
		density := geo.MarketDensity(b, businesses, a.cfg.DensityRadiusKM)
		cps := scoring.CompetitivePressure(b.ReviewCount, b.Rating, dist, density, a.cfg.Weights)

		cpsValues[i] = cps
		reports[i] = model.BusinessReport{
			Business:      b,
			DistanceKM:    dist,
			MarketDensity: density,
			CPS:           cps,
		}
	}

	tpis, err := scoring.NormalizeTPI(cpsValues)
	if err != nil {
		return nil, nil, err
	}
	for i := range reports {
		reports[i].TPI = tpis[i]
	}
	log.Debug("pipeline: pressure scores computed")

	if a.detector != nil {
		verdicts := a.detector.DetectAll(ctx, businesses, a.cfg.Concurrency)
		for i := range reports {
			reports[i].Verdict = verdicts[i]
		}
	}

	a.joinPerformance(reports, perf, log)

	summary := summarize(reports)
	log.Info("pipeline: analysis complete",
		zap.Int("advertisers", summary.Advertisers),
		zap.Float64("mean_cps", summary.MeanCPS),
	)
	return reports, summary, nil
}

// joinPerformance attaches an MDS to every report whose district has
// campaign metrics. Businesses without a matching district keep a nil MDS.
func (a *Analyzer) joinPerformance(reports []model.BusinessReport, perf []model.DistrictPerformance, log *zap.Logger) {
	if len(perf) == 0 {
		return
	}

	avgCVR, avgCPA, err := scoring.CohortAverages(perf)
	if err != nil {
		return
	}

	byDistrict := make(map[string]model.DistrictPerformance, len(perf))
	for _, p := range perf {
		byDistrict[strings.ToLower(strings.TrimSpace(p.District))] = p
	}

	joined := 0
	for i := range reports {
		key := strings.ToLower(strings.TrimSpace(reports[i].Business.District))
		p, ok := byDistrict[key]
		if key == "" || !ok {
			continue
		}
		mds := scoring.MarketDominance(reports[i].TPI, p.CVR, p.CPA, avgCVR, avgCPA)
		reports[i].MDS = &mds
		joined++
	}
	log.Debug("pipeline: performance joined", zap.Int("matched", joined), zap.Int("districts", len(perf)))
}

func summarize(reports []model.BusinessReport) *model.RunSummary {
	s := &model.RunSummary{
		Businesses:   len(reports),
		ByConfidence: make(map[model.Confidence]int),
	}

	var scoreSum, cpsSum float64
	for _, r := range reports {
		if r.Verdict.HasSignal {
			s.Advertisers++
		}
		if r.Verdict.Confidence != "" {
			s.ByConfidence[r.Verdict.Confidence]++
		}
		scoreSum += float64(r.Verdict.Score)
		cpsSum += r.CPS
	}

	n := float64(len(reports))
	s.MeanScore = scoreSum / n
	s.MeanCPS = cpsSum / n
	return s
}
