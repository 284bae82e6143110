package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/market-intel/internal/detect"
	"github.com/sells-group/market-intel/internal/model"
	"github.com/sells-group/market-intel/internal/scoring"
	"github.com/sells-group/market-intel/internal/signal"
)

// Istanbul city center, used as the distance anchor in tests.
const (
	centerLat = 41.015137
	centerLng = 28.978359
)

func testConfig() Config {
	return Config{
		CenterLat:   centerLat,
		CenterLng:   centerLng,
		Weights:     scoring.DefaultPressureWeights(),
		Concurrency: 2,
	}
}

func testCohort() []model.Business {
	return []model.Business{
		{ID: "b1", Name: "Gumus Antik", Latitude: centerLat, Longitude: centerLng,
			Rating: 4.6, ReviewCount: 320, District: "Kadıköy"},
		{ID: "b2", Name: "Eski Eser", Latitude: 41.04, Longitude: 29.00,
			Rating: 3.9, ReviewCount: 45, District: "Beşiktaş"},
		{ID: "b3", Name: "Sahaf Dukkani", Latitude: 41.10, Longitude: 29.05,
			Rating: 3.1, ReviewCount: 12, District: "Sarıyer"},
	}
}

func testPerformance() []model.DistrictPerformance {
	return []model.DistrictPerformance{
		{District: "Kadıköy", CVR: 6.0, CPA: 30},
		{District: "Beşiktaş", CVR: 4.0, CPA: 50},
	}
}

func metricsDetector() *detect.Detector {
	return detect.NewDetector(
		detect.MetricsProbe(signal.NewReputationExtractor(nil)),
	)
}

func TestAnalyzerAnalyze(t *testing.T) {
	a := NewAnalyzer(metricsDetector(), testConfig())

	reports, summary, err := a.Analyze(context.Background(), testCohort(), testPerformance())
	require.NoError(t, err)
	require.Len(t, reports, 3)

	// The central, highly reviewed business dominates the cohort.
	assert.InDelta(t, 0.0, reports[0].DistanceKM, 0.01)
	assert.Greater(t, reports[0].CPS, reports[1].CPS)
	assert.Greater(t, reports[1].CPS, reports[2].CPS)
	assert.InDelta(t, 100.0, reports[0].TPI, 0.001)
	assert.InDelta(t, 1.0, reports[2].TPI, 0.001)

	// Density counts the business itself.
	for _, r := range reports {
		assert.GreaterOrEqual(t, r.MarketDensity, 1)
	}

	// Reputation tiers: b1 high, b2 medium, b3 low. All are positive signals.
	for _, r := range reports {
		assert.True(t, r.Verdict.HasSignal)
		assert.Equal(t, 1, r.Verdict.Score)
	}

	// MDS only where district performance exists.
	require.NotNil(t, reports[0].MDS)
	require.NotNil(t, reports[1].MDS)
	assert.Nil(t, reports[2].MDS, "Sarıyer has no campaign data")
	assert.Greater(t, *reports[0].MDS, *reports[1].MDS,
		"better CVR and cheaper CPA must dominate")

	require.NotNil(t, summary)
	assert.Equal(t, 3, summary.Businesses)
	assert.Equal(t, 3, summary.Advertisers)
	assert.InDelta(t, 1.0, summary.MeanScore, 0.001)
	assert.Greater(t, summary.MeanCPS, 0.0)
}

func TestAnalyzeEmptyCohort(t *testing.T) {
	a := NewAnalyzer(metricsDetector(), testConfig())

	_, _, err := a.Analyze(context.Background(), nil, nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, scoring.ErrEmptyCohort))
}

func TestAnalyzeWithoutDetector(t *testing.T) {
	a := NewAnalyzer(nil, testConfig())

	reports, summary, err := a.Analyze(context.Background(), testCohort(), nil)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	for _, r := range reports {
		assert.False(t, r.Verdict.HasSignal)
		assert.Empty(t, r.Verdict.Signals)
		assert.Nil(t, r.MDS)
	}
	assert.Equal(t, 0, summary.Advertisers)
	assert.Empty(t, summary.ByConfidence)
}

func TestAnalyzeWithoutPerformanceData(t *testing.T) {
	a := NewAnalyzer(metricsDetector(), testConfig())

	reports, _, err := a.Analyze(context.Background(), testCohort(), nil)
	require.NoError(t, err)
	for _, r := range reports {
		assert.Nil(t, r.MDS)
	}
}

func TestAnalyzeDistrictJoinIsCaseInsensitive(t *testing.T) {
	a := NewAnalyzer(nil, testConfig())

	perf := []model.DistrictPerformance{{District: "  kadıköy ", CVR: 5, CPA: 40}}
	reports, _, err := a.Analyze(context.Background(), testCohort(), perf)
	require.NoError(t, err)
	assert.NotNil(t, reports[0].MDS)
	assert.Nil(t, reports[1].MDS)
}

func TestAnalyzeSingleBusinessCohort(t *testing.T) {
	a := NewAnalyzer(nil, testConfig())

	reports, summary, err := a.Analyze(context.Background(), testCohort()[:1], nil)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 50.0, reports[0].TPI, "degenerate cohort collapses to 50")
	assert.Equal(t, 1, reports[0].MarketDensity)
	assert.Equal(t, 1, summary.Businesses)
}

func TestAnalyzeInvalidWeights(t *testing.T) {
	cfg := testConfig()
	cfg.Weights.Density = 90

	a := NewAnalyzer(nil, cfg)
	_, _, err := a.Analyze(context.Background(), testCohort(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights should sum to 100")
}
