package scoring

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/market-intel/internal/model"
)

func TestMarketDominance(t *testing.T) {
	tests := []struct {
		name      string
		tpi       float64
		actualCVR float64
		actualCPA float64
		avgCVR    float64
		avgCPA    float64
		want      float64
	}{
		// 32 + min(2.0,2.0)*15 + min(2.0,2.0)*15 = 92.
		{"strong performer both ratios capped", 80, 10, 20, 5, 40, 92},
		// Neutral ratios: 40*0.5 + 15 + 15 = 50.
		{"average performer", 50, 5, 40, 5, 40, 50},
		// Ratios above 2x are capped.
		{"extreme outlier capped", 100, 100, 1, 5, 40, 100},
		{"weak performer", 20, 2.5, 80, 5, 40, 8 + 7.5 + 7.5},
		{"zero tpi neutral ratios", 0, 5, 40, 5, 40, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MarketDominance(tt.tpi, tt.actualCVR, tt.actualCPA, tt.avgCVR, tt.avgCPA)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestMarketDominanceZeroDenominators(t *testing.T) {
	// avg_cvr=0 and actual_cpa=0 both fall back to the neutral ratio 1.0,
	// so MDS = tpi_component + 15 + 15 without any division error.
	got := MarketDominance(80, 10, 0, 0, 40)
	assert.InDelta(t, 32+15+15, got, 0.001)

	got = MarketDominance(0, 0, 0, 0, 0)
	assert.InDelta(t, 30, got, 0.001)
}

func TestMarketDominanceBounds(t *testing.T) {
	inputs := [][5]float64{
		{0, 0, 0, 0, 0},
		{100, 1000, 0.01, 0.1, 1000},
		{50, 3, 25, 6, 20},
		{100, 10, 20, 5, 40},
	}
	for _, in := range inputs {
		got := MarketDominance(in[0], in[1], in[2], in[3], in[4])
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 100.0)
	}
}

func TestMarketDominanceCPAInverted(t *testing.T) {
	// Cheaper acquisition than the cohort average must score higher.
	cheap := MarketDominance(50, 5, 20, 5, 40)
	expensive := MarketDominance(50, 5, 80, 5, 40)
	assert.Greater(t, cheap, expensive)
}

func TestCohortAverages(t *testing.T) {
	perf := []model.DistrictPerformance{
		{District: "Kadikoy", CVR: 4.0, CPA: 30},
		{District: "Besiktas", CVR: 6.0, CPA: 50},
		{District: "Sisli", CVR: 5.0, CPA: 40},
	}

	avgCVR, avgCPA, err := CohortAverages(perf)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, avgCVR, 0.001)
	assert.InDelta(t, 40.0, avgCPA, 0.001)
}

func TestCohortAveragesEmpty(t *testing.T) {
	_, _, err := CohortAverages(nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrEmptyCohort))
}
