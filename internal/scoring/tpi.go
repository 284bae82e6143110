package scoring

import (
	"math"

	"github.com/rotisserie/eris"
)

// ErrEmptyCohort is returned by cohort-level computations given a
// zero-length cohort. No meaningful normalization exists for an empty set,
// so this surfaces to the caller instead of defaulting silently.
var ErrEmptyCohort = eris.New("scoring: empty cohort")

// NormalizeTPI rescales a cohort of CPS values into Targeting Priority
// Indices in [1,100], rounded to two decimal places.
//
// TPI is relative to the cohort: recomputing with different membership
// changes every value, so callers must not cache results across cohort
// changes. When every CPS is equal (including a single-element cohort) all
// indices collapse to exactly 50 via an explicit branch, never a division by
// a near-zero spread.
func NormalizeTPI(cps []float64) ([]float64, error) {
	if len(cps) == 0 {
		return nil, ErrEmptyCohort
	}

	minCPS, maxCPS := cps[0], cps[0]
	for _, v := range cps[1:] {
		if v < minCPS {
			minCPS = v
		}
		if v > maxCPS {
			maxCPS = v
		}
	}

	out := make([]float64, len(cps))
	if maxCPS == minCPS {
		for i := range out {
			out[i] = 50.0
		}
		return out, nil
	}

	spread := maxCPS - minCPS
	for i, v := range cps {
		tpi := 1 + (v-minCPS)/spread*99
		out[i] = round2(tpi)
	}
	return out, nil
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
