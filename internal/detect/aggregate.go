// Package detect combines independent signal-extractor results into a single
// ad-detection verdict per business.
package detect

import "github.com/sells-group/market-intel/internal/model"

// Aggregate folds an ordered list of signal results into a DetectionVerdict.
//
// The policy is OR-of-evidence: one positive signal is enough to flag the
// business, while confidence scales with corroboration. An empty signal list
// (no extractors ran) yields score 0, confidence low, no signal.
func Aggregate(signals []model.SignalResult) model.DetectionVerdict {
	score := 0
	for _, s := range signals {
		if s.Positive {
			score++
		}
	}

	return model.DetectionVerdict{
		Signals:    signals,
		Score:      score,
		Confidence: confidenceFor(score, len(signals)),
		HasSignal:  score >= 1,
	}
}

// confidenceFor maps the positive-signal ratio to a confidence tier.
// n == 0 short-circuits to low so the ratio is never computed on an empty
// extractor set.
func confidenceFor(score, n int) model.Confidence {
	if n == 0 {
		return model.ConfidenceLow
	}
	ratio := float64(score) / float64(n)
	switch {
	case ratio >= 0.75:
		return model.ConfidenceVeryHigh
	case ratio >= 0.5:
		return model.ConfidenceHigh
	case ratio >= 0.25:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}
