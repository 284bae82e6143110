package model

// Confidence is the tiered confidence of a detection verdict.
type Confidence string

const (
	ConfidenceLow      Confidence = "low"
	ConfidenceMedium   Confidence = "medium"
	ConfidenceHigh     Confidence = "high"
	ConfidenceVeryHigh Confidence = "very_high"
)

// DetectionVerdict aggregates the ordered extractor results for one business.
//
// Invariants: Score equals the number of positive signals; HasSignal is true
// iff Score >= 1; Confidence is a step function of Score relative to the
// number of signals.
type DetectionVerdict struct {
	Signals    []SignalResult `json:"signals"`
	Score      int            `json:"score"`
	Confidence Confidence     `json:"confidence"`
	HasSignal  bool           `json:"has_signal"`
}
