package signal

import (
	"fmt"

	"github.com/sells-group/market-intel/internal/model"
)

// ReputationTier is one rung of the rating/review-count ladder. Tiers are
// evaluated in order; the first one satisfied wins.
type ReputationTier struct {
	MinRating  float64
	MinReviews int
	Label      string
}

// DefaultReputationTiers returns the standard ladder: an established profile
// with strong ratings correlates with paid acquisition spend.
func DefaultReputationTiers() []ReputationTier {
	return []ReputationTier{
		{MinRating: 4.0, MinReviews: 50, Label: "high"},
		{MinRating: 3.5, MinReviews: 20, Label: "medium"},
		{MinRating: 3.0, MinReviews: 10, Label: "low"},
	}
}

// ReputationExtractor applies ordered rating/review thresholds to the
// numeric pair carried in the evidence.
type ReputationExtractor struct {
	tiers []ReputationTier
}

// NewReputationExtractor creates a reputation extractor. Nil tiers fall back
// to the default ladder.
func NewReputationExtractor(tiers []ReputationTier) *ReputationExtractor {
	if tiers == nil {
		tiers = DefaultReputationTiers()
	}
	return &ReputationExtractor{tiers: tiers}
}

// Name returns the extractor name.
func (r *ReputationExtractor) Name() string { return "reputation" }

// Check walks the tier ladder top down and reports the first tier matched.
func (r *ReputationExtractor) Check(ev model.Evidence) model.SignalResult {
	if ev.FetchErr != "" {
		return model.SignalResult{Positive: false, Reason: "error:" + ev.FetchErr}
	}
	if !ev.HasMetrics {
		return model.SignalResult{Positive: false, Reason: ReasonNoData}
	}

	for _, tier := range r.tiers {
		if ev.Rating >= tier.MinRating && ev.ReviewCount >= tier.MinReviews {
			return model.SignalResult{
				Positive: true,
				Reason: fmt.Sprintf("%s reputation (rating %.1f+, reviews %d+)",
					tier.Label, tier.MinRating, tier.MinReviews),
			}
		}
	}
	return model.SignalResult{Positive: false, Reason: "low rating or few reviews"}
}
