// Package scoring implements the composite market-intelligence indices:
// the Competitive Pressure Score (CPS), the cohort-relative Targeting
// Priority Index (TPI), and the Market Dominance Score (MDS).
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// PressureWeights is the immutable configuration for the CPS formula.
// Component weights must sum to 100 so the score stays in [0,100].
type PressureWeights struct {
	Review   float64 `yaml:"review" mapstructure:"review"`
	Rating   float64 `yaml:"rating" mapstructure:"rating"`
	Distance float64 `yaml:"distance" mapstructure:"distance"`
	Density  float64 `yaml:"density" mapstructure:"density"`

	// ReviewCap is the review count at which the review factor saturates.
	ReviewCap int `yaml:"review_cap" mapstructure:"review_cap"`
	// DistanceHorizonKM is the distance at which the proximity factor
	// decays to zero.
	DistanceHorizonKM float64 `yaml:"distance_horizon_km" mapstructure:"distance_horizon_km"`
	// DensityCap is the neighbor count at which the density factor saturates.
	DensityCap int `yaml:"density_cap" mapstructure:"density_cap"`
}

// DefaultPressureWeights returns the standard CPS weighting: reviews 30,
// rating 25, proximity 25, density 20.
func DefaultPressureWeights() PressureWeights {
	return PressureWeights{
		Review:            30,
		Rating:            25,
		Distance:          25,
		Density:           20,
		ReviewCap:         500,
		DistanceHorizonKM: 15,
		DensityCap:        20,
	}
}

// Validate checks that the weights are internally consistent.
func (w PressureWeights) Validate() error {
	var errs []string

	for name, v := range map[string]float64{
		"review": w.Review, "rating": w.Rating, "distance": w.Distance, "density": w.Density,
	} {
		if v < 0 {
			errs = append(errs, fmt.Sprintf("%s weight must be >= 0", name))
		}
	}

	sum := w.Review + w.Rating + w.Distance + w.Density
	if math.Abs(sum-100) > 1 {
		errs = append(errs, fmt.Sprintf("weights should sum to 100, got %.1f", sum))
	}

	if w.ReviewCap <= 0 {
		errs = append(errs, "review_cap must be > 0")
	}
	if w.DistanceHorizonKM <= 0 {
		errs = append(errs, "distance_horizon_km must be > 0")
	}
	if w.DensityCap <= 0 {
		errs = append(errs, "density_cap must be > 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("scoring: pressure weights validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// CompetitivePressure computes the CPS for one business.
//
// Preconditions: reviewCount >= 0, distanceKM >= 0, marketDensity >= 0, and
// rating <= 5. Rating is deliberately not clamped; a rating above 5 pushes
// the rating factor past its weight. Within the documented ranges the result
// is in [0,100] and non-decreasing in reviews, rating, proximity (lower
// distance), and density.
func CompetitivePressure(reviewCount int, rating, distanceKM float64, marketDensity int, w PressureWeights) float64 {
	reviewFactor := math.Min(float64(reviewCount)/float64(w.ReviewCap), 1.0) * w.Review
	ratingFactor := (rating / 5.0) * w.Rating
	distanceFactor := math.Max(0, (w.DistanceHorizonKM-distanceKM)/w.DistanceHorizonKM) * w.Distance
	densityFactor := math.Min(float64(marketDensity)/float64(w.DensityCap), 1.0) * w.Density

	return math.Min(reviewFactor+ratingFactor+distanceFactor+densityFactor, 100)
}
