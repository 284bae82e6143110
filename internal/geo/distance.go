// Package geo provides the great-circle distance and local-density
// primitives used by the scoring engine and map radius filtering.
package geo

import (
	"math"

	"github.com/sells-group/market-intel/internal/model"
)

// earthRadiusKM is the mean Earth radius used by the haversine formula.
const earthRadiusKM = 6371.0

// DefaultDensityRadiusKM is the radius used when counting same-cohort
// neighbors for market density.
const DefaultDensityRadiusKM = 2.0

// DistanceKM returns the great-circle distance in kilometers between two
// coordinates using the haversine formula.
//
// Precondition: coordinates are valid latitude/longitude values; out-of-range
// inputs are not validated here.
func DistanceKM(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlon1 := lon1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	rlon2 := lon2 * math.Pi / 180

	dlat := rlat2 - rlat1
	dlon := rlon2 - rlon1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return earthRadiusKM * c
}

// MarketDensity counts cohort businesses within radiusKM of b, including b
// itself when it is a member of the cohort (its self-distance is zero). The
// including-self convention is fixed; density is therefore >= 1 for any
// business counted against its own cohort.
func MarketDensity(b model.Business, cohort []model.Business, radiusKM float64) int {
	n := 0
	for _, other := range cohort {
		if DistanceKM(b.Latitude, b.Longitude, other.Latitude, other.Longitude) <= radiusKM {
			n++
		}
	}
	return n
}

// WithinRadius returns the cohort members within radiusKM of the center.
func WithinRadius(centerLat, centerLon float64, cohort []model.Business, radiusKM float64) []model.Business {
	var out []model.Business
	for _, b := range cohort {
		if DistanceKM(centerLat, centerLon, b.Latitude, b.Longitude) <= radiusKM {
			out = append(out, b)
		}
	}
	return out
}
