package model

import "time"

// DistrictPerformance holds observed campaign metrics for one district,
// typically parsed from a Google Ads geographic performance export.
// CVR is a percentage; CPA is in currency units.
type DistrictPerformance struct {
	District    string  `json:"district"`
	Cost        float64 `json:"cost"`
	Clicks      float64 `json:"clicks"`
	Impressions float64 `json:"impressions"`
	Conversions float64 `json:"conversions"`
	CVR         float64 `json:"cvr"`
	CPA         float64 `json:"cpa"`
}

// BusinessReport is the fully scored output for one business in a run.
// MDS is nil when the business's district has no performance data.
type BusinessReport struct {
	Business      Business         `json:"business"`
	Verdict       DetectionVerdict `json:"verdict"`
	DistanceKM    float64          `json:"distance_km"`
	MarketDensity int              `json:"market_density"`
	CPS           float64          `json:"cps"`
	TPI           float64          `json:"tpi"`
	MDS           *float64         `json:"mds,omitempty"`
}

// RunStatus is the lifecycle state of a stored analysis run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunSummary holds aggregate statistics for one completed run.
type RunSummary struct {
	Businesses   int                `json:"businesses"`
	Advertisers  int                `json:"advertisers"`
	ByConfidence map[Confidence]int `json:"by_confidence"`
	MeanScore    float64            `json:"mean_score"`
	MeanCPS      float64            `json:"mean_cps"`
}

// Run records one analysis run.
type Run struct {
	ID        string      `json:"id"`
	Sector    string      `json:"sector"`
	Location  string      `json:"location"`
	Status    RunStatus   `json:"status"`
	Error     string      `json:"error,omitempty"`
	Summary   *RunSummary `json:"summary,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
