// Package model defines the data records exchanged between the detection,
// scoring, and persistence layers.
package model

import "strings"

// Business is an immutable snapshot of one candidate business for an
// analysis run. Rating is expected in [0,5] and ReviewCount >= 0; missing
// values default to 0 upstream.
type Business struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	Website     string  `json:"website,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	District    string  `json:"district,omitempty"`
}

// Evidence is the payload one extractor consumes for one business. It is
// either a text blob (page content, search results) or a numeric pair
// (rating + review count). A failed fetch is recorded in FetchErr as an
// explicit marker, never conflated with an empty page.
type Evidence struct {
	Text        string
	Rating      float64
	ReviewCount int
	HasMetrics  bool
	FetchErr    string
}

// Empty reports whether the evidence carries neither text nor metrics.
func (e Evidence) Empty() bool {
	return !e.HasMetrics && strings.TrimSpace(e.Text) == ""
}

// SignalResult is the outcome of one extractor applied to one Evidence.
// Reason is a diagnostic for audit trails; it never feeds scoring math.
type SignalResult struct {
	Positive bool   `json:"positive"`
	Reason   string `json:"reason"`
}
