package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/market-intel/internal/model"
)

func TestFormatReports(t *testing.T) {
	mds := 71.3
	reports := []model.BusinessReport{
		{
			Business: model.Business{Name: "Gumus Antik", District: "Kadıköy"},
			Verdict:  model.DetectionVerdict{HasSignal: true, Confidence: model.ConfidenceHigh},
			CPS:      66.0, TPI: 81.5, MDS: &mds,
		},
		{
			Business: model.Business{Name: "Eski Eser", District: "Fatih"},
			Verdict:  model.DetectionVerdict{Confidence: model.ConfidenceLow},
			CPS:      12.0, TPI: 1.0,
		},
	}

	var buf bytes.Buffer
	formatReports(&buf, reports)
	out := buf.String()

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Gumus Antik")
	assert.Contains(t, out, "yes")
	assert.Contains(t, out, "71.3")
	assert.Contains(t, out, "Eski Eser")
}

func TestFormatSummary(t *testing.T) {
	s := &model.RunSummary{
		Businesses:  10,
		Advertisers: 4,
		ByConfidence: map[model.Confidence]int{
			model.ConfidenceHigh: 3,
			model.ConfidenceLow:  7,
		},
		MeanScore: 1.2,
		MeanCPS:   54.3,
	}

	var buf bytes.Buffer
	formatSummary(&buf, s)
	out := buf.String()

	assert.Contains(t, out, "Businesses: 10")
	assert.Contains(t, out, "Advertisers: 4")
	assert.Contains(t, out, "high: 3")
	assert.Contains(t, out, "low: 7")
}

func TestFormatRunsList(t *testing.T) {
	runs := []model.Run{
		{
			ID: "run-1", Sector: "antique shop", Location: "Istanbul",
			Status:    model.RunStatusCompleted,
			Summary:   &model.RunSummary{Businesses: 12, Advertisers: 5},
			CreatedAt: time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			ID: "run-2", Sector: "dentist", Location: "Ankara",
			Status:    model.RunStatusFailed,
			CreatedAt: time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)
	out := buf.String()

	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "antique shop")
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "2026-08-01 10:30")
}
