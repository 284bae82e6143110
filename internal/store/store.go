// Package store persists analysis runs and their scored business reports.
package store

import (
	"context"

	"github.com/sells-group/market-intel/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status   model.RunStatus `json:"status,omitempty"`
	Sector   string          `json:"sector,omitempty"`
	Location string          `json:"location,omitempty"`
	Limit    int             `json:"limit,omitempty"`
	Offset   int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for analysis runs.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, sector, location string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, summary *model.RunSummary) error
	FailRun(ctx context.Context, runID string, cause string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Reports
	SaveReports(ctx context.Context, runID string, reports []model.BusinessReport) error
	ListReports(ctx context.Context, runID string) ([]model.BusinessReport, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
