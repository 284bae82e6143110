package main

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/market-intel/internal/detect"
	"github.com/sells-group/market-intel/internal/fetcher"
	"github.com/sells-group/market-intel/internal/model"
	"github.com/sells-group/market-intel/internal/pipeline"
	"github.com/sells-group/market-intel/internal/scoring"
	"github.com/sells-group/market-intel/internal/signal"
	"github.com/sells-group/market-intel/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "market-intel.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func newPageFetcher() *fetcher.PageFetcher {
	return fetcher.NewPageFetcher(fetcher.PageOptions{
		UserAgent:         cfg.Fetch.UserAgent,
		Timeout:           time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries:        cfg.Fetch.MaxRetries,
		RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
	})
}

// buildDetector assembles the probe chain from config: reputation metrics,
// website fingerprints, and optionally the SERP sponsored-marker check.
func buildDetector() *detect.Detector {
	pf := newPageFetcher()

	probes := []detect.Probe{
		detect.MetricsProbe(signal.NewReputationExtractor(nil)),
		detect.WebsiteProbe(pf, signal.NewKeywordExtractor("website_ads", cfg.Detector.WebsiteIndicators)),
	}
	if cfg.Detector.SearchProbe {
		probes = append(probes, detect.SearchProbe(
			pf,
			signal.NewKeywordExtractor("search_sponsored", cfg.Detector.SearchMarkers),
			cfg.Detector.SearchBaseURL,
		))
	}
	return detect.NewDetector(probes...)
}

func pressureWeights() scoring.PressureWeights {
	w := cfg.Scoring.Weights
	return scoring.PressureWeights{
		Review:            w.Review,
		Rating:            w.Rating,
		Distance:          w.Distance,
		Density:           w.Density,
		ReviewCap:         w.ReviewCap,
		DistanceHorizonKM: w.DistanceHorizonKM,
		DensityCap:        w.DensityCap,
	}
}

func buildAnalyzer(detector *detect.Detector) *pipeline.Analyzer {
	return pipeline.NewAnalyzer(detector, pipeline.Config{
		CenterLat:       cfg.Places.CenterLat,
		CenterLng:       cfg.Places.CenterLng,
		DensityRadiusKM: cfg.Scoring.DensityRadiusKM,
		Weights:         pressureWeights(),
		Concurrency:     cfg.Batch.MaxConcurrentBusinesses,
	})
}

func loadBusinessesCSV(ctx context.Context, path string) ([]model.Business, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close() //nolint:errcheck
	return fetcher.LoadBusinesses(ctx, f)
}

func loadPerformanceCSV(ctx context.Context, path string) ([]model.DistrictPerformance, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close() //nolint:errcheck
	return fetcher.LoadDistrictPerformance(ctx, f)
}
