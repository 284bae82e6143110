package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chTempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "market-intel.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 5, cfg.Batch.MaxConcurrentBusinesses)
	assert.Equal(t, "tr", cfg.Places.Language)
	assert.Equal(t, 50000, cfg.Places.RadiusMeters)
	assert.InDelta(t, 41.015137, cfg.Places.CenterLat, 0.000001)
	assert.Equal(t, 15, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, 3, cfg.Fetch.MaxRetries)
	assert.InDelta(t, 5.0, cfg.Fetch.RequestsPerSecond, 0.001)
	assert.Contains(t, cfg.Detector.WebsiteIndicators, "adsbygoogle")
	assert.Contains(t, cfg.Detector.WebsiteIndicators, "googlesyndication.com")
	assert.Contains(t, cfg.Detector.SearchMarkers, "sponsored")
	assert.Contains(t, cfg.Detector.SearchMarkers, "reklam")
	assert.False(t, cfg.Detector.SearchProbe)
	assert.InDelta(t, 30.0, cfg.Scoring.Weights.Review, 0.001)
	assert.InDelta(t, 25.0, cfg.Scoring.Weights.Rating, 0.001)
	assert.InDelta(t, 25.0, cfg.Scoring.Weights.Distance, 0.001)
	assert.InDelta(t, 20.0, cfg.Scoring.Weights.Density, 0.001)
	assert.Equal(t, 500, cfg.Scoring.Weights.ReviewCap)
	assert.InDelta(t, 15.0, cfg.Scoring.Weights.DistanceHorizonKM, 0.001)
	assert.Equal(t, 20, cfg.Scoring.Weights.DensityCap)
	assert.InDelta(t, 2.0, cfg.Scoring.DensityRadiusKM, 0.001)
}

func TestLoadFromYAML(t *testing.T) {
	chTempDir(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/intel
log:
  level: debug
  format: console
batch:
  max_concurrent_businesses: 10
scoring:
  density_radius_km: 3.5
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/intel", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 10, cfg.Batch.MaxConcurrentBusinesses)
	assert.InDelta(t, 3.5, cfg.Scoring.DensityRadiusKM, 0.001)
	// Defaults still apply for unset values
	assert.Equal(t, "tr", cfg.Places.Language)
	assert.Equal(t, 500, cfg.Scoring.Weights.ReviewCap)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chTempDir(t)

	t.Setenv("MARKETINTEL_STORE_DRIVER", "postgres")
	t.Setenv("MARKETINTEL_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
		assert.NotNil(t, zap.L())
	})

	t.Run("console", func(t *testing.T) {
		require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	})

	t.Run("bad level", func(t *testing.T) {
		err := InitLogger(LogConfig{Level: "shout", Format: "json"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse log level")
	})
}
