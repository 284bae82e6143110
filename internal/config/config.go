// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Places   PlacesConfig   `yaml:"places" mapstructure:"places"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Detector DetectorConfig `yaml:"detector" mapstructure:"detector"`
	Scoring  ScoringConfig  `yaml:"scoring" mapstructure:"scoring"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// PlacesConfig holds Google Places API settings.
type PlacesConfig struct {
	Key          string  `yaml:"key" mapstructure:"key"`
	Language     string  `yaml:"language" mapstructure:"language"`
	RadiusMeters int     `yaml:"radius_meters" mapstructure:"radius_meters"`
	CenterLat    float64 `yaml:"center_lat" mapstructure:"center_lat"`
	CenterLng    float64 `yaml:"center_lng" mapstructure:"center_lng"`
}

// FetchConfig configures outbound page fetching.
type FetchConfig struct {
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries        int     `yaml:"max_retries" mapstructure:"max_retries"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// DetectorConfig configures the ad-detection signal extractors.
type DetectorConfig struct {
	// WebsiteIndicators are the ad-network fingerprints matched against
	// website page source.
	WebsiteIndicators []string `yaml:"website_indicators" mapstructure:"website_indicators"`
	// SearchMarkers are the sponsored-result markers matched against the
	// search results page.
	SearchMarkers []string `yaml:"search_markers" mapstructure:"search_markers"`
	SearchBaseURL string   `yaml:"search_base_url" mapstructure:"search_base_url"`
	// SearchProbe toggles the SERP check, which is the slowest and most
	// brittle of the three levels.
	SearchProbe bool `yaml:"search_probe" mapstructure:"search_probe"`
}

// ScoringConfig configures the composite score formulas.
type ScoringConfig struct {
	Weights         WeightsConfig `yaml:"weights" mapstructure:"weights"`
	DensityRadiusKM float64       `yaml:"density_radius_km" mapstructure:"density_radius_km"`
}

// WeightsConfig mirrors scoring.PressureWeights for file/env override.
type WeightsConfig struct {
	Review            float64 `yaml:"review" mapstructure:"review"`
	Rating            float64 `yaml:"rating" mapstructure:"rating"`
	Distance          float64 `yaml:"distance" mapstructure:"distance"`
	Density           float64 `yaml:"density" mapstructure:"density"`
	ReviewCap         int     `yaml:"review_cap" mapstructure:"review_cap"`
	DistanceHorizonKM float64 `yaml:"distance_horizon_km" mapstructure:"distance_horizon_km"`
	DensityCap        int     `yaml:"density_cap" mapstructure:"density_cap"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentBusinesses int `yaml:"max_concurrent_businesses" mapstructure:"max_concurrent_businesses"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// defaultWebsiteIndicators are the ad-network script fingerprints looked for
// in page source.
func defaultWebsiteIndicators() []string {
	return []string{
		"adsbygoogle",
		"google-ads",
		"googletagmanager",
		"gtag",
		"googleadservices",
		"doubleclick",
		"adsense",
		"adwords",
		"adsbygoogle.js",
		"googleads.g.doubleclick.net",
		"googlesyndication.com",
		"googleadservices.com",
	}
}

// defaultSearchMarkers are sponsored-result markers, including the Turkish
// variants the upstream exports carry.
func defaultSearchMarkers() []string {
	return []string{
		"sponsored",
		"advertisement",
		"reklam",
		"sponsorlu",
		"promoted",
		"sponsored result",
		"ad result",
	}
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MARKETINTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "market-intel.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("batch.max_concurrent_businesses", 5)
	v.SetDefault("places.language", "tr")
	v.SetDefault("places.radius_meters", 50000)
	v.SetDefault("places.center_lat", 41.015137)
	v.SetDefault("places.center_lng", 28.978359)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; market-intel/1.0)")
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.requests_per_second", 5)
	v.SetDefault("detector.website_indicators", defaultWebsiteIndicators())
	v.SetDefault("detector.search_markers", defaultSearchMarkers())
	v.SetDefault("detector.search_base_url", "https://www.google.com/search")
	v.SetDefault("detector.search_probe", false)
	v.SetDefault("scoring.weights.review", 30)
	v.SetDefault("scoring.weights.rating", 25)
	v.SetDefault("scoring.weights.distance", 25)
	v.SetDefault("scoring.weights.density", 20)
	v.SetDefault("scoring.weights.review_cap", 500)
	v.SetDefault("scoring.weights.distance_horizon_km", 15)
	v.SetDefault("scoring.weights.density_cap", 20)
	v.SetDefault("scoring.density_radius_km", 2)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
