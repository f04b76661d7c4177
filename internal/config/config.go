// Package config loads service settings from environment variables, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/paulmach/orb"

	"github.com/kellerweis/poi-atlas/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	OverpassURL     string
	OverpassTimeout time.Duration
	QueryTimeoutS   int
	FetchRetries    int
	FetchBackoff    time.Duration

	Region orb.Bound

	DataDir   string
	OutputDir string

	QueryKind string // "winery" or "supermarket"
	Brand     string // supermarket brand filter, empty matches all known chains

	LogLevel  string
	LogFormat string

	MetricsAddr string // empty disables the metrics server
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is merged in first, without
// overriding variables already set.
func Load() (*Config, error) {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	overpassTimeout, err := parseDuration("OVERPASS_TIMEOUT", "90s")
	if err != nil {
		return nil, err
	}
	fetchBackoff, err := parseDuration("FETCH_BACKOFF", "2s")
	if err != nil {
		return nil, err
	}
	queryTimeoutS, err := parseInt("QUERY_TIMEOUT_S", 60)
	if err != nil {
		return nil, err
	}
	fetchRetries, err := parseInt("FETCH_RETRIES", 3)
	if err != nil {
		return nil, err
	}

	region, err := parseRegion()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		OverpassURL:     envOrDefault("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		OverpassTimeout: overpassTimeout,
		QueryTimeoutS:   queryTimeoutS,
		FetchRetries:    fetchRetries,
		FetchBackoff:    fetchBackoff,
		Region:          region,
		DataDir:         envOrDefault("DATA_DIR", "data"),
		OutputDir:       envOrDefault("OUTPUT_DIR", "output"),
		QueryKind:       envOrDefault("QUERY_KIND", "winery"),
		Brand:           os.Getenv("BRAND"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		MetricsAddr:     os.Getenv("METRICS_ADDR"),
	}

	if cfg.OverpassURL == "" {
		return nil, errors.New("OVERPASS_URL is required")
	}
	if cfg.QueryKind != "winery" && cfg.QueryKind != "supermarket" {
		return nil, fmt.Errorf("QUERY_KIND must be winery or supermarket, got %q", cfg.QueryKind)
	}
	if cfg.FetchRetries < 1 {
		return nil, errors.New("FETCH_RETRIES must be at least 1")
	}
	if cfg.QueryTimeoutS < 1 {
		return nil, errors.New("QUERY_TIMEOUT_S must be at least 1")
	}

	return cfg, nil
}

// parseRegion reads the bounding box overrides, falling back to the default
// coverage area. All four variables must be set together.
func parseRegion() (orb.Bound, error) {
	keys := []string{"REGION_MIN_LAT", "REGION_MIN_LON", "REGION_MAX_LAT", "REGION_MAX_LON"}
	vals := make([]float64, len(keys))

	set := 0
	for i, k := range keys {
		s := os.Getenv(k)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("invalid %s: %w", k, err)
		}
		vals[i] = v
		set++
	}

	switch set {
	case 0:
		return domain.DefaultRegion(), nil
	case len(keys):
		b := orb.Bound{
			Min: orb.Point{vals[1], vals[0]},
			Max: orb.Point{vals[3], vals[2]},
		}
		if vals[0] >= vals[2] || vals[1] >= vals[3] {
			return orb.Bound{}, errors.New("region bounds are inverted or empty")
		}
		return b, nil
	default:
		return orb.Bound{}, errors.New("REGION_MIN_LAT, REGION_MIN_LON, REGION_MAX_LAT and REGION_MAX_LON must be set together")
	}
}

func parseDuration(key, def string) (time.Duration, error) {
	s := envOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
