package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kellerweis/poi-atlas/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OVERPASS_URL", "OVERPASS_TIMEOUT", "QUERY_TIMEOUT_S",
		"FETCH_RETRIES", "FETCH_BACKOFF",
		"REGION_MIN_LAT", "REGION_MIN_LON", "REGION_MAX_LAT", "REGION_MAX_LON",
		"DATA_DIR", "OUTPUT_DIR", "QUERY_KIND", "BRAND",
		"LOG_LEVEL", "LOG_FORMAT", "METRICS_ADDR",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://overpass-api.de/api/interpreter", cfg.OverpassURL)
	assert.Equal(t, 90*time.Second, cfg.OverpassTimeout)
	assert.Equal(t, 60, cfg.QueryTimeoutS)
	assert.Equal(t, 3, cfg.FetchRetries)
	assert.Equal(t, 2*time.Second, cfg.FetchBackoff)
	assert.Equal(t, domain.DefaultRegion(), cfg.Region)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "winery", cfg.QueryKind)
	assert.Empty(t, cfg.Brand)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OVERPASS_URL", "http://localhost:12345/api/interpreter")
	t.Setenv("QUERY_KIND", "supermarket")
	t.Setenv("BRAND", "REWE")
	t.Setenv("FETCH_RETRIES", "5")
	t.Setenv("FETCH_BACKOFF", "500ms")
	t.Setenv("METRICS_ADDR", ":9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:12345/api/interpreter", cfg.OverpassURL)
	assert.Equal(t, "supermarket", cfg.QueryKind)
	assert.Equal(t, "REWE", cfg.Brand)
	assert.Equal(t, 5, cfg.FetchRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.FetchBackoff)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
}

func TestLoadRegion(t *testing.T) {
	t.Run("all four bounds override the default", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("REGION_MIN_LAT", "52.4")
		t.Setenv("REGION_MIN_LON", "13.2")
		t.Setenv("REGION_MAX_LAT", "52.6")
		t.Setenv("REGION_MAX_LON", "13.5")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 52.4, cfg.Region.Min.Lat())
		assert.Equal(t, 13.2, cfg.Region.Min.Lon())
		assert.Equal(t, 52.6, cfg.Region.Max.Lat())
		assert.Equal(t, 13.5, cfg.Region.Max.Lon())
	})

	t.Run("partial bounds are rejected", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("REGION_MIN_LAT", "52.4")

		_, err := Load()
		assert.ErrorContains(t, err, "must be set together")
	})

	t.Run("inverted bounds are rejected", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("REGION_MIN_LAT", "52.6")
		t.Setenv("REGION_MIN_LON", "13.2")
		t.Setenv("REGION_MAX_LAT", "52.4")
		t.Setenv("REGION_MAX_LON", "13.5")

		_, err := Load()
		assert.ErrorContains(t, err, "inverted")
	})

	t.Run("garbage coordinate is rejected", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("REGION_MIN_LAT", "north-ish")

		_, err := Load()
		assert.ErrorContains(t, err, "REGION_MIN_LAT")
	})
}

func TestLoadValidation(t *testing.T) {
	t.Run("unknown query kind", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("QUERY_KIND", "bakery")

		_, err := Load()
		assert.ErrorContains(t, err, "QUERY_KIND")
	})

	t.Run("zero retries", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FETCH_RETRIES", "0")

		_, err := Load()
		assert.ErrorContains(t, err, "FETCH_RETRIES")
	})

	t.Run("bad timeout", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OVERPASS_TIMEOUT", "soon")

		_, err := Load()
		assert.ErrorContains(t, err, "OVERPASS_TIMEOUT")
	})

	t.Run("negative backoff", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("FETCH_BACKOFF", "-1s")

		_, err := Load()
		assert.ErrorContains(t, err, "FETCH_BACKOFF")
	})
}
