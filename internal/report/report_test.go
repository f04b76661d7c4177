package report

import (
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kellerweis/poi-atlas/internal/domain"
	"github.com/kellerweis/poi-atlas/internal/observability"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// spreadRecords distributes n records round-robin over the district table,
// placing each at its district center.
func spreadRecords(n int) []domain.PointOfInterest {
	districts := domain.Districts()
	records := make([]domain.PointOfInterest, 0, n)
	for i := 0; i < n; i++ {
		d := districts[i%len(districts)]
		records = append(records, domain.PointOfInterest{
			ID:            int64(1000 + i),
			ElementType:   "node",
			Name:          fmt.Sprintf("Venue %d", i),
			Lat:           d.Center.Lat(),
			Lon:           d.Center.Lon(),
			District:      d.Name,
			Postcode:      fmt.Sprintf("101%02d", i%20),
			Accessibility: domain.AccessibilityUnknown,
			Recency:       domain.RecencyEstablished,
		})
	}
	return records
}

func readArtifact(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestStatsReport(t *testing.T) {
	t.Run("district counts sum to the total", func(t *testing.T) {
		dir := t.TempDir()
		records := spreadRecords(173)

		require.NoError(t, NewStatsReport("Test Venues").Generate(records, dir))

		doc := readArtifact(t, dir, "statistics.md")
		assert.Contains(t, doc, "Total records: **173**")

		// Every district line carries its count; re-sum them.
		sum := 0
		for _, line := range strings.Split(doc, "\n") {
			for _, d := range domain.Districts() {
				if strings.HasPrefix(line, "| "+d.Name+" |") {
					var count int
					var share float64
					_, err := fmt.Sscanf(strings.ReplaceAll(line, "|", " "), " "+d.Name+" %d %f%%", &count, &share)
					require.NoError(t, err, "line %q", line)
					sum += count
				}
			}
		}
		assert.Equal(t, 173, sum)
	})

	t.Run("empty table renders a valid document", func(t *testing.T) {
		dir := t.TempDir()

		require.NoError(t, NewStatsReport("Test Venues").Generate(nil, dir))

		doc := readArtifact(t, dir, "statistics.md")
		assert.Contains(t, doc, "Total records: **0**")
	})
}

func TestGrowthReport(t *testing.T) {
	t.Run("labels output as estimated", func(t *testing.T) {
		dir := t.TempDir()

		require.NoError(t, NewGrowthReport().Generate(spreadRecords(60), dir))

		doc := readArtifact(t, dir, "growth.md")
		assert.Contains(t, doc, "Estimated data.")
		assert.Contains(t, doc, "CAGR ranking")
		for _, d := range domain.Districts() {
			assert.Contains(t, doc, d.Name)
		}
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		records := spreadRecords(40)
		a := estimateDistrictGrowth(records)
		b := estimateDistrictGrowth(records)

		require.Equal(t, len(a), len(b))
		for i := range a {
			assert.Equal(t, a[i].series.Values, b[i].series.Values)
		}
	})

	t.Run("empty table renders the disclaimer only", func(t *testing.T) {
		dir := t.TempDir()

		require.NoError(t, NewGrowthReport().Generate(nil, dir))

		doc := readArtifact(t, dir, "growth.md")
		assert.Contains(t, doc, "Estimated data.")
	})
}

func TestCorrelationReport(t *testing.T) {
	t.Run("reports correlations over the full table", func(t *testing.T) {
		dir := t.TempDir()

		require.NoError(t, NewCorrelationReport().Generate(spreadRecords(120), dir))

		doc := readArtifact(t, dir, "correlation.md")
		assert.Contains(t, doc, "Pearson r")
		assert.Contains(t, doc, "Gentrification pressure ranking")
		assert.NotContains(t, doc, "rejected: fewer than")
	})

	t.Run("too few districts is rejected, not computed", func(t *testing.T) {
		dir := t.TempDir()
		districts := domain.Districts()
		records := []domain.PointOfInterest{
			{ID: 1, District: districts[0].Name, Lat: districts[0].Center.Lat(), Lon: districts[0].Center.Lon()},
			{ID: 2, District: districts[1].Name, Lat: districts[1].Center.Lat(), Lon: districts[1].Center.Lon()},
		}

		require.NoError(t, NewCorrelationReport().Generate(records, dir))

		doc := readArtifact(t, dir, "correlation.md")
		assert.Contains(t, doc, "rejected: fewer than 3 samples")
	})
}

func TestPearsonPValue(t *testing.T) {
	t.Run("perfect correlation", func(t *testing.T) {
		assert.InDelta(t, 0, pearsonPValue(0.9999999, 10), 0.001)
	})

	t.Run("no correlation", func(t *testing.T) {
		assert.InDelta(t, 1, pearsonPValue(0, 10), 0.001)
	})

	t.Run("known value", func(t *testing.T) {
		// r=0.8, n=10: t=3.771, df=8, two-sided p≈0.0055
		assert.InDelta(t, 0.0055, pearsonPValue(0.8, 10), 0.0005)
	})

	t.Run("symmetric in sign", func(t *testing.T) {
		assert.InDelta(t, pearsonPValue(0.6, 12), pearsonPValue(-0.6, 12), 1e-9)
	})
}

func TestTemporalReport(t *testing.T) {
	t.Run("renders lag table and lead summary", func(t *testing.T) {
		dir := t.TempDir()

		require.NoError(t, NewTemporalReport().Generate(spreadRecords(80), dir))

		doc := readArtifact(t, dir, "temporal.md")
		assert.Contains(t, doc, "Cross-correlation by district")
		assert.Contains(t, doc, "Lead-time summary")
		assert.Contains(t, doc, "Neukölln")
	})

	t.Run("empty table degrades to a summary note", func(t *testing.T) {
		dir := t.TempDir()

		require.NoError(t, NewTemporalReport().Generate(nil, dir))

		doc := readArtifact(t, dir, "temporal.md")
		assert.Contains(t, doc, "No district has both winery records")
	})
}

func TestAlignAtLag(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{10, 20, 30, 40}

	t.Run("zero lag pairs everything", func(t *testing.T) {
		ax, ay := alignAtLag(x, y, 0)
		assert.Equal(t, x, ax)
		assert.Equal(t, y, ay)
	})

	t.Run("positive lag drops the tail", func(t *testing.T) {
		ax, ay := alignAtLag(x, y, 1)
		assert.Equal(t, []float64{1, 2, 3}, ax)
		assert.Equal(t, []float64{20, 30, 40}, ay)
	})

	t.Run("negative lag drops the head", func(t *testing.T) {
		ax, ay := alignAtLag(x, y, -2)
		assert.Equal(t, []float64{3, 4}, ax)
		assert.Equal(t, []float64{10, 20}, ay)
	})
}

func TestHeatmapReport(t *testing.T) {
	gen := NewHeatmapReport(domain.DefaultRegion(), domain.Landmarks())

	t.Run("produces a decodable image", func(t *testing.T) {
		dir := t.TempDir()

		require.NoError(t, gen.Generate(spreadRecords(50), dir))

		f, err := os.Open(filepath.Join(dir, "density.png"))
		require.NoError(t, err)
		defer f.Close()

		img, err := png.Decode(f)
		require.NoError(t, err)
		assert.Equal(t, heatmapBins*heatmapCellPx, img.Bounds().Dx())
		assert.Equal(t, heatmapBins*heatmapCellPx, img.Bounds().Dy())
	})

	t.Run("empty table still produces a valid image", func(t *testing.T) {
		dir := t.TempDir()

		require.NoError(t, gen.Generate(nil, dir))

		f, err := os.Open(filepath.Join(dir, "density.png"))
		require.NoError(t, err)
		defer f.Close()

		_, err = png.Decode(f)
		assert.NoError(t, err)
	})
}

func TestMapReport(t *testing.T) {
	gen := NewMapReport("Berlin Wineries", domain.DefaultRegion(), domain.Landmarks())

	t.Run("document embeds markers, heat layer, and landmarks", func(t *testing.T) {
		dir := t.TempDir()
		records := spreadRecords(10)
		records[0].Name = "Weinbar <Schöneberg>"

		require.NoError(t, gen.Generate(records, dir))

		doc := readArtifact(t, dir, "map.html")
		assert.Contains(t, doc, "L.markerClusterGroup()")
		assert.Contains(t, doc, "L.heatLayer(")
		assert.Contains(t, doc, "Brandenburg Gate")
		assert.Contains(t, doc, "markercluster")
		// HTML in venue names must arrive escaped.
		assert.NotContains(t, doc, "<Schöneberg>")
	})

	t.Run("deterministic output", func(t *testing.T) {
		dirA, dirB := t.TempDir(), t.TempDir()
		records := spreadRecords(25)

		require.NoError(t, gen.Generate(records, dirA))
		require.NoError(t, gen.Generate(records, dirB))

		assert.Equal(t, readArtifact(t, dirA, "map.html"), readArtifact(t, dirB, "map.html"))
	})

	t.Run("empty table renders a map with zero venues", func(t *testing.T) {
		dir := t.TempDir()

		require.NoError(t, gen.Generate(nil, dir))

		doc := readArtifact(t, dir, "map.html")
		assert.Contains(t, doc, "0 venues")
	})
}

type failingGenerator struct{}

func (failingGenerator) Name() string { return "boom" }
func (failingGenerator) Generate([]domain.PointOfInterest, string) error {
	return errors.New("render failed")
}

func TestReporterIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	reporter := NewReporter([]Generator{
		failingGenerator{},
		NewStatsReport("Test"),
	}, testLogger(), observability.NewMetricsForTesting())

	err := reporter.Run(spreadRecords(5), dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	// The stats report still ran.
	assert.FileExists(t, filepath.Join(dir, "statistics.md"))
}
