package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/kellerweis/poi-atlas/internal/domain"
)

// maxLagYears bounds the cross-correlation window in both directions.
const maxLagYears = 2

// TemporalReport relates the timing of estimated winery growth to estimated
// real-estate appreciation via lagged cross-correlation.
type TemporalReport struct {
	Filename string
}

// NewTemporalReport creates the temporal analysis generator.
func NewTemporalReport() *TemporalReport {
	return &TemporalReport{Filename: "temporal.md"}
}

func (t *TemporalReport) Name() string { return "temporal" }

type lagResult struct {
	district string
	bestLag  int
	bestR    float64
	byLag    map[int]float64
}

// Generate writes the temporal document. Districts without an annual market
// pattern or without winery records are skipped.
func (t *TemporalReport) Generate(records []domain.PointOfInterest, outputDir string) error {
	growth := estimateDistrictGrowth(records)

	var b strings.Builder
	b.WriteString("# Timing of winery growth vs. real-estate appreciation\n\n")
	b.WriteString(estimateDisclaimer)
	fmt.Fprintf(&b, "Cross-correlation of year-over-year rates at lags -%d to +%d.\n", maxLagYears, maxLagYears)
	b.WriteString("A negative lag means winery growth leads price growth.\n\n")

	var results []lagResult
	for _, dg := range growth {
		marketSeries, ok := domain.EstimateMarketSeries(dg.district.Name)
		if !ok {
			continue
		}
		res, ok := crossCorrelate(dg.district.Name, dg.series.YoYRates(), marketSeries.YoYRates())
		if !ok {
			continue
		}
		results = append(results, res)
	}

	b.WriteString("## Cross-correlation by district\n\n")
	b.WriteString("| District | Lag -2 | Lag -1 | Lag 0 | Lag +1 | Lag +2 | Best lag | Best r |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, res := range results {
		fmt.Fprintf(&b, "| %s ", res.district)
		for lag := -maxLagYears; lag <= maxLagYears; lag++ {
			if r, ok := res.byLag[lag]; ok {
				fmt.Fprintf(&b, "| %.2f ", r)
			} else {
				b.WriteString("| - ")
			}
		}
		fmt.Fprintf(&b, "| %+d | %.2f |\n", res.bestLag, res.bestR)
	}
	b.WriteString("\n")

	writeLeadSummary(&b, results)

	return writeArtifact(outputDir, t.Filename, []byte(b.String()))
}

// crossCorrelate computes Pearson r between the two rate series at each lag.
// Positive lag shifts the market series forward, so winery rates are paired
// with later market rates.
func crossCorrelate(district string, winery, market []float64) (lagResult, bool) {
	res := lagResult{district: district, byLag: map[int]float64{}}
	found := false

	for lag := -maxLagYears; lag <= maxLagYears; lag++ {
		x, y := alignAtLag(winery, market, lag)
		if len(x) < minSamples {
			continue
		}
		r, err := stats.Pearson(x, y)
		if err != nil || math.IsNaN(r) {
			continue
		}
		res.byLag[lag] = r
		if !found || math.Abs(r) > math.Abs(res.bestR) {
			res.bestLag, res.bestR = lag, r
			found = true
		}
	}
	return res, found
}

// alignAtLag pairs x[i] with y[i+lag], truncating to the overlap.
func alignAtLag(x, y []float64, lag int) ([]float64, []float64) {
	var ax, ay []float64
	for i := range x {
		j := i + lag
		if j < 0 || j >= len(y) {
			continue
		}
		ax = append(ax, x[i])
		ay = append(ay, y[j])
	}
	return ax, ay
}

func writeLeadSummary(b *strings.Builder, results []lagResult) {
	b.WriteString("## Lead-time summary\n\n")
	if len(results) == 0 {
		b.WriteString("No district has both winery records and an annual market pattern.\n")
		return
	}

	leading, lagging, coincident := 0, 0, 0
	sumLag := 0
	for _, res := range results {
		sumLag += res.bestLag
		switch {
		case res.bestLag < 0:
			leading++
		case res.bestLag > 0:
			lagging++
		default:
			coincident++
		}
	}

	fmt.Fprintf(b, "- Districts where winery growth leads prices: %d\n", leading)
	fmt.Fprintf(b, "- Districts where winery growth lags prices: %d\n", lagging)
	fmt.Fprintf(b, "- Districts with coincident peaks: %d\n", coincident)
	fmt.Fprintf(b, "- Mean best lag: %+.1f years\n\n", float64(sumLag)/float64(len(results)))
}
