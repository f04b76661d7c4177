package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/kellerweis/poi-atlas/internal/domain"
)

// minSamples is the smallest sample for which a correlation is reported.
// Smaller samples are rejected outright rather than reported with an
// unusable p-value.
const minSamples = 3

// CorrelationReport relates estimated winery growth to estimated
// real-estate appreciation across districts.
type CorrelationReport struct {
	Filename string
}

// NewCorrelationReport creates the correlation generator.
func NewCorrelationReport() *CorrelationReport {
	return &CorrelationReport{Filename: "correlation.md"}
}

func (c *CorrelationReport) Name() string { return "correlation" }

type pairedSample struct {
	label string
	x, y  []float64
}

// Generate writes the correlation document. Every pairing with fewer than
// minSamples districts is reported as rejected, not computed.
func (c *CorrelationReport) Generate(records []domain.PointOfInterest, outputDir string) error {
	growth := estimateDistrictGrowth(records)
	market := domain.MarketEstimates()

	var b strings.Builder
	b.WriteString("# Winery growth vs. real-estate appreciation\n\n")
	b.WriteString(estimateDisclaimer)

	samples := buildPairedSamples(growth, market)
	b.WriteString("## Correlations\n\n")
	b.WriteString("| Pairing | n | Pearson r | p (two-sided) | Verdict |\n")
	b.WriteString("|---|---:|---:|---:|---|\n")
	for _, s := range samples {
		writeCorrelationRow(&b, s)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Pairings with fewer than %d districts are rejected rather than\nreported with an unstable p-value.\n\n", minSamples)

	writeGentrificationRanking(&b, growth, market)

	return writeArtifact(outputDir, c.Filename, []byte(b.String()))
}

// buildPairedSamples collects the district-level pairings that have both a
// winery growth estimate and a market estimate.
func buildPairedSamples(growth []districtGrowth, market map[string]domain.MarketEstimate) []pairedSample {
	cagrVsAppreciation := pairedSample{label: "Winery CAGR vs. avg annual price increase"}
	densityVsPrice := pairedSample{label: "Winery density vs. 2024 price level"}
	volatilityVsTotal := pairedSample{label: "Series volatility vs. total appreciation"}

	for _, dg := range growth {
		m, ok := market[dg.district.Name]
		if !ok {
			continue
		}
		cagrVsAppreciation.x = append(cagrVsAppreciation.x, dg.cagr)
		cagrVsAppreciation.y = append(cagrVsAppreciation.y, m.AvgAnnualIncrease)

		densityVsPrice.x = append(densityVsPrice.x, dg.density)
		densityVsPrice.y = append(densityVsPrice.y, m.Price2024EurSqm)

		volatilityVsTotal.x = append(volatilityVsTotal.x, dg.series.Volatility())
		volatilityVsTotal.y = append(volatilityVsTotal.y, m.TotalIncrease)
	}

	return []pairedSample{cagrVsAppreciation, densityVsPrice, volatilityVsTotal}
}

func writeCorrelationRow(b *strings.Builder, s pairedSample) {
	n := len(s.x)
	if n < minSamples {
		fmt.Fprintf(b, "| %s | %d | - | - | rejected: fewer than %d samples |\n", s.label, n, minSamples)
		return
	}

	r, err := stats.Pearson(s.x, s.y)
	if err != nil || math.IsNaN(r) {
		fmt.Fprintf(b, "| %s | %d | - | - | rejected: degenerate sample |\n", s.label, n)
		return
	}

	p := pearsonPValue(r, n)
	fmt.Fprintf(b, "| %s | %d | %.3f | %.3f | %s |\n", s.label, n, r, p, correlationVerdict(r, p))
}

func correlationVerdict(r, p float64) string {
	strength := "weak"
	switch abs := math.Abs(r); {
	case abs >= 0.7:
		strength = "strong"
	case abs >= 0.4:
		strength = "moderate"
	}
	direction := "positive"
	if r < 0 {
		direction = "negative"
	}
	significance := "not significant"
	if p < 0.05 {
		significance = "significant at 0.05"
	}
	return fmt.Sprintf("%s %s, %s", strength, direction, significance)
}

// writeGentrificationRanking scores districts by combining normalized winery
// growth with normalized price appreciation.
func writeGentrificationRanking(b *strings.Builder, growth []districtGrowth, market map[string]domain.MarketEstimate) {
	type scored struct {
		district string
		score    float64
		cagr     float64
		apprec   float64
	}

	maxCagr, maxApprec := 0.0, 0.0
	var rows []scored
	for _, dg := range growth {
		m, ok := market[dg.district.Name]
		if !ok {
			continue
		}
		rows = append(rows, scored{district: dg.district.Name, cagr: dg.cagr, apprec: m.AvgAnnualIncrease})
		maxCagr = math.Max(maxCagr, dg.cagr)
		maxApprec = math.Max(maxApprec, m.AvgAnnualIncrease)
	}

	b.WriteString("## Gentrification pressure ranking\n\n")
	b.WriteString("Score is the mean of winery CAGR and price appreciation, each\nnormalized to the district maximum. Heuristic, not a measurement.\n\n")

	for i := range rows {
		var parts, total float64
		if maxCagr > 0 {
			parts += rows[i].cagr / maxCagr
			total++
		}
		if maxApprec > 0 {
			parts += rows[i].apprec / maxApprec
			total++
		}
		if total > 0 {
			rows[i].score = parts / total
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].score != rows[j].score {
			return rows[i].score > rows[j].score
		}
		return rows[i].district < rows[j].district
	})

	b.WriteString("| Rank | District | Score | Est. winery CAGR | Est. annual appreciation |\n")
	b.WriteString("|---:|---|---:|---:|---:|\n")
	for i, row := range rows {
		fmt.Fprintf(b, "| %d | %s | %.2f | %.1f%% | %.1f%% |\n",
			i+1, row.district, row.score, 100*row.cagr, 100*row.apprec)
	}
	b.WriteString("\n")
}

// pearsonPValue computes the two-sided p-value for a Pearson coefficient
// over n samples, via the t distribution with n-2 degrees of freedom.
func pearsonPValue(r float64, n int) float64 {
	df := float64(n - 2)
	if df <= 0 {
		return 1
	}
	denom := 1 - r*r
	if denom <= 0 {
		return 0
	}
	t := r * math.Sqrt(df/denom)
	// P(|T| > t) = I_{df/(df+t²)}(df/2, 1/2)
	x := df / (df + t*t)
	return regularizedIncompleteBeta(df/2, 0.5, x)
}

// regularizedIncompleteBeta evaluates I_x(a, b) using the continued
// fraction from Numerical Recipes.
func regularizedIncompleteBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	lnBeta, _ := math.Lgamma(a + b)
	lnA, _ := math.Lgamma(a)
	lnB, _ := math.Lgamma(b)
	front := math.Exp(lnBeta - lnA - lnB + a*math.Log(x) + b*math.Log(1-x))

	if x < (a+1)/(a+b+2) {
		return front * betaContinuedFraction(a, b, x) / a
	}
	return 1 - front*betaContinuedFraction(b, a, 1-x)/b
}

func betaContinuedFraction(a, b, x float64) float64 {
	const (
		maxIterations = 200
		epsilon       = 3e-14
		tiny          = 1e-30
	)

	qab, qap, qam := a+b, a+1, a-1
	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < tiny {
		d = tiny
	}
	d = 1 / d
	h := d

	for m := 1; m <= maxIterations; m++ {
		fm := float64(m)
		m2 := 2 * fm

		aa := fm * (b - fm) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		h *= d * c

		aa = -(a + fm) * (qab + fm) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		del := d * c
		h *= del

		if math.Abs(del-1) < epsilon {
			break
		}
	}
	return h
}
