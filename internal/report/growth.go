package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kellerweis/poi-atlas/internal/domain"
)

const estimateDisclaimer = "> **Estimated data.** The historical series below are back-projected\n" +
	"> from current counts using district growth heuristics. They are model\n" +
	"> output, not measured history, and carry no statistical guarantee.\n\n"

// GrowthReport renders estimated per-district density growth as markdown.
type GrowthReport struct {
	Filename string
}

// NewGrowthReport creates the estimated growth generator.
func NewGrowthReport() *GrowthReport {
	return &GrowthReport{Filename: "growth.md"}
}

func (g *GrowthReport) Name() string { return "growth" }

type districtGrowth struct {
	district domain.District
	count    int
	density  float64
	series   domain.EstimatedSeries
	cagr     float64
	peakYear int
	context  domain.GrowthContext
}

// Generate writes the growth document. Districts without any records are
// skipped; an empty table renders the disclaimer and an empty ranking.
func (g *GrowthReport) Generate(records []domain.PointOfInterest, outputDir string) error {
	growth := estimateDistrictGrowth(records)

	var b strings.Builder
	b.WriteString("# Estimated density growth by district\n\n")
	b.WriteString(estimateDisclaimer)
	fmt.Fprintf(&b, "Series span %d to %d. Density is venues per square kilometer.\n\n",
		domain.SeriesStartYear, domain.SeriesEndYear)

	b.WriteString("## CAGR ranking\n\n")
	b.WriteString("| Rank | District | Venues | Density | Est. CAGR | Category | Peak year | Pattern |\n")
	b.WriteString("|---:|---|---:|---:|---:|---|---:|---|\n")
	for i, dg := range growth {
		fmt.Fprintf(&b, "| %d | %s | %d | %.3f | %.1f%% | %s | %d | %s |\n",
			i+1, dg.district.Name, dg.count, dg.density,
			100*dg.cagr, growthCategory(dg.cagr), dg.peakYear, dg.context.Pattern)
	}
	b.WriteString("\n")

	b.WriteString("## District detail\n\n")
	for _, dg := range growth {
		fmt.Fprintf(&b, "### %s\n\n", dg.district.Name)
		fmt.Fprintf(&b, "%s\n\n", dg.context.Description)
		fmt.Fprintf(&b, "- Current venues: %d (%.3f per km² over %.1f km²)\n",
			dg.count, dg.density, dg.district.AreaKm2)
		fmt.Fprintf(&b, "- Estimated CAGR %d-%d: %.1f%%\n",
			domain.SeriesStartYear, domain.SeriesEndYear, 100*dg.cagr)
		fmt.Fprintf(&b, "- Estimated peak growth year: %d\n", dg.peakYear)
		fmt.Fprintf(&b, "- Estimated series volatility: %.3f\n\n", dg.series.Volatility())
	}

	return writeArtifact(outputDir, g.Filename, []byte(b.String()))
}

// estimateDistrictGrowth builds the estimated series for every district
// that has at least one record, sorted by CAGR descending.
func estimateDistrictGrowth(records []domain.PointOfInterest) []districtGrowth {
	counts := map[string]int{}
	for _, r := range records {
		counts[r.District]++
	}

	contexts := domain.GrowthContexts()

	var out []districtGrowth
	for _, d := range domain.Districts() {
		count := counts[d.Name]
		if count == 0 {
			continue
		}
		ctx, ok := contexts[d.Name]
		if !ok {
			continue
		}
		density := float64(count) / d.AreaKm2
		series := domain.BackProjectDensity(d.Name, density, ctx)
		peakYear, _ := series.PeakYear()
		out = append(out, districtGrowth{
			district: d,
			count:    count,
			density:  density,
			series:   series,
			cagr:     series.CAGR(),
			peakYear: peakYear,
			context:  ctx,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].cagr != out[j].cagr {
			return out[i].cagr > out[j].cagr
		}
		return out[i].district.Name < out[j].district.Name
	})
	return out
}

// growthCategory maps an annualized growth rate onto a coarse label.
func growthCategory(cagr float64) string {
	switch {
	case cagr >= 0.15:
		return "explosive"
	case cagr >= 0.10:
		return "rapid"
	case cagr >= 0.06:
		return "strong"
	case cagr >= 0.03:
		return "moderate"
	default:
		return "slow"
	}
}
