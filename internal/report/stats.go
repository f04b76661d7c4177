package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kellerweis/poi-atlas/internal/domain"
)

const postcodeTopN = 10

// StatsReport renders the per-district statistics summary as markdown.
type StatsReport struct {
	Title    string
	Filename string
}

// NewStatsReport creates the district statistics generator.
func NewStatsReport(title string) *StatsReport {
	return &StatsReport{Title: title, Filename: "statistics.md"}
}

func (s *StatsReport) Name() string { return "statistics" }

// Generate writes the statistics document. Per-district counts always sum
// to the total record count. An empty table renders a valid document with
// zero counts.
func (s *StatsReport) Generate(records []domain.PointOfInterest, outputDir string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", s.Title)
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().UTC().Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&b, "Total records: **%d**\n\n", len(records))

	writeDistrictTable(&b, records)
	writeAccessibilityBreakdown(&b, records)
	writeRecencyBreakdown(&b, records)
	writePostcodeTable(&b, records)

	return writeArtifact(outputDir, s.Filename, []byte(b.String()))
}

type nameCount struct {
	name  string
	count int
}

// countBy buckets records by a key function and returns the buckets sorted
// by count descending, ties broken by name.
func countBy(records []domain.PointOfInterest, key func(domain.PointOfInterest) string) []nameCount {
	counts := map[string]int{}
	for _, r := range records {
		counts[key(r)]++
	}
	out := make([]nameCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, nameCount{name, count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}

func writeDistrictTable(b *strings.Builder, records []domain.PointOfInterest) {
	b.WriteString("## Records by district\n\n")
	b.WriteString("| District | Count | Share |\n")
	b.WriteString("|---|---:|---:|\n")
	for _, dc := range countBy(records, func(r domain.PointOfInterest) string { return r.District }) {
		fmt.Fprintf(b, "| %s | %d | %.1f%% |\n", dc.name, dc.count, percent(dc.count, len(records)))
	}
	b.WriteString("\n")
}

func writeAccessibilityBreakdown(b *strings.Builder, records []domain.PointOfInterest) {
	b.WriteString("## Wheelchair accessibility\n\n")
	b.WriteString("| Classification | Count | Share |\n")
	b.WriteString("|---|---:|---:|\n")
	for _, ac := range countBy(records, func(r domain.PointOfInterest) string { return string(r.Accessibility) }) {
		fmt.Fprintf(b, "| %s | %d | %.1f%% |\n", ac.name, ac.count, percent(ac.count, len(records)))
	}
	b.WriteString("\n")
}

func writeRecencyBreakdown(b *strings.Builder, records []domain.PointOfInterest) {
	b.WriteString("## Opening recency\n\n")
	b.WriteString("Recency is inferred from start_date tags where present, and from\n")
	b.WriteString("the OSM element timestamp otherwise. Timestamp-based classes are\n")
	b.WriteString("an upper bound on how recently the venue opened.\n\n")
	b.WriteString("| Class | Count | Share |\n")
	b.WriteString("|---|---:|---:|\n")
	for _, rc := range countBy(records, func(r domain.PointOfInterest) string { return r.Recency }) {
		fmt.Fprintf(b, "| %s | %d | %.1f%% |\n", rc.name, rc.count, percent(rc.count, len(records)))
	}
	b.WriteString("\n")
}

func writePostcodeTable(b *strings.Builder, records []domain.PointOfInterest) {
	withPostcode := make([]domain.PointOfInterest, 0, len(records))
	for _, r := range records {
		if r.Postcode != "" {
			withPostcode = append(withPostcode, r)
		}
	}

	fmt.Fprintf(b, "## Top postcodes\n\n")
	fmt.Fprintf(b, "%d of %d records carry a postcode.\n\n", len(withPostcode), len(records))

	buckets := countBy(withPostcode, func(r domain.PointOfInterest) string { return r.Postcode })
	if len(buckets) > postcodeTopN {
		buckets = buckets[:postcodeTopN]
	}

	b.WriteString("| Postcode | Count |\n")
	b.WriteString("|---|---:|\n")
	for _, pc := range buckets {
		fmt.Fprintf(b, "| %s | %d |\n", pc.name, pc.count)
	}
	b.WriteString("\n")
}
