// Package report renders the persisted POI table as human-readable
// artifacts: markdown summaries, a raster density image, and a
// self-contained interactive map.
//
// The growth, correlation, and temporal reports are built on estimated
// series, not measured history. Every artifact they produce is labeled
// accordingly, and the types involved carry the word Estimated so callers
// cannot mistake model output for fact.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kellerweis/poi-atlas/internal/domain"
	"github.com/kellerweis/poi-atlas/internal/observability"
)

// Generator produces one artifact from the record table.
type Generator interface {
	Name() string
	Generate(records []domain.PointOfInterest, outputDir string) error
}

// Reporter runs a set of generators against one table. Generator failures
// are isolated: a failing report is logged and counted, and the remaining
// generators still run.
type Reporter struct {
	generators []Generator
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewReporter creates a Reporter over the given generators.
func NewReporter(generators []Generator, logger *slog.Logger, metrics *observability.Metrics) *Reporter {
	return &Reporter{generators: generators, logger: logger, metrics: metrics}
}

// Run executes every generator and returns the names of those that failed
// alongside a combined error, or nil if all succeeded.
func (r *Reporter) Run(records []domain.PointOfInterest, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return &domain.PersistenceError{Path: outputDir, Op: "mkdir", Err: err}
	}

	var failed []string
	for _, g := range r.generators {
		if err := g.Generate(records, outputDir); err != nil {
			r.logger.Error("report failed", "report", g.Name(), "error", err)
			r.metrics.ReportsFailed.WithLabelValues(g.Name()).Inc()
			failed = append(failed, g.Name())
			continue
		}
		r.logger.Info("report written", "report", g.Name())
		r.metrics.ReportsGenerated.WithLabelValues(g.Name()).Inc()
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d reports failed: %v", len(failed), len(r.generators), failed)
	}
	return nil
}

// writeArtifact writes data under outputDir via a temp-and-rename so a
// failed report never truncates a previous artifact.
func writeArtifact(outputDir, name string, data []byte) error {
	path := filepath.Join(outputDir, name)

	tmp, err := os.CreateTemp(outputDir, name+".tmp-*")
	if err != nil {
		return &domain.PersistenceError{Path: path, Op: "create temp", Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &domain.PersistenceError{Path: path, Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &domain.PersistenceError{Path: path, Op: "close", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &domain.PersistenceError{Path: path, Op: "rename", Err: err}
	}
	return nil
}
