// Package pipeline orchestrates the fetch-normalize-persist run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kellerweis/poi-atlas/internal/domain"
	"github.com/kellerweis/poi-atlas/internal/observability"
)

// Fetcher retrieves raw elements from the upstream source.
type Fetcher interface {
	Fetch(ctx context.Context) ([]domain.RawElement, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) ([]domain.RawElement, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context) ([]domain.RawElement, error) {
	return f(ctx)
}

// Normalizer converts raw elements into the cleaned record table.
type Normalizer interface {
	Normalize(elements []domain.RawElement) domain.NormalizeResult
}

// Persister writes the record table to durable storage and returns the
// paths it wrote.
type Persister interface {
	Persist(ctx context.Context, records []domain.PointOfInterest) ([]string, error)
}

// Summary describes one completed pipeline run.
type Summary struct {
	Fetched   int
	Kept      int
	Discarded map[string]int
	Outputs   []string
	Duration  time.Duration
}

// DiscardedTotal sums the per-reason discard counts.
func (s Summary) DiscardedTotal() int {
	n := 0
	for _, c := range s.Discarded {
		n += c
	}
	return n
}

// Pipeline runs the three stages in order. Each stage boundary is hard: a
// fetch or persist failure aborts the run, while normalization drops bad
// elements individually and never fails the run.
type Pipeline struct {
	fetcher    Fetcher
	normalizer Normalizer
	persister  Persister
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// New creates a Pipeline with the given stages and observability.
func New(f Fetcher, n Normalizer, p Persister, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		fetcher:    f,
		normalizer: n,
		persister:  p,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run executes one fetch-normalize-persist cycle. A run that fetches zero
// elements is a success: it persists an empty table.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	p.logger.Info("pipeline started")
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	elements, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("fetch: %w", err)
	}
	p.metrics.ElementsFetched.Add(float64(len(elements)))
	p.logger.Info("fetch complete", "elements", len(elements))

	result := p.normalizer.Normalize(elements)
	p.metrics.RecordsKept.Add(float64(len(result.Records)))
	for reason, count := range result.Discarded {
		p.metrics.RecordsDiscarded.WithLabelValues(reason).Add(float64(count))
	}
	p.logger.Info("normalize complete",
		"kept", len(result.Records),
		"discarded", result.DiscardedTotal(),
	)
	if len(result.Records) == 0 {
		p.logger.Warn("no records survived normalization, writing an empty table")
	}

	outputs, err := p.persister.Persist(ctx, result.Records)
	if err != nil {
		return Summary{}, fmt.Errorf("persist: %w", err)
	}

	summary := Summary{
		Fetched:   len(elements),
		Kept:      len(result.Records),
		Discarded: result.Discarded,
		Outputs:   outputs,
		Duration:  time.Since(start),
	}
	p.logger.Info("pipeline finished",
		"fetched", summary.Fetched,
		"kept", summary.Kept,
		"discarded", summary.DiscardedTotal(),
		"outputs", summary.Outputs,
		"duration", summary.Duration,
	)
	return summary, nil
}
