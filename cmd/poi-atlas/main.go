package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/kellerweis/poi-atlas/internal/adapter/http"
	"github.com/kellerweis/poi-atlas/internal/adapter/overpass"
	"github.com/kellerweis/poi-atlas/internal/config"
	"github.com/kellerweis/poi-atlas/internal/domain"
	"github.com/kellerweis/poi-atlas/internal/geo"
	"github.com/kellerweis/poi-atlas/internal/observability"
	"github.com/kellerweis/poi-atlas/internal/pipeline"
	"github.com/kellerweis/poi-atlas/internal/report"
	"github.com/kellerweis/poi-atlas/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "poi-atlas",
	Short:         "Fetch Berlin points of interest and render maps and reports",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Full pipeline: fetch, normalize, persist, then render all reports",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, app *app) error {
			summary, err := app.runPipeline(ctx)
			if err != nil {
				return err
			}
			return app.runReports(summary.Records)
		})
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch, normalize, and persist without rendering reports",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, app *app) error {
			_, err := app.runPipeline(ctx)
			return err
		})
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render all reports from the previously persisted table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(_ context.Context, app *app) error {
			records, err := store.ReadCSV(app.csvPath())
			if err != nil {
				return err
			}
			return app.runReports(records)
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd, fetchCmd, reportCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app bundles everything a subcommand needs once config is loaded.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	tracker *httpadapter.StatusTracker
}

type pipelineResult struct {
	Records []domain.PointOfInterest
	Summary pipeline.Summary
}

// withApp loads config, starts the optional metrics server, runs fn, and
// shuts everything down.
func withApp(ctx context.Context, fn func(context.Context, *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a := &app{
		cfg:     cfg,
		logger:  observability.NewLogger(cfg.LogLevel, cfg.LogFormat),
		metrics: observability.NewMetrics(),
		tracker: httpadapter.NewStatusTracker(),
	}

	var srv *httpadapter.Server
	if cfg.MetricsAddr != "" {
		srv = httpadapter.NewServer(cfg.MetricsAddr, a.tracker, a.logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("http server error", "error", err)
			}
		}()
	}

	runErr := fn(ctx, a)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("http server shutdown", "error", err)
		}
	}
	return runErr
}

// datasetName derives the persisted file basename from the query kind.
func (a *app) datasetName() string {
	if a.cfg.QueryKind == "supermarket" {
		return "supermarkets"
	}
	return "wineries"
}

func (a *app) csvPath() string {
	return filepath.Join(a.cfg.DataDir, a.datasetName()+".csv")
}

func (a *app) reportTitle() string {
	if a.cfg.QueryKind == "supermarket" {
		return "Berlin Supermarkets"
	}
	return "Berlin Wineries & Wine Venues"
}

func (a *app) selectors() []overpass.Selector {
	if a.cfg.QueryKind == "supermarket" {
		return overpass.SupermarketSelectors(a.cfg.Brand)
	}
	return overpass.WinerySelectors()
}

// runPipeline wires and executes one fetch-normalize-persist cycle.
func (a *app) runPipeline(ctx context.Context) (pipelineResult, error) {
	a.tracker.Set(httpadapter.Status{State: httpadapter.StateRunning})

	client := overpass.NewClient(
		a.cfg.OverpassURL, a.cfg.OverpassTimeout,
		a.cfg.FetchRetries, a.cfg.FetchBackoff,
		a.logger, a.metrics,
	)
	query := overpass.Query{
		Region:    a.cfg.Region,
		Selectors: a.selectors(),
		TimeoutS:  a.cfg.QueryTimeoutS,
	}
	if err := query.Validate(); err != nil {
		return pipelineResult{}, err
	}

	index, err := geo.NewDistrictIndex(domain.Districts())
	if err != nil {
		return pipelineResult{}, fmt.Errorf("build district index: %w", err)
	}
	normalizer := pipeline.NewNormalizer(a.cfg.Region, index, a.logger)
	persister := &store.FilePersister{Dir: a.cfg.DataDir, BaseName: a.datasetName()}

	var records []domain.PointOfInterest
	capture := captureNormalizer{inner: normalizer, out: &records}

	p := pipeline.New(
		pipeline.FetcherFunc(func(ctx context.Context) ([]domain.RawElement, error) {
			return client.Fetch(ctx, query)
		}),
		capture, persister, a.logger, a.metrics,
	)

	summary, err := p.Run(ctx)
	if err != nil {
		a.tracker.Set(httpadapter.Status{State: httpadapter.StateFailed, Error: err.Error()})
		return pipelineResult{}, err
	}

	a.tracker.Set(httpadapter.Status{
		State:     httpadapter.StateDone,
		Fetched:   summary.Fetched,
		Kept:      summary.Kept,
		Discarded: summary.DiscardedTotal(),
	})
	return pipelineResult{Records: records, Summary: summary}, nil
}

// runReports renders every report artifact into the output directory.
func (a *app) runReports(records []domain.PointOfInterest) error {
	landmarks := domain.Landmarks()
	reporter := report.NewReporter([]report.Generator{
		report.NewStatsReport(a.reportTitle()),
		report.NewGrowthReport(),
		report.NewCorrelationReport(),
		report.NewTemporalReport(),
		report.NewHeatmapReport(a.cfg.Region, landmarks),
		report.NewMapReport(a.reportTitle(), a.cfg.Region, landmarks),
	}, a.logger, a.metrics)

	return reporter.Run(records, a.cfg.OutputDir)
}

// captureNormalizer records the normalized table so the run command can
// hand it to the reporters without re-reading the persisted file.
type captureNormalizer struct {
	inner pipeline.Normalizer
	out   *[]domain.PointOfInterest
}

func (c captureNormalizer) Normalize(elements []domain.RawElement) domain.NormalizeResult {
	res := c.inner.Normalize(elements)
	*c.out = res.Records
	return res
}
