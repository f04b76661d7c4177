package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// POI pipeline.
type Metrics struct {
	ElementsFetched  prometheus.Counter
	RecordsKept      prometheus.Counter
	RecordsDiscarded *prometheus.CounterVec // label: reason={missing_coordinates,outside_region}
	PipelineRunning  prometheus.Gauge

	// Overpass fetch metrics.
	FetchRetries  prometheus.Counter
	FetchDuration prometheus.Histogram

	// Reporting metrics.
	ReportsGenerated *prometheus.CounterVec // label: report
	ReportsFailed    *prometheus.CounterVec // label: report
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ElementsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "poi_atlas",
			Name:      "elements_fetched_total",
			Help:      "Total raw elements returned by the Overpass API.",
		}),
		RecordsKept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "poi_atlas",
			Name:      "records_kept_total",
			Help:      "Total elements that survived normalization.",
		}),
		RecordsDiscarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poi_atlas",
			Name:      "records_discarded_total",
			Help:      "Elements dropped during normalization, by reason.",
		}, []string{"reason"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "poi_atlas",
			Name:      "pipeline_running",
			Help:      "1 while a pipeline run is active, 0 otherwise.",
		}),
		FetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "poi_atlas",
			Name:      "fetch_retries_total",
			Help:      "Overpass requests retried after a transient failure.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "poi_atlas",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a complete Overpass fetch including retries.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		ReportsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poi_atlas",
			Name:      "reports_generated_total",
			Help:      "Report artifacts written, by report name.",
		}, []string{"report"}),
		ReportsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poi_atlas",
			Name:      "reports_failed_total",
			Help:      "Report generation failures, by report name.",
		}, []string{"report"}),
	}

	prometheus.MustRegister(
		m.ElementsFetched,
		m.RecordsKept,
		m.RecordsDiscarded,
		m.PipelineRunning,
		m.FetchRetries,
		m.FetchDuration,
		m.ReportsGenerated,
		m.ReportsFailed,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ElementsFetched:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "poi_atlas", Name: "elements_fetched_total"}),
		RecordsKept:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "poi_atlas", Name: "records_kept_total"}),
		RecordsDiscarded: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "poi_atlas", Name: "records_discarded_total"}, []string{"reason"}),
		PipelineRunning:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "poi_atlas", Name: "pipeline_running"}),
		FetchRetries:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "poi_atlas", Name: "fetch_retries_total"}),
		FetchDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "poi_atlas", Name: "fetch_duration_seconds"}),
		ReportsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "poi_atlas", Name: "reports_generated_total"}, []string{"report"}),
		ReportsFailed:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "poi_atlas", Name: "reports_failed_total"}, []string{"report"}),
	}
}
