package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// analytics pipeline.
type Metrics struct {
	RefreshTotal    prometheus.Counter
	RefreshFailures *prometheus.CounterVec   // labels: stage={fetch,schema,data_quality,internal}
	StageDuration   *prometheus.HistogramVec // labels: stage={fetch,normalize,aggregate,summarize}

	// Dataset shape of the latest successful refresh.
	RowsFetched       prometheus.Gauge
	RowsDropped       prometheus.Gauge
	MonthlyRows       prometheus.Gauge
	SnapshotTimestamp prometheus.Gauge

	PipelineRunning prometheus.Gauge

	// Source cache and snapshot publication.
	SourceCache        *prometheus.CounterVec // labels: result={hit,miss}
	SnapshotsPublished prometheus.Counter
	PublishErrors      prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RefreshTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hfmd_etl",
			Name:      "refresh_total",
			Help:      "Total successful pipeline refreshes.",
		}),
		RefreshFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hfmd_etl",
			Name:      "refresh_failures_total",
			Help:      "Pipeline refresh failures by stage.",
		}, []string{"stage"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hfmd_etl",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"stage"}),
		RowsFetched: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hfmd_etl",
			Name:      "rows_fetched",
			Help:      "Raw rows in the most recently fetched dataset.",
		}),
		RowsDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hfmd_etl",
			Name:      "rows_dropped",
			Help:      "Rows dropped during normalization (unparseable dates).",
		}),
		MonthlyRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hfmd_etl",
			Name:      "monthly_rows",
			Help:      "Monthly aggregate rows in the latest snapshot.",
		}),
		SnapshotTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hfmd_etl",
			Name:      "snapshot_timestamp_seconds",
			Help:      "Unix time of the latest snapshot.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hfmd_etl",
			Name:      "pipeline_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		SourceCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hfmd_etl",
			Name:      "source_cache_total",
			Help:      "Dataset cache lookups by result.",
		}, []string{"result"}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hfmd_etl",
			Name:      "snapshots_published_total",
			Help:      "Snapshots successfully published to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hfmd_etl",
			Name:      "publish_errors_total",
			Help:      "Snapshot publication failures.",
		}),
	}

	prometheus.MustRegister(
		m.RefreshTotal,
		m.RefreshFailures,
		m.StageDuration,
		m.RowsFetched,
		m.RowsDropped,
		m.MonthlyRows,
		m.SnapshotTimestamp,
		m.PipelineRunning,
		m.SourceCache,
		m.SnapshotsPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RefreshTotal:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hfmd_etl", Name: "refresh_total"}),
		RefreshFailures:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hfmd_etl", Name: "refresh_failures_total"}, []string{"stage"}),
		StageDuration:      prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "hfmd_etl", Name: "stage_duration_seconds"}, []string{"stage"}),
		RowsFetched:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hfmd_etl", Name: "rows_fetched"}),
		RowsDropped:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hfmd_etl", Name: "rows_dropped"}),
		MonthlyRows:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hfmd_etl", Name: "monthly_rows"}),
		SnapshotTimestamp:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hfmd_etl", Name: "snapshot_timestamp_seconds"}),
		PipelineRunning:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hfmd_etl", Name: "pipeline_running"}),
		SourceCache:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hfmd_etl", Name: "source_cache_total"}, []string{"result"}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hfmd_etl", Name: "snapshots_published_total"}),
		PublishErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hfmd_etl", Name: "publish_errors_total"}),
	}
}
