package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "music_insights"

// Metrics holds the Prometheus counters, histograms, and gauges for dataset
// loading, lookups, and summary export.
type Metrics struct {
	RowsLoaded          prometheus.Counter
	RowsSkipped         *prometheus.CounterVec // labels: reason={no_event,no_airport}
	DatasetLoadDuration prometheus.Histogram
	DatasetReady        prometheus.Gauge

	// Lookup outcomes per level.
	Lookups *prometheus.CounterVec // labels: level={state,city}, outcome={found,unknown,missing_static_attribute,invalid}

	// Summary export metrics.
	SummariesPublished  prometheus.Counter
	ExportErrors        prometheus.Counter
	ExportBatchDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Total rows read from the event file.",
		}),
		RowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "Rows left out of a count because the counted column is blank.",
		}, []string{"reason"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of reading, normalizing, and aggregating the event file.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		DatasetReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_ready",
			Help:      "1 once the dataset is loaded and queryable, 0 otherwise.",
		}),
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Geography lookups by level and outcome.",
		}, []string{"level", "outcome"}),
		SummariesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_published_total",
			Help:      "Total geography summaries written to Kafka.",
		}),
		ExportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_errors_total",
			Help:      "Total failed summary batch writes, retries included.",
		}),
		ExportBatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_batch_duration_seconds",
			Help:      "Duration of one summary batch write.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}),
	}

	prometheus.MustRegister(
		m.RowsLoaded,
		m.RowsSkipped,
		m.DatasetLoadDuration,
		m.DatasetReady,
		m.Lookups,
		m.SummariesPublished,
		m.ExportErrors,
		m.ExportBatchDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RowsLoaded:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "rows_loaded_total"}),
		RowsSkipped:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "rows_skipped_total"}, []string{"reason"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "dataset_load_duration_seconds"}),
		DatasetReady:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "dataset_ready"}),
		Lookups:             prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "lookups_total"}, []string{"level", "outcome"}),
		SummariesPublished:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "summaries_published_total"}),
		ExportErrors:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "export_errors_total"}),
		ExportBatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "export_batch_duration_seconds"}),
	}
}
