// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Catalog ingestion metrics
	CatalogRequests        *prometheus.CounterVec
	EventsIngested         prometheus.Counter
	DuplicateEventsSkipped prometheus.Counter
	IngestionErrors        prometheus.Counter

	// Analysis metrics
	AnalysisRuns           prometheus.Counter
	SequencesBuilt         prometheus.Counter
	SequencesInsufficient  prometheus.Counter
	FitsAttempted          prometheus.Counter
	FitFailures            *prometheus.CounterVec
	FitDuration            prometheus.Histogram
	LastSuccessfulAnalysis prometheus.Gauge

	// Database metrics
	DBQueryErrors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered on
// the default registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "omori_lab"
	}

	return &Metrics{
		CatalogRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_requests_total",
			Help:      "Catalog API requests by outcome",
		}, []string{"outcome"}),
		EventsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_ingested_total",
			Help:      "Earthquake events stored during ingestion",
		}),
		DuplicateEventsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_events_skipped_total",
			Help:      "Catalog events skipped because they were already stored",
		}),
		IngestionErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestion_errors_total",
			Help:      "Errors encountered during catalog ingestion",
		}),
		AnalysisRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_runs_total",
			Help:      "Completed analysis pipeline runs",
		}),
		SequencesBuilt: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sequences_built_total",
			Help:      "Aftershock sequences passing the minimum-count filter",
		}),
		SequencesInsufficient: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sequences_insufficient_total",
			Help:      "Candidate mainshocks with too few associated aftershocks",
		}),
		FitsAttempted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fits_attempted_total",
			Help:      "Omori fits attempted (modified and classical)",
		}),
		FitFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fit_failures_total",
			Help:      "Unsuccessful fits by failure reason",
		}, []string{"reason"}),
		FitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fit_duration_seconds",
			Help:      "Wall time of a single sequence fit",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		LastSuccessfulAnalysis: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_successful_analysis_timestamp_seconds",
			Help:      "Unix time of the last completed analysis run",
		}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_query_errors_total",
			Help:      "Database query errors by store",
		}, []string{"store"}),
	}
}

// Handler returns an HTTP handler exposing the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
