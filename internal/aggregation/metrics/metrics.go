package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the aggregation engine.
type Metrics struct {
	CohortsPublished  prometheus.Counter
	CohortsSuppressed prometheus.Counter
	CohortsFailed     prometheus.Counter
	RunDuration       prometheus.Histogram
}

// New creates and registers all aggregation metrics.
func New() *Metrics {
	return &Metrics{
		CohortsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worklens_cohorts_published_total",
			Help: "Cohorts that passed the k-anonymity filter and were upserted",
		}),
		CohortsSuppressed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worklens_cohorts_suppressed_total",
			Help: "Cohorts dropped for having fewer distinct contributors than the threshold",
		}),
		CohortsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worklens_cohorts_failed_total",
			Help: "Cohorts skipped because their upsert failed",
		}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worklens_aggregation_run_duration_seconds",
			Help:    "Wall-clock duration of aggregation runs",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// NewNop returns metrics backed by unregistered collectors for tests that
// construct several services in one process.
func NewNop() *Metrics {
	return &Metrics{
		CohortsPublished:  prometheus.NewCounter(prometheus.CounterOpts{Name: "nop_published"}),
		CohortsSuppressed: prometheus.NewCounter(prometheus.CounterOpts{Name: "nop_suppressed"}),
		CohortsFailed:     prometheus.NewCounter(prometheus.CounterOpts{Name: "nop_failed"}),
		RunDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Name: "nop_run_duration"}),
	}
}
