// Package metrics exposes Prometheus collectors for repository operations.
package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "giftregistry"

// Repository records the outcome and latency of repository operations.
// A nil *Repository is valid and records nothing.
type Repository struct {
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// NewRepository registers the repository collectors with reg.
func NewRepository(reg prometheus.Registerer) *Repository {
	m := &Repository{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "repository",
			Name:      "operation_duration_seconds",
			Help:      "Latency of repository operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"repository", "operation"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "repository",
			Name:      "operation_errors_total",
			Help:      "Repository operations that returned an error, by error kind.",
		}, []string{"repository", "operation", "kind"}),
	}
	reg.MustRegister(m.duration, m.errors)
	return m
}

// Observe records one operation. kind is empty on success.
func (m *Repository) Observe(repository, operation, kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(repository, operation).Observe(elapsed.Seconds())
	if kind != "" {
		m.errors.WithLabelValues(repository, operation, kind).Inc()
	}
}

// RegisterPool exports connection pool statistics (open, in use, waits)
// for db under the given name.
func RegisterPool(reg prometheus.Registerer, db *sql.DB, name string) {
	reg.MustRegister(collectors.NewDBStatsCollector(db, name))
}
