package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initQueryMetrics() {
	r.QueriesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "attackpath_queries_total",
			Help: "Total number of attack-path queries",
		},
		[]string{"algorithm", "status"},
	)

	r.QueryDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "attackpath_query_duration_seconds",
			Help:    "Attack-path query duration in seconds, cache hits included",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"algorithm"},
	)

	r.QueryPathsReturned = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "attackpath_query_paths",
			Help:    "Number of paths returned per query",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
		},
		[]string{"algorithm"},
	)

	r.EntryPointFailuresTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "attackpath_entry_point_failures_total",
			Help: "Entry points that contributed no paths because scoring failed",
		},
		[]string{"algorithm"},
	)
}
