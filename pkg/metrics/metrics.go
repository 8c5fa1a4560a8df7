package metrics

import (
	"time"
)

// RecordQuery records a finished query, its latency and result size
func (r *Registry) RecordQuery(algorithm, status string, duration time.Duration, paths int) {
	r.QueriesTotal.WithLabelValues(algorithm, status).Inc()
	r.QueryDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	if status != StatusError {
		r.QueryPathsReturned.WithLabelValues(algorithm).Observe(float64(paths))
	}
}

// RecordCacheEvent counts a hit, miss, shared or clear
func (r *Registry) RecordCacheEvent(event string) {
	r.CacheEventsTotal.WithLabelValues(event).Inc()
}

// RecordEntryPointFailure counts an entry point whose scoring failed
func (r *Registry) RecordEntryPointFailure(algorithm string) {
	r.EntryPointFailuresTotal.WithLabelValues(algorithm).Inc()
}

// SetEntryPoints records how many entry points the last query used
func (r *Registry) SetEntryPoints(n int) {
	r.GraphEntryPoints.Set(float64(n))
}

// SetGraphSize records the size of the current snapshot
func (r *Registry) SetGraphSize(nodes, edges int) {
	r.GraphNodes.Set(float64(nodes))
	r.GraphEdges.Set(float64(edges))
}

// RecordGraphLoad counts a snapshot load attempt
func (r *Registry) RecordGraphLoad(err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	r.GraphLoadsTotal.WithLabelValues(status).Inc()
}
