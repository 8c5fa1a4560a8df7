package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Query status label values
const (
	StatusSuccess = "success"
	StatusEmpty   = "empty"
	StatusError   = "error"
)

// Cache event label values
const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheShared = "shared"
	CacheClear  = "clear"
)

// Registry holds all metrics for the attack-path engine
type Registry struct {
	// Query Metrics
	QueriesTotal            *prometheus.CounterVec
	QueryDuration           *prometheus.HistogramVec
	QueryPathsReturned      *prometheus.HistogramVec
	EntryPointFailuresTotal *prometheus.CounterVec

	// Cache Metrics
	CacheEventsTotal *prometheus.CounterVec

	// Graph Metrics
	GraphNodes       prometheus.Gauge
	GraphEdges       prometheus.Gauge
	GraphEntryPoints prometheus.Gauge
	GraphLoadsTotal  *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with every metric initialized. Each call
// gets its own prometheus.Registry, so tests never collide.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initQueryMetrics()
	r.initCacheMetrics()
	r.initGraphMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
