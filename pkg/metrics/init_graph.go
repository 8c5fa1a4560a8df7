package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGraphMetrics() {
	r.GraphNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "attackpath_graph_nodes",
			Help: "Nodes in the current graph snapshot",
		},
	)

	r.GraphEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "attackpath_graph_edges",
			Help: "Edges in the current graph snapshot",
		},
	)

	r.GraphEntryPoints = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "attackpath_entry_points",
			Help: "Publicly exposed entry points found by the last uncached query",
		},
	)

	r.GraphLoadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "attackpath_graph_loads_total",
			Help: "Graph snapshot loads by outcome",
		},
		[]string{"status"},
	)
}

func (r *Registry) initCacheMetrics() {
	r.CacheEventsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "attackpath_cache_events_total",
			Help: "Result cache events (hit, miss, shared, clear)",
		},
		[]string{"event"},
	)
}
