package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCacheMetrics() {
	r.GraphLoadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "roadshock_graph_loads_total",
			Help: "Total number of graph acquisitions by source (cache or fetch)",
		},
		[]string{"source"},
	)

	r.GraphLoadDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roadshock_graph_load_duration_seconds",
			Help:    "Graph acquisition latency in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 2, 10, 60, 300},
		},
		[]string{"source"},
	)

	r.CacheAccessTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "roadshock_cache_access_total",
			Help: "Cache lookups by cache name and outcome",
		},
		[]string{"cache", "outcome"},
	)
}
