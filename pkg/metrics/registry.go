// Package metrics exposes the service's Prometheus metrics behind a single
// registry value, grouped by concern.
package metrics

import (
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Simulation Metrics
	SimulationsTotal       *prometheus.CounterVec
	SimulationDuration     *prometheus.HistogramVec
	SimulationEdgesRemoved prometheus.Histogram
	SimulationPairsSampled prometheus.Histogram
	SweepCellsTotal        prometheus.Counter

	// Graph / cache Metrics
	GraphLoadsTotal   *prometheus.CounterVec
	GraphLoadDuration *prometheus.HistogramVec
	CacheAccessTotal  *prometheus.CounterVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge

	registry  *prometheus.Registry
	startTime time.Time
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry:  prometheus.NewRegistry(),
		startTime: time.Now(),
	}

	r.initHTTPMetrics()
	r.initSimulationMetrics()
	r.initCacheMetrics()
	r.initSystemMetrics()

	return r
}

// Handler returns an HTTP handler serving this registry in the Prometheus
// exposition format. System gauges are refreshed on each scrape.
func (r *Registry) Handler() http.Handler {
	inner := promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.updateSystemMetrics()
		inner.ServeHTTP(w, req)
	})
}

func (r *Registry) updateSystemMetrics() {
	r.UptimeSeconds.Set(time.Since(r.startTime).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	r.MemoryAllocBytes.Set(float64(mem.Alloc))
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordSimulation records one shock simulation outcome.
func (r *Registry) RecordSimulation(scenario, status string, duration time.Duration, removedEdges, pairs int) {
	r.SimulationsTotal.WithLabelValues(scenario, status).Inc()
	r.SimulationDuration.WithLabelValues(scenario).Observe(duration.Seconds())
	if status == "ok" {
		r.SimulationEdgesRemoved.Observe(float64(removedEdges))
		r.SimulationPairsSampled.Observe(float64(pairs))
	}
}

// RecordGraphLoad records a graph acquisition and whether it came from the
// cache or a fetch.
func (r *Registry) RecordGraphLoad(source string, duration time.Duration) {
	r.GraphLoadsTotal.WithLabelValues(source).Inc()
	r.GraphLoadDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordCacheAccess records a cache lookup for the named cache
// ("graph" or "hazard").
func (r *Registry) RecordCacheAccess(cacheName string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	r.CacheAccessTotal.WithLabelValues(cacheName, outcome).Inc()
}
