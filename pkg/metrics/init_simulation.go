package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSimulationMetrics() {
	r.SimulationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "roadshock_simulations_total",
			Help: "Total number of shock simulations by scenario and outcome",
		},
		[]string{"scenario", "status"},
	)

	r.SimulationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roadshock_simulation_duration_seconds",
			Help:    "Shock simulation latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.25, 1, 5, 15, 60, 300},
		},
		[]string{"scenario"},
	)

	r.SimulationEdgesRemoved = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roadshock_simulation_edges_removed",
			Help:    "Edges actually removed per simulation",
			Buckets: []float64{0, 1, 10, 100, 1000, 10000, 100000},
		},
	)

	r.SimulationPairsSampled = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roadshock_simulation_pairs_sampled",
			Help:    "Retained origin-destination pairs per simulation",
			Buckets: []float64{0, 5, 10, 20, 40, 80, 160},
		},
	)

	r.SweepCellsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "roadshock_sweep_cells_total",
			Help: "Total number of (severity, repeat) sweep cells executed",
		},
	)
}
