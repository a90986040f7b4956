// Package api exposes the simulation engine over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/urbansim/roadshock/pkg/config"
	"github.com/urbansim/roadshock/pkg/health"
	"github.com/urbansim/roadshock/pkg/loader"
	"github.com/urbansim/roadshock/pkg/logging"
	"github.com/urbansim/roadshock/pkg/metrics"
	"github.com/urbansim/roadshock/pkg/results"
)

// defaultBaseSeed fixes the random seed for request-driven simulations so
// that identical requests return identical results across restarts.
const defaultBaseSeed = 42

// maxRequestBody bounds JSON request bodies.
const maxRequestBody = 1 << 20

// Server is the HTTP API server.
type Server struct {
	cfg     config.Config
	graphs  *loader.GraphProvider
	hazards *loader.HazardProvider
	store   *results.Store // nil disables persistence
	logger  logging.Logger
	metrics *metrics.Registry
	checker *health.Checker

	startTime time.Time
	version   string
}

// NewServer creates an API server. store may be nil, in which case results
// are not persisted.
func NewServer(cfg config.Config, graphs *loader.GraphProvider, hazards *loader.HazardProvider, store *results.Store, logger logging.Logger, reg *metrics.Registry) *Server {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if reg == nil {
		reg = metrics.DefaultRegistry()
	}

	s := &Server{
		cfg:       cfg,
		graphs:    graphs,
		hazards:   hazards,
		store:     store,
		logger:    logger.With(logging.Component("api")),
		metrics:   reg,
		checker:   health.NewChecker(),
		startTime: time.Now(),
		version:   "1.0.0",
	}

	s.checker.Register("graph_cache", health.DirWritableCheck(cfg.GraphCacheDir))
	s.checker.RegisterReadiness("hazard_cache", health.DirWritableCheck(cfg.HazardCacheDir))
	if store != nil {
		s.checker.RegisterReadiness("database", health.PingCheck(store))
	}

	return s
}

// Handler returns the full route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health and metrics
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/live", s.handleLive)
	mux.HandleFunc("/health/ready", s.handleReady)
	mux.Handle("/metrics", s.metrics.Handler())

	// Catalog endpoints
	mux.HandleFunc("/cities", s.handleCities)
	mux.HandleFunc("/scenarios", s.handleScenarios)

	// Simulation endpoints
	mux.HandleFunc("/simulate", s.handleSimulate)
	mux.HandleFunc("/progressive", s.handleProgressive)
	mux.HandleFunc("/visualize", s.handleVisualize)

	var handler http.Handler = mux
	handler = s.bodySizeLimitMiddleware(handler, maxRequestBody)
	handler = s.loggingMiddleware(handler)
	handler = s.corsMiddleware(handler)
	handler = s.panicRecoveryMiddleware(handler)
	return handler
}
