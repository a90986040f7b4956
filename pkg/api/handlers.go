package api

import (
	"net/http"
	"time"

	"github.com/urbansim/roadshock/pkg/health"
	"github.com/urbansim/roadshock/pkg/scenario"
)

// HealthResponse is the /health body.
type HealthResponse struct {
	Status    health.Status           `json:"status"`
	Version   string                  `json:"version"`
	Uptime    string                  `json:"uptime"`
	Checks    map[string]health.Check `json:"checks,omitempty"`
	Timestamp time.Time               `json:"timestamp"`
}

// CitiesResponse is the /cities body.
type CitiesResponse struct {
	Cities []string `json:"cities"`
}

// ScenariosResponse is the /scenarios body.
type ScenariosResponse struct {
	Scenarios []string `json:"scenarios"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	res := s.checker.RunChecks()
	status := http.StatusOK
	if res.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	s.respondJSON(w, status, HealthResponse{
		Status:    res.Status,
		Version:   s.version,
		Uptime:    time.Since(s.startTime).String(),
		Checks:    res.Checks,
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status:    health.StatusHealthy,
		Version:   s.version,
		Uptime:    time.Since(s.startTime).String(),
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	res := s.checker.RunReadinessChecks()
	status := http.StatusOK
	if res.Status != health.StatusHealthy {
		status = http.StatusServiceUnavailable
	}
	s.respondJSON(w, status, HealthResponse{
		Status:    res.Status,
		Version:   s.version,
		Uptime:    time.Since(s.startTime).String(),
		Checks:    res.Checks,
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, CitiesResponse{Cities: s.cfg.Cities})
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, ScenariosResponse{Scenarios: scenario.Names()})
}
