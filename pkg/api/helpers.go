package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/urbansim/roadshock/pkg/loader"
	"github.com/urbansim/roadshock/pkg/logging"
	"github.com/urbansim/roadshock/pkg/scenario"
	"github.com/urbansim/roadshock/pkg/simulation"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, ErrorResponse{Error: msg})
}

// respondDomainError maps a domain error onto an HTTP status. Internal
// details are logged but never exposed to the client.
func (s *Server) respondDomainError(w http.ResponseWriter, operation string, err error) {
	switch {
	case errors.Is(err, scenario.ErrUnknownScenario):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, loader.ErrGraphUnavailable):
		s.logger.Error("graph acquisition failed", logging.String("op", operation), logging.Error(err))
		s.respondError(w, http.StatusBadGateway, "road network unavailable")
	case errors.Is(err, simulation.ErrSamplingExhausted):
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, simulation.ErrDeadlineExceeded):
		s.respondError(w, http.StatusGatewayTimeout, "simulation deadline exceeded")
	default:
		s.logger.Error("internal error", logging.String("op", operation), logging.Error(err))
		s.respondError(w, http.StatusInternalServerError, operation+" failed")
	}
}

func (s *Server) requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// requireCity checks the city against the configured list before any data
// access happens.
func (s *Server) requireCity(w http.ResponseWriter, city string) bool {
	if !s.cfg.SupportsCity(city) {
		s.respondError(w, http.StatusBadRequest, "unsupported city: "+city)
		return false
	}
	return true
}
