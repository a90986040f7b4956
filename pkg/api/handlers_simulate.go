package api

import (
	"context"
	"net/http"
	"time"

	"github.com/paulmach/orb"

	"github.com/urbansim/roadshock/pkg/experiment"
	"github.com/urbansim/roadshock/pkg/logging"
	"github.com/urbansim/roadshock/pkg/network"
	"github.com/urbansim/roadshock/pkg/scenario"
	"github.com/urbansim/roadshock/pkg/simulation"
	"github.com/urbansim/roadshock/pkg/validation"
	"github.com/urbansim/roadshock/pkg/visualization"
)

// VisualizeResponse carries the rendered shock footprint.
type VisualizeResponse struct {
	City          string  `json:"city"`
	Scenario      string  `json:"scenario"`
	Severity      float64 `json:"severity"`
	NRemovedEdges int     `json:"n_removed_edges"`
	ImagePNG      string  `json:"image_png_base64"`
}

// prepare validates the scenario and city, loads the network, and fetches
// hazard polygons when asked for. Scenario and city are checked before any
// graph or hazard access.
func (s *Server) prepare(ctx context.Context, w http.ResponseWriter, city, scenarioName string, useHazards bool) (*network.RoadNetwork, scenario.Scenario, []orb.Polygon, bool) {
	sc, err := scenario.Parse(scenarioName)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return nil, 0, nil, false
	}
	if !s.requireCity(w, city) {
		return nil, 0, nil, false
	}

	g, err := s.graphs.Load(ctx, city)
	if err != nil {
		s.respondDomainError(w, "load graph", err)
		return nil, 0, nil, false
	}

	var hazards []orb.Polygon
	if useHazards && sc == scenario.HighwayFlood {
		hazards, _ = s.hazards.Hazards(ctx, city)
	}
	return g, sc, hazards, true
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if !s.requirePost(w, r) {
		return
	}

	var req validation.SimulateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateSimulateRequest(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.SimulationTimeout.Std())
	defer cancel()

	g, sc, hazards, ok := s.prepare(ctx, w, req.City, req.Scenario, req.UseHazardData)
	if !ok {
		return
	}

	pairCount := req.PairCount
	if pairCount <= 0 {
		pairCount = s.cfg.DefaultPairCount
	}

	start := time.Now()
	result, err := experiment.RunSingle(ctx, g, experiment.SingleConfig{
		City:         req.City,
		Scenario:     sc,
		Severity:     req.Severity,
		PairCount:    pairCount,
		PenaltyRatio: s.cfg.PenaltyRatio,
		Hazards:      hazards,
		Seed:         defaultBaseSeed,
	})
	if err != nil {
		s.metrics.RecordSimulation(sc.String(), "error", time.Since(start), 0, 0)
		s.respondDomainError(w, "simulate", err)
		return
	}
	s.metrics.RecordSimulation(sc.String(), "ok", time.Since(start), result.NRemovedEdges, result.NPairs)

	s.persistResult(ctx, result)
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleProgressive(w http.ResponseWriter, r *http.Request) {
	if !s.requirePost(w, r) {
		return
	}

	var req validation.SweepRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateSweepRequest(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.SimulationTimeout.Std())
	defer cancel()

	g, sc, hazards, ok := s.prepare(ctx, w, req.City, req.Scenario, req.UseHazardData)
	if !ok {
		return
	}

	pairCount := req.PairCount
	if pairCount <= 0 {
		pairCount = s.cfg.DefaultPairCount
	}
	repeats := req.RepeatsPerSeverity
	if repeats <= 0 {
		repeats = s.cfg.DefaultRepeats
	}

	start := time.Now()
	table, err := experiment.RunSweep(ctx, g, experiment.SweepConfig{
		City:         req.City,
		Scenario:     sc,
		Severities:   req.Severities,
		PairCount:    pairCount,
		Repeats:      repeats,
		PenaltyRatio: s.cfg.PenaltyRatio,
		Hazards:      hazards,
		BaseSeed:     defaultBaseSeed,
	})
	if err != nil {
		s.metrics.RecordSimulation(sc.String(), "error", time.Since(start), 0, 0)
		s.respondDomainError(w, "progressive sweep", err)
		return
	}
	s.metrics.RecordSimulation(sc.String(), "ok", time.Since(start), 0, 0)
	s.metrics.SweepCellsTotal.Add(float64(len(table.Rows)))

	s.persistTable(ctx, table)
	s.respondJSON(w, http.StatusOK, table)
}

func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	if !s.requirePost(w, r) {
		return
	}

	var req validation.VisualizeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateVisualizeRequest(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.SimulationTimeout.Std())
	defer cancel()

	g, sc, hazards, ok := s.prepare(ctx, w, req.City, req.Scenario, req.UseHazardData)
	if !ok {
		return
	}

	removals, err := scenario.SelectEdges(g, scenario.Spec{
		Scenario: sc,
		Severity: req.Severity,
		Hazards:  hazards,
		Seed:     req.Seed,
	})
	if err != nil {
		s.respondDomainError(w, "select edges", err)
		return
	}

	image, err := visualization.RenderPNGBase64(g, removals, visualization.Options{})
	if err != nil {
		s.respondDomainError(w, "render", err)
		return
	}

	s.respondJSON(w, http.StatusOK, VisualizeResponse{
		City:          req.City,
		Scenario:      sc.String(),
		Severity:      req.Severity,
		NRemovedEdges: len(removals),
		ImagePNG:      image,
	})
}

// persistResult stores a single result when a database is configured.
// Persistence failures are logged, never surfaced: the simulation already
// succeeded.
func (s *Server) persistResult(ctx context.Context, result *simulation.Result) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveResult(ctx, result); err != nil {
		s.logger.Warn("failed to persist result", logging.Error(err))
	}
}

func (s *Server) persistTable(ctx context.Context, table *experiment.Table) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveTable(ctx, table); err != nil {
		s.logger.Warn("failed to persist sweep results", logging.Error(err))
	}
}
