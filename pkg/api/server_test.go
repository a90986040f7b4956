package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/urbansim/roadshock/pkg/cache"
	"github.com/urbansim/roadshock/pkg/config"
	"github.com/urbansim/roadshock/pkg/experiment"
	"github.com/urbansim/roadshock/pkg/loader"
	"github.com/urbansim/roadshock/pkg/logging"
	"github.com/urbansim/roadshock/pkg/metrics"
	"github.com/urbansim/roadshock/pkg/network"
	"github.com/urbansim/roadshock/pkg/simulation"
)

const testCity = "Testville, USA"

// buildTestNetwork is a bidirectional 6-node ring: every node can reach
// every other, so OD sampling always succeeds.
func buildTestNetwork(t *testing.T) *network.RoadNetwork {
	t.Helper()
	g := network.New(testCity)
	const n = 6
	for i := 1; i <= n; i++ {
		g.AddNode(network.NodeID(i), 0.01*float64(i), 0.005*float64(i))
	}
	for i := 1; i <= n; i++ {
		u := network.NodeID(i)
		v := network.NodeID(i%n + 1)
		for _, pair := range [][2]network.NodeID{{u, v}, {v, u}} {
			from, _ := g.Node(pair[0])
			to, _ := g.Node(pair[1])
			_, err := g.AddEdge(network.Edge{
				From:       pair[0],
				To:         pair[1],
				Key:        -1,
				Highway:    []string{"residential"},
				Geometry:   orb.LineString{from.Point(), to.Point()},
				Length:     1000,
				SpeedKPH:   30,
				TravelTime: 120,
			})
			if err != nil {
				t.Fatalf("AddEdge: %v", err)
			}
		}
	}
	return g
}

// newTestHandler wires a server whose graph cache is pre-seeded, so no
// network access happens during requests.
func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	handler, _ := newTestHandlerWithMetrics(t)
	return handler
}

func newTestHandlerWithMetrics(t *testing.T) (http.Handler, *metrics.Registry) {
	t.Helper()

	cfg := config.Default()
	cfg.Cities = []string{testCity}
	cfg.DefaultPairCount = 5
	cfg.DefaultRepeats = 2
	cfg.GraphCacheDir = t.TempDir()
	cfg.HazardCacheDir = t.TempDir()
	cfg.SimulationTimeout = config.Duration(time.Minute)

	graphStore, err := cache.New(cfg.GraphCacheDir)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	data, err := buildTestNetwork(t).MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if err := graphStore.Put(cache.SanitizeKey(testCity), data); err != nil {
		t.Fatalf("Put: %v", err)
	}

	hazardStore, err := cache.New(cfg.HazardCacheDir)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}

	logger := logging.NewJSONLogger(io.Discard, logging.ErrorLevel)
	reg := metrics.NewRegistry()
	geocoder := loader.NewGeocoder("http://invalid.localhost", nil)
	graphs := loader.NewGraphProvider(graphStore, geocoder, "http://invalid.localhost", nil, logger, reg)
	hazards := loader.NewHazardProvider(hazardStore, geocoder, "http://invalid.localhost", "fld_haz_ar", nil, logger, reg)

	srv := NewServer(cfg, graphs, hazards, nil, logger, reg)
	return srv.Handler(), reg
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v\n%s", err, rec.Body.String())
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	handler := newTestHandler(t)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		rec := doJSON(t, handler, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200\n%s", path, rec.Code, rec.Body.String())
		}
		resp := decodeBody[HealthResponse](t, rec)
		if resp.Status != "healthy" {
			t.Errorf("GET %s status = %q", path, resp.Status)
		}
	}
}

func TestCitiesEndpoint(t *testing.T) {
	rec := doJSON(t, newTestHandler(t), http.MethodGet, "/cities", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody[CitiesResponse](t, rec)
	if len(resp.Cities) != 1 || resp.Cities[0] != testCity {
		t.Errorf("cities = %v", resp.Cities)
	}
}

func TestScenariosEndpoint(t *testing.T) {
	rec := doJSON(t, newTestHandler(t), http.MethodGet, "/scenarios", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeBody[ScenariosResponse](t, rec)
	if len(resp.Scenarios) != 5 {
		t.Errorf("got %d scenarios, want 5: %v", len(resp.Scenarios), resp.Scenarios)
	}
}

func TestSimulateEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	rec := doJSON(t, handler, http.MethodPost, "/simulate", map[string]any{
		"city":     testCity,
		"scenario": "Random Failure",
		"severity": 0.25,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\n%s", rec.Code, rec.Body.String())
	}

	result := decodeBody[simulation.Result](t, rec)
	if result.City != testCity {
		t.Errorf("city = %q", result.City)
	}
	if result.Scenario != "Random Failure" {
		t.Errorf("scenario = %q", result.Scenario)
	}
	// ceil(0.25 * 12 edges) = 3.
	if result.NRemovedEdges != 3 {
		t.Errorf("n_removed_edges = %d, want 3", result.NRemovedEdges)
	}
	if result.NPairs < 1 || result.NPairs > 5 {
		t.Errorf("n_pairs = %d, want 1..5", result.NPairs)
	}
}

func TestSimulateIsDeterministic(t *testing.T) {
	handler := newTestHandler(t)
	body := map[string]any{
		"city":     testCity,
		"scenario": "Random Failure",
		"severity": 0.25,
	}

	first := decodeBody[simulation.Result](t, doJSON(t, handler, http.MethodPost, "/simulate", body))
	second := decodeBody[simulation.Result](t, doJSON(t, handler, http.MethodPost, "/simulate", body))
	if first != second {
		t.Errorf("results differ across identical requests:\n%+v\n%+v", first, second)
	}
}

func TestSimulateRejectsBadRequests(t *testing.T) {
	handler := newTestHandler(t)

	cases := []struct {
		name string
		body map[string]any
		want int
	}{
		{"missing city", map[string]any{"scenario": "Random Failure", "severity": 0.1}, http.StatusBadRequest},
		{"severity out of range", map[string]any{"city": testCity, "scenario": "Random Failure", "severity": 2.0}, http.StatusBadRequest},
		{"unknown scenario", map[string]any{"city": testCity, "scenario": "Meteor Strike", "severity": 0.1}, http.StatusBadRequest},
		{"unsupported city", map[string]any{"city": "Atlantis", "scenario": "Random Failure", "severity": 0.1}, http.StatusBadRequest},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodPost, "/simulate", c.body)
			if rec.Code != c.want {
				t.Errorf("status = %d, want %d\n%s", rec.Code, c.want, rec.Body.String())
			}
			resp := decodeBody[ErrorResponse](t, rec)
			if resp.Error == "" {
				t.Error("error body is empty")
			}
		})
	}
}

func TestSimulateRejectsMalformedJSON(t *testing.T) {
	handler := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/simulate", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSimulateRejectsGet(t *testing.T) {
	rec := doJSON(t, newTestHandler(t), http.MethodGet, "/simulate", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestProgressiveEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	rec := doJSON(t, handler, http.MethodPost, "/progressive", map[string]any{
		"city":                 testCity,
		"scenario":             "Random Failure",
		"severities":           []float64{0.1, 0.2},
		"repeats_per_severity": 2,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\n%s", rec.Code, rec.Body.String())
	}

	table := decodeBody[experiment.Table](t, rec)
	if table.RunID == "" {
		t.Error("run_id is empty")
	}
	if len(table.Rows) != 4 {
		t.Errorf("got %d rows, want 4", len(table.Rows))
	}
}

func TestProgressiveCountsSweepCells(t *testing.T) {
	handler, reg := newTestHandlerWithMetrics(t)
	rec := doJSON(t, handler, http.MethodPost, "/progressive", map[string]any{
		"city":                 testCity,
		"scenario":             "Random Failure",
		"severities":           []float64{0.1, 0.2},
		"repeats_per_severity": 2,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\n%s", rec.Code, rec.Body.String())
	}

	// Scrape the registry directly rather than through the middleware chain,
	// which would count the scrape itself as an in-flight request.
	scrape := httptest.NewRecorder()
	reg.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := scrape.Body.String()
	if !strings.Contains(body, "roadshock_sweep_cells_total 4") {
		t.Errorf("sweep cell counter not incremented per row:\n%s", body)
	}
	if !strings.Contains(body, "roadshock_http_requests_in_flight 0") {
		t.Errorf("in-flight gauge did not return to zero:\n%s", body)
	}
}

func TestVisualizeEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	rec := doJSON(t, handler, http.MethodPost, "/visualize", map[string]any{
		"city":     testCity,
		"scenario": "Random Failure",
		"severity": 0.25,
		"seed":     7,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\n%s", rec.Code, rec.Body.String())
	}

	resp := decodeBody[VisualizeResponse](t, rec)
	if resp.NRemovedEdges != 3 {
		t.Errorf("n_removed_edges = %d, want 3", resp.NRemovedEdges)
	}
	if resp.ImagePNG == "" {
		t.Error("image payload is empty")
	}
}

func TestGraphFailureMapsToBadGateway(t *testing.T) {
	// No cache entry for the city and no reachable Overpass endpoint, so
	// the graph load fails.
	cfg := config.Default()
	cfg.Cities = []string{testCity}
	cfg.GraphCacheDir = t.TempDir()
	cfg.HazardCacheDir = t.TempDir()
	cfg.SimulationTimeout = config.Duration(10 * time.Second)

	graphStore, err := cache.New(cfg.GraphCacheDir)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	hazardStore, err := cache.New(cfg.HazardCacheDir)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}

	logger := logging.NewJSONLogger(io.Discard, logging.ErrorLevel)
	geocoder := loader.NewGeocoder("http://127.0.0.1:1", &http.Client{Timeout: time.Second})
	graphs := loader.NewGraphProvider(graphStore, geocoder, "http://127.0.0.1:1", &http.Client{Timeout: time.Second}, logger, nil)
	hazards := loader.NewHazardProvider(hazardStore, geocoder, "http://127.0.0.1:1", "fld_haz_ar", nil, logger, nil)

	handler := NewServer(cfg, graphs, hazards, nil, logger, metrics.NewRegistry()).Handler()
	rec := doJSON(t, handler, http.MethodPost, "/simulate", map[string]any{
		"city":     testCity,
		"scenario": "Random Failure",
		"severity": 0.1,
	})
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502\n%s", rec.Code, rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	rec := doJSON(t, newTestHandler(t), http.MethodOptions, "/simulate", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestOversizedBodyRejected(t *testing.T) {
	handler := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/simulate", bytes.NewReader(make([]byte, maxRequestBody+1)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestMetricsEndpointServes(t *testing.T) {
	rec := doJSON(t, newTestHandler(t), http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "roadshock_") {
		t.Error("scrape body missing service metrics")
	}
}
