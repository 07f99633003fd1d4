package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"network_analysis/pkg/graph"
	"network_analysis/pkg/routing"
)

func newTestServer(t *testing.T, cfg ServerConfig) *httptest.Server {
	t.Helper()
	nodes := []graph.Node{
		{ID: 101, Lat: -36.85, Lon: 174.76},
		{ID: 102, Lat: -36.86, Lon: 174.77},
	}
	edges := []graph.Edge{
		{From: 0, To: 1, Length: 1400, MaxSpeed: 50, Class: "primary"},
		{From: 1, To: 0, Length: 1400, MaxSpeed: 50, Class: "primary"},
	}
	g, err := graph.New(nodes, edges)
	if err != nil {
		t.Fatal(err)
	}
	eng, err := routing.NewEngine(g)
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(NewHandler(cfg, NewHandlers(eng, NewStats(g))))
	t.Cleanup(srv.Close)
	return srv
}

func TestServerRouteEndToEnd(t *testing.T) {
	srv := newTestServer(t, DefaultConfig(":0"))

	resp, err := http.Post(srv.URL+"/api/v1/route", "application/json", strings.NewReader(validBody))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	var body RouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.LengthMeters != 1400 || len(body.NodeIDs) != 2 {
		t.Errorf("body = %+v", body)
	}
	if body.TravelTimeSeconds != nil {
		t.Errorf("travel time = %v, want null on an unannotated graph", *body.TravelTimeSeconds)
	}
}

func TestServerCompareWithoutTravelTimes(t *testing.T) {
	srv := newTestServer(t, DefaultConfig(":0"))

	resp, err := http.Post(srv.URL+"/api/v1/compare", "application/json", strings.NewReader(validBody))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
}

func TestServerMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, DefaultConfig(":0"))

	resp, err := http.Get(srv.URL + "/api/v1/route")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestServerCORS(t *testing.T) {
	cfg := DefaultConfig(":0")
	cfg.CORSOrigin = "https://maps.example.org"
	srv := newTestServer(t, cfg)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/route", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != cfg.CORSOrigin {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestServerStats(t *testing.T) {
	srv := newTestServer(t, DefaultConfig(":0"))

	resp, err := http.Get(srv.URL + "/api/v1/stats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var stats StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.NumNodes != 2 || stats.NumEdges != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestMiddlewareRejectsWhenSaturated(t *testing.T) {
	sem := make(chan struct{}, 1)
	sem <- struct{}{}
	h := withMiddleware(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}, sem, DefaultConfig(":0"))

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("GET", "/api/v1/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
	if w.Header().Get("Retry-After") != "1" {
		t.Error("missing Retry-After")
	}
}

func TestMiddlewareRecoversPanic(t *testing.T) {
	h := withMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}, make(chan struct{}, 1), DefaultConfig(":0"))

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("GET", "/api/v1/health", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
