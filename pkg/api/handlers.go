package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/http"

	"network_analysis/pkg/graph"
	"network_analysis/pkg/routing"
)

const maxBodyBytes = 1024

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	router routing.Router
	stats  StatsResponse
}

// NewHandlers creates handlers with the given router.
func NewHandlers(router routing.Router, stats StatsResponse) *Handlers {
	return &Handlers{
		router: router,
		stats:  stats,
	}
}

// NewStats describes g for the stats endpoint.
func NewStats(g *graph.Graph) StatsResponse {
	s := StatsResponse{
		NumNodes:   g.NumNodes,
		NumEdges:   g.NumEdges,
		CRS:        g.CRS,
		Attributes: []string{},
	}
	for _, a := range []graph.Attribute{graph.Length, graph.MaxSpeed, graph.Speed, graph.TravelTime} {
		if g.Column(a) != nil {
			s.Attributes = append(s.Attributes, a.String())
		}
	}
	return s
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	var req RouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validatePair(w, req.Start, req.End) {
		return
	}

	weight, err := parseWeight(req.Weight)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_weight", "weight")
		return
	}

	result, err := h.router.Route(r.Context(), toLatLng(req.Start), toLatLng(req.End), weight)
	if err != nil {
		writeRouteError(w, err)
		return
	}
	writeJSON(w, toRouteResponse(result))
}

// HandleCompare handles POST /api/v1/compare.
func (h *Handlers) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validatePair(w, req.Start, req.End) {
		return
	}

	cmp, err := h.router.Compare(r.Context(), toLatLng(req.Start), toLatLng(req.End))
	if err != nil {
		writeRouteError(w, err)
		return
	}
	writeJSON(w, CompareResponse{
		Shortest: toRouteResponse(cmp.ByLength),
		Fastest:  toRouteResponse(cmp.ByTravelTime),
	})
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.stats)
}

// decodeJSON enforces a JSON content type and a small body, and writes a
// 400 response when either check fails.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return false
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return false
	}
	return true
}

func validatePair(w http.ResponseWriter, start, end LatLngJSON) bool {
	if err := validateCoord(start); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "start")
		return false
	}
	if err := validateCoord(end); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "end")
		return false
	}
	return true
}

func validateCoord(ll LatLngJSON) error {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lng, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if ll.Lat < -90 || ll.Lat > 90 || ll.Lng < -180 || ll.Lng > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

// parseWeight accepts the two routing weights; empty means length.
func parseWeight(s string) (graph.Attribute, error) {
	if s == "" {
		return graph.Length, nil
	}
	a, err := graph.ParseAttribute(s)
	if err != nil {
		return 0, err
	}
	if a != graph.Length && a != graph.TravelTime {
		return 0, errors.New("weight must be length or travel_time")
	}
	return a, nil
}

func writeRouteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, routing.ErrNoRoute):
		writeError(w, http.StatusNotFound, "no_route_found", "")
	case errors.Is(err, routing.ErrMissingAttribute):
		writeError(w, http.StatusUnprocessableEntity, "missing_attribute", "weight")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request_timeout", "")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func toLatLng(ll LatLngJSON) routing.LatLng {
	return routing.LatLng{Lat: ll.Lat, Lng: ll.Lng}
}

func toRouteResponse(res *routing.RouteResult) RouteResponse {
	resp := RouteResponse{
		Weight:       res.Weight.String(),
		Cost:         res.Cost,
		LengthMeters: res.Length,
		NodeIDs:      make([]int64, len(res.NodeIDs)),
		Geometry:     make([]LatLngJSON, len(res.Geometry)),
	}
	if !math.IsNaN(res.TravelTime) {
		t := res.TravelTime
		resp.TravelTimeSeconds = &t
	}
	for i, id := range res.NodeIDs {
		resp.NodeIDs[i] = int64(id)
	}
	for i, ll := range res.Geometry {
		resp.Geometry[i] = LatLngJSON{Lat: ll.Lat, Lng: ll.Lng}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Field: field})
}
