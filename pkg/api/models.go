package api

// RouteRequest is the JSON body for POST /api/v1/route.
type RouteRequest struct {
	Start  LatLngJSON `json:"start"`
	End    LatLngJSON `json:"end"`
	Weight string     `json:"weight,omitempty"` // "length" (default) or "travel_time"
}

// CompareRequest is the JSON body for POST /api/v1/compare.
type CompareRequest struct {
	Start LatLngJSON `json:"start"`
	End   LatLngJSON `json:"end"`
}

// LatLngJSON represents a lat/lng pair in JSON.
type LatLngJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RouteResponse is the JSON response for a successful route query.
type RouteResponse struct {
	Weight            string       `json:"weight"`
	Cost              float64      `json:"cost"`
	LengthMeters      float64      `json:"length_meters"`
	TravelTimeSeconds *float64     `json:"travel_time_seconds"` // null when the graph has no travel times
	NodeIDs           []int64      `json:"osm_node_ids"`
	Geometry          []LatLngJSON `json:"geometry"`
}

// CompareResponse is the JSON response for POST /api/v1/compare.
type CompareResponse struct {
	Shortest RouteResponse `json:"shortest"`
	Fastest  RouteResponse `json:"fastest"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumNodes   uint32   `json:"num_nodes"`
	NumEdges   uint32   `json:"num_edges"`
	CRS        string   `json:"crs"`
	Attributes []string `json:"attributes"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
