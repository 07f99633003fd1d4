package routing

import (
	"context"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"

	"network_analysis/pkg/geo"
	"network_analysis/pkg/graph"
)

// LatLng represents a geographic coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// RouteResult is the output of a route query.
type RouteResult struct {
	Weight     graph.Attribute
	Nodes      []uint32
	Edges      []uint32
	NodeIDs    []osm.NodeID
	Cost       float64 // total of the Weight attribute
	Length     float64 // meters
	TravelTime float64 // seconds, NaN if any edge lacks a travel time
	Geometry   []LatLng
}

// Comparison holds the shortest-distance and fastest routes between the
// same two points.
type Comparison struct {
	ByLength     *RouteResult
	ByTravelTime *RouteResult
}

// Router is the interface for route queries.
type Router interface {
	Route(ctx context.Context, start, end LatLng, weight graph.Attribute) (*RouteResult, error)
	Compare(ctx context.Context, start, end LatLng) (*Comparison, error)
}

// Engine implements Router over an immutable graph. It is safe for
// concurrent use; every query allocates its own search state.
type Engine struct {
	g        *graph.Graph
	crs      geo.CRS
	resolver *Resolver
	opts     PathOptions
}

// NewEngine creates a routing engine for g. opts applies to every query.
func NewEngine(g *graph.Graph, opts ...PathOptions) (*Engine, error) {
	crs, err := geo.ParseCRS(g.CRS)
	if err != nil {
		return nil, fmt.Errorf("routing engine: %w", err)
	}
	e := &Engine{
		g:        g,
		crs:      crs,
		resolver: NewResolver(g),
	}
	if len(opts) > 0 {
		e.opts = opts[0]
	}
	return e, nil
}

// Graph returns the graph the engine routes over.
func (e *Engine) Graph() *graph.Graph { return e.g }

// Route computes the route between two WGS84 points minimizing weight.
func (e *Engine) Route(ctx context.Context, start, end LatLng, weight graph.Attribute) (*RouteResult, error) {
	return e.RoutePoints(ctx, e.project(start), e.project(end), weight)
}

// Compare computes both the shortest and the fastest route.
func (e *Engine) Compare(ctx context.Context, start, end LatLng) (*Comparison, error) {
	return e.ComparePoints(ctx, e.project(start), e.project(end))
}

// RoutePoints is Route for points already expressed in the graph CRS.
func (e *Engine) RoutePoints(ctx context.Context, orig, dest orb.Point, weight graph.Attribute) (*RouteResult, error) {
	source, err := e.resolver.Nearest(orig)
	if err != nil {
		return nil, err
	}
	target, err := e.resolver.Nearest(dest)
	if err != nil {
		return nil, err
	}

	path, err := ShortestPathContext(ctx, e.g, source, target, weight, e.opts)
	if err != nil {
		return nil, err
	}
	return e.summarize(weight, path), nil
}

// ComparePoints is Compare for points already expressed in the graph CRS.
func (e *Engine) ComparePoints(ctx context.Context, orig, dest orb.Point) (*Comparison, error) {
	byLength, err := e.RoutePoints(ctx, orig, dest, graph.Length)
	if err != nil {
		return nil, fmt.Errorf("shortest route: %w", err)
	}
	byTime, err := e.RoutePoints(ctx, orig, dest, graph.TravelTime)
	if err != nil {
		return nil, fmt.Errorf("fastest route: %w", err)
	}
	return &Comparison{ByLength: byLength, ByTravelTime: byTime}, nil
}

func (e *Engine) project(p LatLng) orb.Point {
	return e.crs.Project(orb.Point{p.Lng, p.Lat})
}

// summarize totals length and travel time along path and builds its geometry.
func (e *Engine) summarize(weight graph.Attribute, path *Path) *RouteResult {
	g := e.g
	res := &RouteResult{
		Weight:   weight,
		Nodes:    path.Nodes,
		Edges:    path.Edges,
		NodeIDs:  make([]osm.NodeID, len(path.Nodes)),
		Cost:     path.Weight,
		Geometry: make([]LatLng, len(path.Nodes)),
	}
	for i, u := range path.Nodes {
		res.NodeIDs[i] = g.NodeID[u]
		res.Geometry[i] = LatLng{Lat: g.NodeLat[u], Lng: g.NodeLon[u]}
	}

	for _, edge := range path.Edges {
		if l, ok := g.Weight(edge, graph.Length); ok {
			res.Length += l
		}
		t, ok := g.Weight(edge, graph.TravelTime)
		if !ok {
			res.TravelTime = math.NaN()
		}
		res.TravelTime += t
	}
	return res
}
