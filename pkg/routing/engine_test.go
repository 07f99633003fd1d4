package routing

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/paulmach/osm"

	"network_analysis/pkg/graph"
)

// detourGraph has a short slow road A-B and a long fast detour A-C-B.
//
//	A ----1000 m, 30 km/h---- B
//	 \                       /
//	  1500 m, 100 km/h      1500 m, 100 km/h
//	         \             /
//	               C
func detourGraph(t *testing.T) *graph.Graph {
	t.Helper()
	nodes := []graph.Node{
		{ID: 100, Lat: -36.85, Lon: 174.76},
		{ID: 200, Lat: -36.85, Lon: 174.77},
		{ID: 300, Lat: -36.86, Lon: 174.765},
	}
	var edges []graph.Edge
	add := func(u, v uint32, l, kph float64) {
		edges = append(edges,
			graph.Edge{From: u, To: v, Length: l, MaxSpeed: kph, Class: "primary"},
			graph.Edge{From: v, To: u, Length: l, MaxSpeed: kph, Class: "primary"})
	}
	add(0, 1, 1000, 30)
	add(0, 2, 1500, 100)
	add(2, 1, 1500, 100)

	g, err := graph.New(nodes, edges)
	if err != nil {
		t.Fatal(err)
	}
	speeds := slices.Clone(g.EdgeMaxSpeed)
	times := make([]float64, g.NumEdges)
	for e := range times {
		times[e] = g.EdgeLength[e] / (speeds[e] / 3.6)
	}
	if g, err = g.WithColumn(graph.Speed, speeds); err != nil {
		t.Fatal(err)
	}
	if g, err = g.WithColumn(graph.TravelTime, times); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestEngineCompare(t *testing.T) {
	g, err := graph.Project(detourGraph(t), "EPSG:2193")
	if err != nil {
		t.Fatal(err)
	}
	eng, err := NewEngine(g)
	if err != nil {
		t.Fatal(err)
	}

	start := LatLng{Lat: -36.8501, Lng: 174.7601}
	end := LatLng{Lat: -36.8499, Lng: 174.7699}
	cmp, err := eng.Compare(context.Background(), start, end)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	if want := []osm.NodeID{100, 200}; !slices.Equal(cmp.ByLength.NodeIDs, want) {
		t.Errorf("shortest route = %v, want %v", cmp.ByLength.NodeIDs, want)
	}
	if cmp.ByLength.Length != 1000 || cmp.ByLength.Cost != 1000 {
		t.Errorf("shortest length = %f cost = %f, want 1000", cmp.ByLength.Length, cmp.ByLength.Cost)
	}
	if math.Abs(cmp.ByLength.TravelTime-120) > 1e-9 {
		t.Errorf("shortest travel time = %f, want 120", cmp.ByLength.TravelTime)
	}

	if want := []osm.NodeID{100, 300, 200}; !slices.Equal(cmp.ByTravelTime.NodeIDs, want) {
		t.Errorf("fastest route = %v, want %v", cmp.ByTravelTime.NodeIDs, want)
	}
	if cmp.ByTravelTime.Length != 3000 {
		t.Errorf("fastest length = %f, want 3000", cmp.ByTravelTime.Length)
	}
	if math.Abs(cmp.ByTravelTime.TravelTime-108) > 1e-9 {
		t.Errorf("fastest travel time = %f, want 108", cmp.ByTravelTime.TravelTime)
	}
	if len(cmp.ByTravelTime.Geometry) != 3 || cmp.ByTravelTime.Geometry[1].Lat != -36.86 {
		t.Errorf("geometry = %v", cmp.ByTravelTime.Geometry)
	}
}

func TestEngineUnprojectedGraph(t *testing.T) {
	eng, err := NewEngine(detourGraph(t))
	if err != nil {
		t.Fatal(err)
	}
	res, err := eng.Route(context.Background(),
		LatLng{Lat: -36.85, Lng: 174.76}, LatLng{Lat: -36.86, Lng: 174.765}, graph.Length)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(res.Nodes, []uint32{0, 2}) || res.Cost != 1500 {
		t.Errorf("route = %v cost %f, want [0 2] cost 1500", res.Nodes, res.Cost)
	}
}

func TestEngineMissingTravelTime(t *testing.T) {
	nodes := []graph.Node{{ID: 1, Lat: 0, Lon: 0}, {ID: 2, Lat: 0, Lon: 0.01}}
	plain, err := graph.New(nodes, []graph.Edge{{From: 0, To: 1, Length: 5}})
	if err != nil {
		t.Fatal(err)
	}
	eng, err := NewEngine(plain)
	if err != nil {
		t.Fatal(err)
	}
	_, err = eng.Compare(context.Background(), LatLng{0, 0}, LatLng{0, 0.01})
	if !errors.Is(err, ErrMissingAttribute) {
		t.Errorf("err = %v, want ErrMissingAttribute", err)
	}

	res, err := eng.Route(context.Background(), LatLng{0, 0}, LatLng{0, 0.01}, graph.Length)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(res.TravelTime) {
		t.Errorf("travel time = %f, want NaN without a travel_time column", res.TravelTime)
	}
}
