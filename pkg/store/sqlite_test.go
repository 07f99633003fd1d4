package store

import (
	"math"
	"path/filepath"
	"testing"

	"network_analysis/pkg/graph"
)

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	nan := math.NaN()
	g, err := graph.New(
		[]graph.Node{
			{ID: 101, Lat: -36.80, Lon: 174.70},
			{ID: 102, Lat: -36.81, Lon: 174.71},
			{ID: 103, Lat: -36.82, Lon: 174.72},
		},
		[]graph.Edge{
			{From: 0, To: 1, Length: 1400, MaxSpeed: 50, Class: "primary"},
			{From: 1, To: 0, Length: 1400, MaxSpeed: 50, Class: "primary"},
			{From: 1, To: 2, Length: 1450.5, MaxSpeed: nan, Class: "residential"},
			{From: 1, To: 2, Length: 1600, MaxSpeed: nan, Class: "service"},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	if g, err = g.WithColumn(graph.Speed, []float64{50, 50, 30, nan}); err != nil {
		t.Fatal(err)
	}
	if g, err = g.WithColumn(graph.TravelTime, []float64{100.8, 100.8, 174.06, nan}); err != nil {
		t.Fatal(err)
	}
	if g, err = graph.Project(g, "EPSG:2193"); err != nil {
		t.Fatal(err)
	}
	return g
}

func sameFloat(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	original := testGraph(t)
	path := filepath.Join(t.TempDir(), "graph.db")

	if err := Save(path, original); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.NumNodes != original.NumNodes || loaded.NumEdges != original.NumEdges {
		t.Fatalf("sizes: got %d/%d, want %d/%d", loaded.NumNodes, loaded.NumEdges, original.NumNodes, original.NumEdges)
	}
	if loaded.CRS != original.CRS {
		t.Errorf("CRS = %q, want %q", loaded.CRS, original.CRS)
	}
	for u := uint32(0); u < original.NumNodes; u++ {
		if loaded.NodeID[u] != original.NodeID[u] || loaded.NodeX[u] != original.NodeX[u] || loaded.NodeY[u] != original.NodeY[u] {
			t.Errorf("node %d differs", u)
		}
	}
	for i := range original.FirstOut {
		if loaded.FirstOut[i] != original.FirstOut[i] {
			t.Errorf("FirstOut[%d] = %d, want %d", i, loaded.FirstOut[i], original.FirstOut[i])
		}
	}
	for e := uint32(0); e < original.NumEdges; e++ {
		if loaded.Head[e] != original.Head[e] || loaded.Class(e) != original.Class(e) {
			t.Errorf("edge %d topology differs", e)
		}
		for _, attr := range []graph.Attribute{graph.Length, graph.MaxSpeed, graph.Speed, graph.TravelTime} {
			if got, want := loaded.Column(attr)[e], original.Column(attr)[e]; !sameFloat(got, want) {
				t.Errorf("edge %d %s = %f, want %f", e, attr, got, want)
			}
		}
	}
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.db")
	if err := Save(path, testGraph(t)); err != nil {
		t.Fatal(err)
	}

	small, err := graph.New([]graph.Node{{ID: 1}, {ID: 2}}, []graph.Edge{{From: 0, To: 1, Length: 3}})
	if err != nil {
		t.Fatal(err)
	}
	if err := Save(path, small); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.NumNodes != 2 || loaded.NumEdges != 1 {
		t.Errorf("got %d nodes %d edges, want 2 and 1", loaded.NumNodes, loaded.NumEdges)
	}
	if loaded.EdgeSpeed != nil || loaded.EdgeTravelTime != nil {
		t.Error("unannotated graph should load without speed columns")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadGraphByExtension(t *testing.T) {
	dir := t.TempDir()
	g := testGraph(t)

	dbPath := filepath.Join(dir, "akl.sqlite")
	if err := Save(dbPath, g); err != nil {
		t.Fatal(err)
	}
	binPath := filepath.Join(dir, "akl.bin")
	if err := graph.WriteBinary(binPath, g); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{dbPath, binPath} {
		loaded, err := LoadGraph(path)
		if err != nil {
			t.Fatalf("LoadGraph(%s): %v", path, err)
		}
		if loaded.NumEdges != g.NumEdges || loaded.CRS != g.CRS {
			t.Errorf("LoadGraph(%s): %d edges in %s", path, loaded.NumEdges, loaded.CRS)
		}
	}
}
