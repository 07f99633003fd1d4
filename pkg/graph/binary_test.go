package graph_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/osm"

	"network_analysis/pkg/graph"
	osmparser "network_analysis/pkg/osm"
)

func buildTestGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.Build(&osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 10, ToNodeID: 20, LengthMeters: 100, Highway: "primary", MaxSpeed: 50},
			{FromNodeID: 20, ToNodeID: 10, LengthMeters: 100, Highway: "primary", MaxSpeed: 50},
			{FromNodeID: 20, ToNodeID: 30, LengthMeters: 200, Highway: "residential", MaxSpeed: math.NaN()},
			{FromNodeID: 30, ToNodeID: 20, LengthMeters: 200, Highway: "residential", MaxSpeed: math.NaN()},
			{FromNodeID: 10, ToNodeID: 40, LengthMeters: 300, Highway: "service", MaxSpeed: math.NaN()},
		},
		NodeLat: map[osm.NodeID]float64{10: -36.80, 20: -36.81, 30: -36.82, 40: -36.83},
		NodeLon: map[osm.NodeID]float64{10: 174.70, 20: 174.71, 30: 174.72, 40: 174.73},
	})
	g, err := graph.Project(g, "EPSG:2193")
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	return g
}

func TestBinaryRoundTrip(t *testing.T) {
	original := buildTestGraph(t)
	original, err := original.WithColumn(graph.TravelTime, []float64{7.2, 7.2, 14.4, math.NaN(), 21.6})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "test.graph.bin")
	if err := graph.WriteBinary(path, original); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}

	loaded, err := graph.ReadBinary(path)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}

	if loaded.NumNodes != original.NumNodes || loaded.NumEdges != original.NumEdges {
		t.Fatalf("sizes: got %d/%d, want %d/%d", loaded.NumNodes, loaded.NumEdges, original.NumNodes, original.NumEdges)
	}
	if loaded.CRS != "EPSG:2193" {
		t.Errorf("CRS = %q, want EPSG:2193", loaded.CRS)
	}

	for i := uint32(0); i < original.NumNodes; i++ {
		if loaded.NodeID[i] != original.NodeID[i] {
			t.Errorf("NodeID[%d]: got %d, want %d", i, loaded.NodeID[i], original.NodeID[i])
		}
		if loaded.NodeX[i] != original.NodeX[i] || loaded.NodeY[i] != original.NodeY[i] {
			t.Errorf("NodeXY[%d]: got (%f,%f), want (%f,%f)", i, loaded.NodeX[i], loaded.NodeY[i], original.NodeX[i], original.NodeY[i])
		}
	}

	for e := uint32(0); e < original.NumEdges; e++ {
		if loaded.Head[e] != original.Head[e] {
			t.Errorf("Head[%d]: got %d, want %d", e, loaded.Head[e], original.Head[e])
		}
		if loaded.EdgeLength[e] != original.EdgeLength[e] {
			t.Errorf("EdgeLength[%d]: got %f, want %f", e, loaded.EdgeLength[e], original.EdgeLength[e])
		}
		if loaded.Class(e) != original.Class(e) {
			t.Errorf("Class(%d): got %q, want %q", e, loaded.Class(e), original.Class(e))
		}
		lv, lok := loaded.Weight(e, graph.TravelTime)
		ov, ook := original.Weight(e, graph.TravelTime)
		if lok != ook || (ook && lv != ov) {
			t.Errorf("TravelTime[%d]: got %f/%v, want %f/%v", e, lv, lok, ov, ook)
		}
	}

	if loaded.EdgeSpeed != nil {
		t.Errorf("EdgeSpeed should be absent, got len=%d", len(loaded.EdgeSpeed))
	}
}

func TestBinaryUnprojected(t *testing.T) {
	g, err := graph.New(
		[]graph.Node{{ID: 1, Lat: 1.3, Lon: 103.8}, {ID: 2, Lat: 1.31, Lon: 103.81}},
		[]graph.Edge{{From: 0, To: 1, Length: 1500, MaxSpeed: math.NaN(), Class: "trunk"}},
	)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "unprojected.bin")
	if err := graph.WriteBinary(path, g); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	loaded, err := graph.ReadBinary(path)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}
	if loaded.IsProjected() {
		t.Error("loaded graph should be unprojected")
	}
	if loaded.NodeX[1] != 103.81 || loaded.NodeY[1] != 1.31 {
		t.Errorf("NodeXY[1] = (%f,%f), want lon/lat", loaded.NodeX[1], loaded.NodeY[1])
	}
}

func TestBinaryInvalidMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.graph.bin")
	os.WriteFile(path, []byte("NOT_A_NETGRAPH_HEADER_BLAH_BLAH_BLAH_MORE_DATA"), 0644)

	if _, err := graph.ReadBinary(path); err == nil {
		t.Fatal("expected error for invalid magic bytes")
	}
}

func TestBinaryTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truncated.graph.bin")
	os.WriteFile(path, []byte("NETGRAPH"), 0644)

	if _, err := graph.ReadBinary(path); err == nil {
		t.Fatal("expected error for truncated file")
	}
}

func TestBinaryCorruptedPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.graph.bin")
	if err := graph.WriteBinary(path, buildTestGraph(t)); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data[len(data)/2] ^= 0xFF
	os.WriteFile(path, data, 0644)

	if _, err := graph.ReadBinary(path); err == nil {
		t.Fatal("expected error for corrupted payload")
	}
}
