package graph

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/osm"

	"network_analysis/pkg/geo"
	osmparser "network_analysis/pkg/osm"
)

// Node is an intersection or way endpoint in WGS84.
type Node struct {
	ID  osm.NodeID
	Lat float64
	Lon float64
}

// Edge is a directed road segment between two node indices.
type Edge struct {
	From, To uint32
	Length   float64 // meters
	MaxSpeed float64 // km/h, NaN if untagged
	Class    string  // highway tag
}

// Build creates a CSR Graph from parsed OSM edges. Node indices follow the
// order in which nodes first appear in result.Edges.
func Build(result *osmparser.ParseResult) *Graph {
	// Step 1: Collect all unique node IDs and build a compact mapping.
	nodeSet := make(map[osm.NodeID]uint32)
	var nodes []Node

	addNode := func(id osm.NodeID) uint32 {
		if idx, ok := nodeSet[id]; ok {
			return idx
		}
		idx := uint32(len(nodes))
		nodeSet[id] = idx
		nodes = append(nodes, Node{ID: id, Lat: result.NodeLat[id], Lon: result.NodeLon[id]})
		return idx
	}

	// Step 2: Build compact edge list with remapped indices.
	edges := make([]Edge, len(result.Edges))
	for i, e := range result.Edges {
		edges[i] = Edge{
			From:     addNode(e.FromNodeID),
			To:       addNode(e.ToNodeID),
			Length:   e.LengthMeters,
			MaxSpeed: e.MaxSpeed,
			Class:    e.Highway,
		}
	}

	return assemble(nodes, edges)
}

// New creates a Graph from explicit nodes and edges. Edges are stored
// grouped by source; parallel edges keep their relative input order.
func New(nodes []Node, edges []Edge) (*Graph, error) {
	n := uint32(len(nodes))
	for i, e := range edges {
		if e.From >= n || e.To >= n {
			return nil, fmt.Errorf("edge %d (%d->%d) references a node outside [0,%d)", i, e.From, e.To, n)
		}
		if e.Length < 0 || math.IsNaN(e.Length) {
			return nil, fmt.Errorf("edge %d has invalid length %f", i, e.Length)
		}
	}
	return assemble(nodes, edges), nil
}

func assemble(nodes []Node, edges []Edge) *Graph {
	numNodes := uint32(len(nodes))
	numEdges := uint32(len(edges))

	// Step 3: Sort edges by source node, then target. Stable so parallel
	// edges keep a reproducible order.
	sorted := make([]Edge, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].From != sorted[j].From {
			return sorted[i].From < sorted[j].From
		}
		return sorted[i].To < sorted[j].To
	})

	// Step 4: Build CSR arrays.
	firstOut := make([]uint32, numNodes+1)
	head := make([]uint32, numEdges)
	length := make([]float64, numEdges)
	maxSpeed := make([]float64, numEdges)
	class := make([]uint16, numEdges)

	classIdx := make(map[string]uint16)
	var classes []string

	for i, e := range sorted {
		head[i] = e.To
		length[i] = e.Length
		maxSpeed[i] = e.MaxSpeed

		idx, ok := classIdx[e.Class]
		if !ok {
			idx = uint16(len(classes))
			classIdx[e.Class] = idx
			classes = append(classes, e.Class)
		}
		class[i] = idx
	}

	// Build FirstOut via counting.
	for _, e := range sorted {
		firstOut[e.From+1]++
	}
	// Prefix sum.
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	// Step 5: Populate node coordinates.
	nodeID := make([]osm.NodeID, numNodes)
	nodeLat := make([]float64, numNodes)
	nodeLon := make([]float64, numNodes)
	for i, nd := range nodes {
		nodeID[i] = nd.ID
		nodeLat[i] = nd.Lat
		nodeLon[i] = nd.Lon
	}

	return &Graph{
		NumNodes:     numNodes,
		NumEdges:     numEdges,
		FirstOut:     firstOut,
		Head:         head,
		NodeID:       nodeID,
		NodeLat:      nodeLat,
		NodeLon:      nodeLon,
		CRS:          geo.WGS84,
		NodeX:        nodeLon,
		NodeY:        nodeLat,
		EdgeLength:   length,
		EdgeMaxSpeed: maxSpeed,
		EdgeClass:    class,
		Classes:      classes,
	}
}
