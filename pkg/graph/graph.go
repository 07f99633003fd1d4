package graph

import (
	"fmt"
	"math"

	"github.com/paulmach/osm"
)

// Attribute names a numeric per-edge column usable as a routing weight.
type Attribute uint8

const (
	Length     Attribute = iota // meters
	Speed                       // km/h
	TravelTime                  // seconds
	MaxSpeed                    // km/h as tagged, before imputation
)

var attributeNames = [...]string{
	Length:     "length",
	Speed:      "speed_kph",
	TravelTime: "travel_time",
	MaxSpeed:   "maxspeed",
}

func (a Attribute) String() string {
	if int(a) < len(attributeNames) {
		return attributeNames[a]
	}
	return fmt.Sprintf("Attribute(%d)", a)
}

// ParseAttribute resolves an attribute by name.
func ParseAttribute(s string) (Attribute, error) {
	for i, name := range attributeNames {
		if name == s {
			return Attribute(i), nil
		}
	}
	return 0, fmt.Errorf("unknown edge attribute %q", s)
}

// Graph is a directed road multigraph in CSR (Compressed Sparse Row) format.
// A Graph is never mutated after construction; transforms return a new
// Graph that may share unchanged columns with the old one.
type Graph struct {
	NumNodes uint32
	NumEdges uint32
	FirstOut []uint32 // len: NumNodes + 1; FirstOut[i]..FirstOut[i+1] are edges from node i
	Head     []uint32 // len: NumEdges; target node for each edge

	NodeID  []osm.NodeID // len: NumNodes
	NodeLat []float64    // len: NumNodes
	NodeLon []float64    // len: NumNodes

	// Planar coordinates in CRS. Equal to lon/lat while unprojected.
	CRS   string
	NodeX []float64
	NodeY []float64

	// Edge columns, len NumEdges. NaN marks a missing value; a nil column
	// has not been computed.
	EdgeLength     []float64
	EdgeMaxSpeed   []float64
	EdgeSpeed      []float64
	EdgeTravelTime []float64

	// Highway class of each edge, as an index into Classes.
	EdgeClass []uint16
	Classes   []string
}

// EdgesFrom returns the range of edge indices for edges originating from node u.
func (g *Graph) EdgesFrom(u uint32) (start, end uint32) {
	return g.FirstOut[u], g.FirstOut[u+1]
}

// Column returns the values of attribute a, or nil if it was never computed.
func (g *Graph) Column(a Attribute) []float64 {
	switch a {
	case Length:
		return g.EdgeLength
	case Speed:
		return g.EdgeSpeed
	case TravelTime:
		return g.EdgeTravelTime
	case MaxSpeed:
		return g.EdgeMaxSpeed
	}
	return nil
}

// Weight returns the value of attribute a on edge e and whether it is set.
func (g *Graph) Weight(e uint32, a Attribute) (float64, bool) {
	col := g.Column(a)
	if col == nil {
		return 0, false
	}
	v := col[e]
	return v, !math.IsNaN(v)
}

// Class returns the highway class of edge e.
func (g *Graph) Class(e uint32) string {
	if g.EdgeClass == nil {
		return ""
	}
	return g.Classes[g.EdgeClass[e]]
}

// Source returns the source node of edge e by binary search over FirstOut.
func (g *Graph) Source(e uint32) uint32 {
	lo, hi := uint32(0), g.NumNodes
	for lo < hi {
		mid := (lo + hi) / 2
		if g.FirstOut[mid+1] <= e {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// with returns a shallow copy of g for building a transformed graph.
func (g *Graph) with() *Graph {
	c := *g
	return &c
}

// WithColumn returns a copy of g with attribute a replaced by values.
func (g *Graph) WithColumn(a Attribute, values []float64) (*Graph, error) {
	if uint32(len(values)) != g.NumEdges {
		return nil, fmt.Errorf("column %s has %d values, graph has %d edges", a, len(values), g.NumEdges)
	}
	c := g.with()
	switch a {
	case Length:
		c.EdgeLength = values
	case Speed:
		c.EdgeSpeed = values
	case TravelTime:
		c.EdgeTravelTime = values
	case MaxSpeed:
		c.EdgeMaxSpeed = values
	default:
		return nil, fmt.Errorf("unknown attribute %s", a)
	}
	return c, nil
}
