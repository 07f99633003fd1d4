package routing

import (
	"context"
	"fmt"
	"math"

	"network_analysis/pkg/graph"
)

const noNode = math.MaxUint32

// PathOptions controls how missing edge weights are treated.
type PathOptions struct {
	// DefaultWeight replaces a missing value when UseDefault is set.
	DefaultWeight float64
	UseDefault    bool
}

// Path is a shortest path between two node indices.
type Path struct {
	Nodes  []uint32 // source to target inclusive
	Edges  []uint32 // len(Nodes)-1 edge indices
	Weight float64
}

// ShortestPath returns the minimum-weight path from source to target using
// attribute attr as edge weight.
func ShortestPath(g *graph.Graph, source, target uint32, attr graph.Attribute, opts ...PathOptions) (*Path, error) {
	return ShortestPathContext(context.Background(), g, source, target, attr, opts...)
}

// ShortestPathContext is ShortestPath with cancellation. The context is
// checked every 100 settled nodes.
func ShortestPathContext(ctx context.Context, g *graph.Graph, source, target uint32, attr graph.Attribute, opts ...PathOptions) (*Path, error) {
	var opt PathOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	weight, err := weightFunc(g, attr, opt)
	if err != nil {
		return nil, err
	}
	return search(ctx, g, source, target, weight)
}

// weightFunc validates the attr column and returns a lookup over it.
// Validation covers every edge so a query fails the same way no matter
// which part of the graph it explores.
func weightFunc(g *graph.Graph, attr graph.Attribute, opt PathOptions) (func(e uint32) float64, error) {
	if opt.UseDefault && (opt.DefaultWeight < 0 || math.IsNaN(opt.DefaultWeight)) {
		return nil, fmt.Errorf("%w: default %f", ErrNegativeWeight, opt.DefaultWeight)
	}

	col := g.Column(attr)
	if col == nil {
		if !opt.UseDefault {
			return nil, &MissingAttributeError{Attr: attr, Edge: -1}
		}
		d := opt.DefaultWeight
		return func(uint32) float64 { return d }, nil
	}

	hasMissing := false
	for e, v := range col {
		switch {
		case math.IsNaN(v):
			if !opt.UseDefault {
				return nil, &MissingAttributeError{Attr: attr, Edge: int64(e)}
			}
			hasMissing = true
		case v < 0:
			return nil, fmt.Errorf("%w: edge %d has %s %f", ErrNegativeWeight, e, attr, v)
		}
	}

	if !hasMissing {
		return func(e uint32) float64 { return col[e] }, nil
	}
	d := opt.DefaultWeight
	return func(e uint32) float64 {
		if v := col[e]; !math.IsNaN(v) {
			return v
		}
		return d
	}, nil
}

// search runs Dijkstra from source until target is settled. A tentative
// distance is only replaced on strict improvement, so among equal-weight
// paths the one through the predecessor settled first is kept, and among
// parallel edges the lowest edge index of minimum weight.
func search(ctx context.Context, g *graph.Graph, source, target uint32, weight func(e uint32) float64) (*Path, error) {
	if g.NumNodes == 0 {
		return nil, ErrEmptyGraph
	}
	if source >= g.NumNodes {
		return nil, fmt.Errorf("%w: source %d", ErrNodeNotFound, source)
	}
	if target >= g.NumNodes {
		return nil, fmt.Errorf("%w: target %d", ErrNodeNotFound, target)
	}
	if source == target {
		return &Path{Nodes: []uint32{source}, Edges: []uint32{}}, nil
	}

	n := g.NumNodes
	dist := make([]float64, n)
	predNode := make([]uint32, n)
	predEdge := make([]uint32, n)
	settled := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		predNode[i] = noNode
	}

	var pq MinHeap
	dist[source] = 0
	pq.Push(source, 0)

	iterations := 0
	for pq.Len() > 0 {
		// Check context cancellation periodically.
		iterations++
		if iterations%100 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		item := pq.Pop()
		u := item.Node
		if settled[u] {
			continue // stale entry
		}
		settled[u] = true
		if u == target {
			break
		}

		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			if settled[v] {
				continue
			}
			nd := item.Dist + weight(e)
			if nd < dist[v] {
				dist[v] = nd
				predNode[v] = u
				predEdge[v] = e
				pq.Push(v, nd)
			}
		}
	}

	if !settled[target] {
		return nil, fmt.Errorf("%w: %d -> %d", ErrNoRoute, source, target)
	}
	return buildPath(source, target, dist[target], predNode, predEdge), nil
}

// buildPath walks predecessors back from target.
func buildPath(source, target uint32, total float64, predNode, predEdge []uint32) *Path {
	var nodes, edges []uint32
	for v := target; v != source; v = predNode[v] {
		nodes = append(nodes, v)
		edges = append(edges, predEdge[v])
	}
	nodes = append(nodes, source)

	// Reverse to get source → target.
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}
	return &Path{Nodes: nodes, Edges: edges, Weight: total}
}
