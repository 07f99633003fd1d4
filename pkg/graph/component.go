package graph

import "github.com/paulmach/osm"

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := uint32(0); i < n; i++ {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// LargestComponent returns, in ascending order, the node indices of the
// largest weakly connected component. Equal-sized components resolve to
// the one containing the lowest node index.
func LargestComponent(g *Graph) []uint32 {
	if g.NumNodes == 0 {
		return nil
	}

	uf := NewUnionFind(g.NumNodes)
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			uf.Union(u, g.Head[e])
		}
	}

	bestRoot := uint32(0)
	bestSize := uint32(0)
	for i := uint32(0); i < g.NumNodes; i++ {
		root := uf.Find(i)
		if uf.size[root] > bestSize {
			bestRoot = root
			bestSize = uf.size[root]
		}
	}

	nodes := make([]uint32, 0, bestSize)
	for i := uint32(0); i < g.NumNodes; i++ {
		if uf.Find(i) == bestRoot {
			nodes = append(nodes, i)
		}
	}
	return nodes
}

// FilterToComponent returns the subgraph induced by nodes (ascending node
// indices), carrying every node and edge column across.
func FilterToComponent(g *Graph, nodes []uint32) *Graph {
	const dropped = ^uint32(0)

	oldToNew := make([]uint32, g.NumNodes)
	for i := range oldToNew {
		oldToNew[i] = dropped
	}
	for newIdx, oldIdx := range nodes {
		oldToNew[oldIdx] = uint32(newIdx)
	}

	numNodes := uint32(len(nodes))
	firstOut := make([]uint32, numNodes+1)
	var keep []uint32 // old edge indices, already grouped by new source
	var head []uint32

	for newU, oldU := range nodes {
		start, end := g.EdgesFrom(oldU)
		for e := start; e < end; e++ {
			if newV := oldToNew[g.Head[e]]; newV != dropped {
				keep = append(keep, e)
				head = append(head, newV)
			}
		}
		firstOut[newU+1] = uint32(len(keep))
	}

	c := g.with()
	c.NumNodes = numNodes
	c.NumEdges = uint32(len(keep))
	c.FirstOut = firstOut
	c.Head = head

	c.NodeID = pickNodes(g.NodeID, nodes)
	c.NodeLat = pickNodes(g.NodeLat, nodes)
	c.NodeLon = pickNodes(g.NodeLon, nodes)
	if g.IsProjected() {
		c.NodeX = pickNodes(g.NodeX, nodes)
		c.NodeY = pickNodes(g.NodeY, nodes)
	} else {
		c.NodeX = c.NodeLon
		c.NodeY = c.NodeLat
	}

	c.EdgeLength = pickEdges(g.EdgeLength, keep)
	c.EdgeMaxSpeed = pickEdges(g.EdgeMaxSpeed, keep)
	c.EdgeSpeed = pickEdges(g.EdgeSpeed, keep)
	c.EdgeTravelTime = pickEdges(g.EdgeTravelTime, keep)
	c.EdgeClass = pickEdges(g.EdgeClass, keep)

	return c
}

// KeepLargestComponent is LargestComponent followed by FilterToComponent.
func KeepLargestComponent(g *Graph) *Graph {
	return FilterToComponent(g, LargestComponent(g))
}

func pickNodes[T float64 | osm.NodeID](col []T, nodes []uint32) []T {
	if col == nil {
		return nil
	}
	out := make([]T, len(nodes))
	for i, u := range nodes {
		out[i] = col[u]
	}
	return out
}

func pickEdges[T float64 | uint16](col []T, edges []uint32) []T {
	if col == nil {
		return nil
	}
	out := make([]T, len(edges))
	for i, e := range edges {
		out[i] = col[e]
	}
	return out
}
