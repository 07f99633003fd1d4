package routing

import (
	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"

	"network_analysis/pkg/geo"
	"network_analysis/pkg/graph"
)

// Resolver finds the graph node closest to a point, using an R-tree over
// node positions.
type Resolver struct {
	tree *rtree.RTreeG[uint32]
	// toPlane maps a point in the graph CRS to the plane the tree is built
	// in. Projected graphs are used as is; lon/lat graphs go through an
	// equirectangular projection around their mean latitude.
	toPlane orb.Projection
}

// NewResolver indexes every node of g.
func NewResolver(g *graph.Graph) *Resolver {
	r := &Resolver{
		tree:    &rtree.RTreeG[uint32]{},
		toPlane: func(p orb.Point) orb.Point { return p },
	}
	if !g.IsProjected() {
		r.toPlane = geo.Equirectangular(g.Centroid()[1])
	}

	for u := uint32(0); u < g.NumNodes; u++ {
		p := r.toPlane(g.Point(u))
		r.tree.Insert(p, p, u)
	}
	return r
}

// Nearest returns the node with the smallest Euclidean distance to p, given
// in the graph CRS. Ties go to the lowest node index.
func (r *Resolver) Nearest(p orb.Point) (uint32, error) {
	if r.tree.Len() == 0 {
		return 0, ErrEmptyGraph
	}

	q := r.toPlane(p)
	best := uint32(noNode)
	bestDist := 0.0
	r.tree.Nearby(
		rtree.BoxDist[float64, uint32](q, q, nil),
		func(_, _ [2]float64, u uint32, dist float64) bool {
			if best == noNode {
				best, bestDist = u, dist
				return true
			}
			if dist > bestDist {
				return false
			}
			if u < best {
				best = u
			}
			return true
		},
	)
	return best, nil
}
