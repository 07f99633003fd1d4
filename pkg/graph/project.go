package graph

import (
	"fmt"
	"log"
	"strings"

	"github.com/paulmach/orb"

	"network_analysis/pkg/geo"
)

// AutoUTM asks Project to pick the UTM zone of the graph centroid.
const AutoUTM = "utm"

// Project returns a copy of g whose node X/Y are expressed in the named CRS.
// Coordinates are always derived from the WGS84 lat/lon, so projecting an
// already projected graph is allowed.
func Project(g *Graph, crsName string) (*Graph, error) {
	if strings.EqualFold(crsName, AutoUTM) {
		c := g.Centroid()
		crsName = geo.UTMZone(c[0], c[1])
		log.Printf("Selected %s for graph centroid (%.4f, %.4f)", crsName, c[1], c[0])
	}

	crs, err := geo.ParseCRS(crsName)
	if err != nil {
		return nil, fmt.Errorf("project graph: %w", err)
	}

	c := g.with()
	c.CRS = crs.Name
	if crs.IsGeographic() {
		c.NodeX = g.NodeLon
		c.NodeY = g.NodeLat
		return c, nil
	}

	c.NodeX = make([]float64, g.NumNodes)
	c.NodeY = make([]float64, g.NumNodes)
	for i := uint32(0); i < g.NumNodes; i++ {
		p := crs.Project(orb.Point{g.NodeLon[i], g.NodeLat[i]})
		c.NodeX[i] = p[0]
		c.NodeY[i] = p[1]
	}
	return c, nil
}

// IsProjected reports whether node X/Y are planar meters rather than lon/lat.
func (g *Graph) IsProjected() bool {
	return g.CRS != "" && g.CRS != geo.WGS84
}

// Centroid returns the mean lon/lat of all nodes.
func (g *Graph) Centroid() orb.Point {
	if g.NumNodes == 0 {
		return orb.Point{}
	}
	var sumLon, sumLat float64
	for i := uint32(0); i < g.NumNodes; i++ {
		sumLon += g.NodeLon[i]
		sumLat += g.NodeLat[i]
	}
	n := float64(g.NumNodes)
	return orb.Point{sumLon / n, sumLat / n}
}

// Point returns node u's planar position.
func (g *Graph) Point(u uint32) orb.Point {
	return orb.Point{g.NodeX[u], g.NodeY[u]}
}

// LonLat returns node u's WGS84 position.
func (g *Graph) LonLat(u uint32) orb.Point {
	return orb.Point{g.NodeLon[u], g.NodeLat[u]}
}

// Bound returns the planar bounding box of all nodes.
func (g *Graph) Bound() orb.Bound {
	if g.NumNodes == 0 {
		return orb.Bound{}
	}
	b := orb.Bound{Min: g.Point(0), Max: g.Point(0)}
	for i := uint32(1); i < g.NumNodes; i++ {
		b = b.Extend(g.Point(i))
	}
	return b
}
