package render

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"network_analysis/pkg/graph"
)

// GeoJSON exports every edge of g and each route as WGS84 LineString
// features. Route features carry a "route" property with their index.
func GeoJSON(g *graph.Graph, routes [][]uint32) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			f := geojson.NewFeature(orb.LineString{g.LonLat(u), g.LonLat(v)})
			f.Properties["u"] = int64(g.NodeID[u])
			f.Properties["v"] = int64(g.NodeID[v])
			f.Properties["highway"] = g.Class(e)
			for _, attr := range []graph.Attribute{graph.Length, graph.Speed, graph.TravelTime} {
				if w, ok := g.Weight(e, attr); ok {
					f.Properties[attr.String()] = w
				}
			}
			fc.Append(f)
		}
	}

	for i, route := range routes {
		ls := make(orb.LineString, len(route))
		ids := make([]int64, len(route))
		for j, u := range route {
			ls[j] = g.LonLat(u)
			ids[j] = int64(g.NodeID[u])
		}
		f := geojson.NewFeature(ls)
		f.Properties["route"] = i
		f.Properties["nodes"] = ids
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON writes fc to path.
func WriteGeoJSON(path string, fc *geojson.FeatureCollection) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write geojson %s: %w", path, err)
	}
	return nil
}
