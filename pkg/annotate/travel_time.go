package annotate

import (
	"math"

	"network_analysis/pkg/graph"
)

const metersPerSecondPerKph = 1000.0 / 3600.0

// AddEdgeTravelTimes returns a copy of g with a travel_time column in
// seconds: length / speed. Edges with unknown or zero speed hold NaN.
func AddEdgeTravelTimes(g *graph.Graph) (*graph.Graph, error) {
	if g.EdgeSpeed == nil {
		return nil, ErrSpeedsMissing
	}

	times := make([]float64, g.NumEdges)
	for e := uint32(0); e < g.NumEdges; e++ {
		speed, ok := g.Weight(e, graph.Speed)
		if !ok || speed <= 0 {
			times[e] = math.NaN()
			continue
		}
		times[e] = g.EdgeLength[e] / (speed * metersPerSecondPerKph)
	}
	return g.WithColumn(graph.TravelTime, times)
}
