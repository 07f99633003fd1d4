// Package annotate derives per-edge speed and travel time columns.
package annotate

import (
	"errors"
	"log"
	"math"

	"network_analysis/pkg/graph"
)

// ErrSpeedsMissing is returned when travel times are requested before
// speeds have been added.
var ErrSpeedsMissing = errors.New("graph has no speed_kph column; add edge speeds first")

// SpeedOptions controls how unknown speeds are imputed.
type SpeedOptions struct {
	// HighwaySpeeds overrides imputed speeds (km/h) for edges of a
	// highway class that lack a usable maxspeed tag.
	HighwaySpeeds map[string]float64
	// Fallback is used (when > 0) for edges of classes with no tagged
	// speed anywhere in the graph and no HighwaySpeeds entry. When unset,
	// those edges get the mean of the per-class means.
	Fallback float64
}

// AddEdgeSpeeds returns a copy of g with a speed_kph column. Each edge uses
// its tagged maxspeed when present; otherwise the HighwaySpeeds entry for
// its class; otherwise the mean tagged maxspeed of its class; otherwise
// the fallback, or the mean of all class means when no fallback is set.
// Edges hold NaN only when no edge in g has a tagged speed.
func AddEdgeSpeeds(g *graph.Graph, opts SpeedOptions) (*graph.Graph, error) {
	classMean := meanSpeedByClass(g)
	fallback := opts.Fallback
	if fallback <= 0 {
		fallback = meanOfMeans(classMean)
	}

	speeds := make([]float64, g.NumEdges)
	var imputed, unknown int
	for e := uint32(0); e < g.NumEdges; e++ {
		if v, ok := g.Weight(e, graph.MaxSpeed); ok && v > 0 {
			speeds[e] = v
			continue
		}
		imputed++

		class := g.Class(e)
		if v, ok := opts.HighwaySpeeds[class]; ok && v > 0 {
			speeds[e] = v
			continue
		}
		if v, ok := classMean[class]; ok {
			speeds[e] = v
			continue
		}
		if fallback > 0 {
			speeds[e] = fallback
			continue
		}
		speeds[e] = math.NaN()
		unknown++
	}

	log.Printf("Edge speeds: %d tagged, %d imputed, %d unknown", int(g.NumEdges)-imputed, imputed-unknown, unknown)
	return g.WithColumn(graph.Speed, speeds)
}

// meanSpeedByClass averages the positive tagged maxspeeds of each highway class.
func meanSpeedByClass(g *graph.Graph) map[string]float64 {
	sum := make(map[string]float64)
	count := make(map[string]int)
	for e := uint32(0); e < g.NumEdges; e++ {
		v, ok := g.Weight(e, graph.MaxSpeed)
		if !ok || v <= 0 {
			continue
		}
		class := g.Class(e)
		sum[class] += v
		count[class]++
	}

	mean := make(map[string]float64, len(sum))
	for class, s := range sum {
		mean[class] = s / float64(count[class])
	}
	return mean
}

// meanOfMeans averages the class means, or returns NaN when there are none.
func meanOfMeans(classMean map[string]float64) float64 {
	if len(classMean) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range classMean {
		sum += v
	}
	return sum / float64(len(classMean))
}
