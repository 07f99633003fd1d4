package osm

import (
	"math"
	"strconv"
	"strings"
)

const kphPerMph = 1.609344

// ParseMaxSpeed converts a maxspeed tag value into km/h.
// Plain numbers are km/h, an "mph" suffix is converted, and
// semicolon-separated lists ("50;70") are averaged. Symbolic values such
// as "NZ:urban" or "signals" return NaN.
func ParseMaxSpeed(tag string) float64 {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return math.NaN()
	}

	var sum float64
	var n int
	for _, part := range strings.Split(tag, ";") {
		v := parseSingleSpeed(part)
		if math.IsNaN(v) {
			return math.NaN()
		}
		sum += v
		n++
	}
	return sum / float64(n)
}

func parseSingleSpeed(s string) float64 {
	s = strings.ToLower(strings.TrimSpace(s))
	factor := 1.0
	switch {
	case strings.HasSuffix(s, "mph"):
		s = strings.TrimSpace(strings.TrimSuffix(s, "mph"))
		factor = kphPerMph
	case strings.HasSuffix(s, "km/h"):
		s = strings.TrimSpace(strings.TrimSuffix(s, "km/h"))
	case strings.HasSuffix(s, "kmh"):
		s = strings.TrimSpace(strings.TrimSuffix(s, "kmh"))
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v * factor
}
