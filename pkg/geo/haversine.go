package geo

import (
	"math"

	"github.com/paulmach/orb"
)

const earthRadiusMeters = 6_371_000.0

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// EquirectangularDist returns an approximate distance in meters.
// Accurate to well under 1% for city-scale distances away from the poles.
// Use for candidate filtering and comparisons, not for final edge lengths.
func EquirectangularDist(lat1, lon1, lat2, lon2 float64) float64 {
	x := (lon2 - lon1) * math.Cos((lat1+lat2)/2*math.Pi/180) * math.Pi / 180
	y := (lat2 - lat1) * math.Pi / 180
	return math.Sqrt(x*x+y*y) * earthRadiusMeters
}

// Equirectangular returns a projection from lon/lat degrees to meters on a
// plane tangent at latitude lat0. Distances between projected points match
// EquirectangularDist near lat0.
func Equirectangular(lat0 float64) orb.Projection {
	cosLat := math.Cos(lat0 * math.Pi / 180)
	const degToMeters = math.Pi / 180 * earthRadiusMeters
	return func(p orb.Point) orb.Point {
		return orb.Point{p[0] * cosLat * degToMeters, p[1] * degToMeters}
	}
}
