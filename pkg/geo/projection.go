package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/wroge/wgs84"
)

// ErrUnknownCRS is returned when a CRS name is not supported.
var ErrUnknownCRS = errors.New("unknown CRS")

// WGS84 is the geographic CRS OSM data is delivered in.
const WGS84 = "EPSG:4326"

// CRS projects WGS84 lon/lat points into a planar coordinate system.
type CRS struct {
	Name    string
	Project orb.Projection
}

// IsGeographic reports whether the CRS keeps lon/lat degrees.
func (c CRS) IsGeographic() bool {
	return c.Name == WGS84
}

var epsg = wgs84.EPSG()

// fromWGS84 returns a projection from lon/lat degrees into the EPSG code.
func fromWGS84(code int) orb.Projection {
	transform := epsg.Transform(4326, code)
	return func(p orb.Point) orb.Point {
		x, y, _ := transform(p[0], p[1], 0)
		return orb.Point{x, y}
	}
}

// ParseCRS resolves a CRS name such as "EPSG:2193", "EPSG:32760" or
// "EPSG:3857".
func ParseCRS(name string) (CRS, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	code, ok := strings.CutPrefix(upper, "EPSG:")
	if !ok {
		return CRS{}, fmt.Errorf("%w: %q", ErrUnknownCRS, name)
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return CRS{}, fmt.Errorf("%w: %q", ErrUnknownCRS, name)
	}

	switch {
	case n == 4326:
		return CRS{Name: WGS84, Project: func(p orb.Point) orb.Point { return p }}, nil
	case n == 3857:
		return CRS{Name: upper, Project: project.WGS84.ToMercator}, nil
	case n == 2193, n > 32600 && n <= 32660, n > 32700 && n <= 32760:
		return CRS{Name: upper, Project: fromWGS84(n)}, nil
	}
	return CRS{}, fmt.Errorf("%w: %q", ErrUnknownCRS, name)
}

// UTMZone returns the EPSG name of the UTM zone containing lon/lat.
func UTMZone(lon, lat float64) string {
	zone := int(math.Floor((lon+180)/6)) + 1
	if zone > 60 {
		zone = 60
	}
	if zone < 1 {
		zone = 1
	}
	if lat < 0 {
		return fmt.Sprintf("EPSG:%d", 32700+zone)
	}
	return fmt.Sprintf("EPSG:%d", 32600+zone)
}
