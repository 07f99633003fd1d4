package osm

import (
	"fmt"
	"sort"
	"strings"
)

// Place is a named extraction area and the CRS used to project it.
type Place struct {
	Name string
	BBox BBox
	CRS  string
}

// places replaces free-text geocoding with a fixed table of study areas.
var places = map[string]Place{
	"auckland": {
		Name: "Auckland, New Zealand",
		BBox: BBox{MinLat: -37.30, MaxLat: -36.60, MinLng: 174.45, MaxLng: 175.30},
		CRS:  "EPSG:2193",
	},
	"singapore": {
		Name: "Singapore",
		BBox: BBox{MinLat: 1.15, MaxLat: 1.48, MinLng: 103.6, MaxLng: 104.1},
		CRS:  "EPSG:32648",
	},
	"kuala-lumpur": {
		Name: "Selangor + Kuala Lumpur, Malaysia",
		BBox: BBox{MinLat: 2.75, MaxLat: 3.5, MinLng: 101.2, MaxLng: 102.0},
		CRS:  "EPSG:32647",
	},
}

// LookupPlace returns the named place (case-insensitive).
func LookupPlace(name string) (Place, error) {
	p, ok := places[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Place{}, fmt.Errorf("unknown place %q (known: %s)", name, strings.Join(PlaceNames(), ", "))
	}
	return p, nil
}

// PlaceNames returns the known place keys in sorted order.
func PlaceNames() []string {
	names := make([]string, 0, len(places))
	for k := range places {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
