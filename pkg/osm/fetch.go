package osm

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmapi"
)

// MaxFetchArea is the largest bbox, in square degrees, the OSM API map
// call accepts.
const MaxFetchArea = 0.25

// ErrAreaTooLarge is returned by Fetch for boxes the OSM API would reject.
var ErrAreaTooLarge = errors.New("bounding box exceeds the OSM API area limit")

// Fetch downloads the map data inside opts.BBox from the OSM API and
// builds edges for the configured network type. The API only serves
// small areas; larger regions should be read from an extract with Parse.
func Fetch(ctx context.Context, opts ParseOptions) (*ParseResult, error) {
	if opts.BBox.IsZero() {
		return nil, fmt.Errorf("fetch requires a bounding box")
	}
	if area := opts.BBox.Area(); area > MaxFetchArea {
		return nil, fmt.Errorf("%w: %.3f deg² > %.2f deg²; use a smaller --bbox or --input with an extract",
			ErrAreaTooLarge, area, MaxFetchArea)
	}

	bounds := &osm.Bounds{
		MinLat: opts.BBox.MinLat,
		MaxLat: opts.BBox.MaxLat,
		MinLon: opts.BBox.MinLng,
		MaxLon: opts.BBox.MaxLng,
	}

	log.Printf("Fetching OSM map data for lat [%.4f, %.4f], lng [%.4f, %.4f]...",
		bounds.MinLat, bounds.MaxLat, bounds.MinLon, bounds.MaxLon)
	o, err := osmapi.Map(ctx, bounds)
	if err != nil {
		return nil, fmt.Errorf("osm api map: %w", err)
	}
	log.Printf("Fetched %d nodes, %d ways", len(o.Nodes), len(o.Ways))

	return FromOSM(o, opts), nil
}
