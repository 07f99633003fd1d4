package osm

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"path/filepath"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"

	"network_analysis/pkg/geo"
)

// RawEdge represents a directed road segment parsed from OSM data.
type RawEdge struct {
	FromNodeID   osm.NodeID
	ToNodeID     osm.NodeID
	WayID        osm.WayID
	LengthMeters float64
	Highway      string
	MaxSpeed     float64 // km/h from the maxspeed tag, NaN if absent
}

// ParseResult holds the output of parsing OSM data.
type ParseResult struct {
	Edges   []RawEdge
	NodeLat map[osm.NodeID]float64
	NodeLon map[osm.NodeID]float64
}

// wayInfo holds parsed way data collected during Pass 1.
type wayInfo struct {
	ID       osm.WayID
	NodeIDs  []osm.NodeID
	Highway  string
	MaxSpeed float64
	Forward  bool
	Backward bool
}

// BBox defines a geographic bounding box for filtering.
// If non-zero, only edges with both endpoints inside the box are kept.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// Area returns the box size in square degrees.
func (b BBox) Area() float64 {
	return (b.MaxLat - b.MinLat) * (b.MaxLng - b.MinLng)
}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// ParseBBox parses "minLat,minLng,maxLat,maxLng".
func ParseBBox(s string) (BBox, error) {
	var b BBox
	if _, err := fmt.Sscanf(s, "%f,%f,%f,%f", &b.MinLat, &b.MinLng, &b.MaxLat, &b.MaxLng); err != nil {
		return BBox{}, fmt.Errorf("invalid bbox %q (expected minLat,minLng,maxLat,maxLng): %w", s, err)
	}
	if b.MinLat >= b.MaxLat || b.MinLng >= b.MaxLng {
		return BBox{}, fmt.Errorf("invalid bbox %q: min must be below max", s)
	}
	return b, nil
}

// Format is the encoding of an OSM extract.
type Format int

const (
	FormatPBF Format = iota
	FormatXML
)

// FormatFromPath guesses the format from a file name.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".osm", ".xml":
		return FormatXML
	}
	return FormatPBF
}

// ParseOptions configures the OSM parser.
type ParseOptions struct {
	BBox    BBox        // if non-zero, filter edges to this bounding box
	Network NetworkType // defaults to Drive
	Format  Format
}

func (o ParseOptions) network() NetworkType {
	if o.Network == "" {
		return Drive
	}
	return o.Network
}

// newScanner opens a scanner over r. Skip flags are honoured by the PBF
// decoder; the XML decoder yields everything and callers type-switch.
func newScanner(ctx context.Context, r io.Reader, format Format, skipNodes, skipWays bool) osm.Scanner {
	if format == FormatXML {
		return osmxml.New(ctx, r)
	}
	s := osmpbf.New(ctx, r, 1)
	s.SkipNodes = skipNodes
	s.SkipWays = skipWays
	s.SkipRelations = true
	return s
}

// Parse reads an OSM extract and returns directed edges for the configured
// network type. The reader is consumed twice (seeks back to start for the
// second pass), so it must implement io.ReadSeeker.
func Parse(ctx context.Context, rs io.ReadSeeker, opts ...ParseOptions) (*ParseResult, error) {
	var opt ParseOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	network := opt.network()

	// Pass 1: Scan ways to collect referenced node IDs and way info.
	referencedNodes := make(map[osm.NodeID]struct{})
	var ways []wayInfo

	scanner := newScanner(ctx, rs, opt.Format, true, false)
	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		info, ok := acceptWay(network, w)
		if !ok {
			continue
		}
		for _, id := range info.NodeIDs {
			referencedNodes[id] = struct{}{}
		}
		ways = append(ways, info)
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	scanner.Close()

	log.Printf("Pass 1 complete: %d %s ways, %d referenced nodes", len(ways), network, len(referencedNodes))

	// Pass 2: Scan nodes to collect coordinates for referenced nodes only.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	nodeLat := make(map[osm.NodeID]float64, len(referencedNodes))
	nodeLon := make(map[osm.NodeID]float64, len(referencedNodes))

	scanner = newScanner(ctx, rs, opt.Format, false, true)
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referencedNodes[n.ID]; !needed {
			continue
		}
		nodeLat[n.ID] = n.Lat
		nodeLon[n.ID] = n.Lon
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	scanner.Close()

	log.Printf("Pass 2 complete: %d node coordinates collected", len(nodeLat))

	return buildEdges(ways, nodeLat, nodeLon, opt.BBox), nil
}

// FromOSM builds edges from an in-memory OSM document, such as the
// response of an API map call.
func FromOSM(o *osm.OSM, opts ...ParseOptions) *ParseResult {
	var opt ParseOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	network := opt.network()

	var ways []wayInfo
	for _, w := range o.Ways {
		if info, ok := acceptWay(network, w); ok {
			ways = append(ways, info)
		}
	}

	nodeLat := make(map[osm.NodeID]float64, len(o.Nodes))
	nodeLon := make(map[osm.NodeID]float64, len(o.Nodes))
	for _, n := range o.Nodes {
		nodeLat[n.ID] = n.Lat
		nodeLon[n.ID] = n.Lon
	}

	return buildEdges(ways, nodeLat, nodeLon, opt.BBox)
}

// acceptWay applies the network filter and extracts the way's routing tags.
func acceptWay(network NetworkType, w *osm.Way) (wayInfo, bool) {
	if !network.accepts(w.Tags) || len(w.Nodes) < 2 {
		return wayInfo{}, false
	}
	fwd, bwd := network.directionFlags(w.Tags)
	if !fwd && !bwd {
		return wayInfo{}, false
	}

	nodeIDs := make([]osm.NodeID, len(w.Nodes))
	for i, wn := range w.Nodes {
		nodeIDs[i] = wn.ID
	}

	return wayInfo{
		ID:       w.ID,
		NodeIDs:  nodeIDs,
		Highway:  w.Tags.Find("highway"),
		MaxSpeed: ParseMaxSpeed(w.Tags.Find("maxspeed")),
		Forward:  fwd,
		Backward: bwd,
	}, true
}

// buildEdges turns accepted ways into directed segment edges.
func buildEdges(ways []wayInfo, nodeLat, nodeLon map[osm.NodeID]float64, bbox BBox) *ParseResult {
	useBBox := !bbox.IsZero()

	var edges []RawEdge
	var skippedEdges int
	var bboxFiltered int

	for _, w := range ways {
		for i := 0; i < len(w.NodeIDs)-1; i++ {
			fromID := w.NodeIDs[i]
			toID := w.NodeIDs[i+1]

			fromLat, fromOk := nodeLat[fromID]
			fromLon := nodeLon[fromID]
			toLat, toOk := nodeLat[toID]
			toLon := nodeLon[toID]

			if !fromOk || !toOk {
				skippedEdges++
				continue
			}

			// Bounding box filter: skip edges with any endpoint outside.
			if useBBox && (!bbox.Contains(fromLat, fromLon) || !bbox.Contains(toLat, toLon)) {
				bboxFiltered++
				continue
			}

			// Node repeated in a way (degenerate segment).
			if fromID == toID {
				continue
			}

			length := geo.Haversine(fromLat, fromLon, toLat, toLon)
			edge := RawEdge{
				WayID:        w.ID,
				LengthMeters: math.Round(length*1000) / 1000,
				Highway:      w.Highway,
				MaxSpeed:     w.MaxSpeed,
			}

			if w.Forward {
				edge.FromNodeID, edge.ToNodeID = fromID, toID
				edges = append(edges, edge)
			}
			if w.Backward {
				edge.FromNodeID, edge.ToNodeID = toID, fromID
				edges = append(edges, edge)
			}
		}
	}

	if skippedEdges > 0 {
		log.Printf("Warning: skipped %d edges due to missing node coordinates", skippedEdges)
	}
	if bboxFiltered > 0 {
		log.Printf("Filtered %d edges outside bounding box", bboxFiltered)
	}
	log.Printf("Built %d directed edges", len(edges))

	// Only keep coordinates of nodes that ended up on an edge.
	used := make(map[osm.NodeID]struct{}, len(edges))
	for _, e := range edges {
		used[e.FromNodeID] = struct{}{}
		used[e.ToNodeID] = struct{}{}
	}
	lat := make(map[osm.NodeID]float64, len(used))
	lon := make(map[osm.NodeID]float64, len(used))
	for id := range used {
		lat[id] = nodeLat[id]
		lon[id] = nodeLon[id]
	}

	return &ParseResult{
		Edges:   edges,
		NodeLat: lat,
		NodeLon: lon,
	}
}
