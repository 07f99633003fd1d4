// Package config reads command configuration from flags, with defaults
// taken from environment variables and an optional .env file.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/paulmach/orb"
)

// Default query of the comparison, in NZTM (EPSG:2193) over central Auckland.
var (
	DefaultOrig = orb.Point{1761610.5863462097, 5922711.2433362715}
	DefaultDest = orb.Point{1758060.4480746957, 5927129.813028354}
)

// LoadEnv loads a .env file from the working directory if there is one.
// Variables already set in the environment take precedence.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Ignoring .env: %v", err)
		}
	}
}

// ServerConfig holds the flags of the route server.
type ServerConfig struct {
	GraphPath  string
	Addr       string
	CORSOrigin string
}

// FromFlagsServer parses server flags from args.
func FromFlagsServer(args []string) (ServerConfig, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	graphPath := fs.String("graph", envString("GRAPH_PATH", "graph.bin"), "Path to graph binary or SQLite export")
	port := fs.Int("port", envInt("PORT", 8080), "HTTP port")
	corsOrigin := fs.String("cors-origin", os.Getenv("CORS_ORIGIN"), "CORS allowed origin (empty = same-origin)")
	if err := fs.Parse(args); err != nil {
		return ServerConfig{}, err
	}
	if *port <= 0 || *port > 65535 {
		return ServerConfig{}, fmt.Errorf("invalid port %d", *port)
	}

	return ServerConfig{
		GraphPath:  *graphPath,
		Addr:       fmt.Sprintf(":%d", *port),
		CORSOrigin: *corsOrigin,
	}, nil
}

// PreprocessConfig holds the flags of the graph build pipeline.
type PreprocessConfig struct {
	Input         string // .osm.pbf or .osm file
	Fetch         bool   // download from the OSM API instead of reading Input
	Place         string
	BBox          string
	Network       string
	CRS           string
	Output        string
	SQLitePath    string
	FallbackSpeed float64
	KeepAll       bool // skip the largest-component filter
}

// FromFlagsPreprocess parses preprocess flags and checks that exactly one
// input source is given.
func FromFlagsPreprocess(args []string) (PreprocessConfig, error) {
	fs := flag.NewFlagSet("preprocess", flag.ContinueOnError)
	var c PreprocessConfig
	fs.StringVar(&c.Input, "input", os.Getenv("OSM_INPUT"), "Path to .osm.pbf or .osm file")
	fs.BoolVar(&c.Fetch, "fetch", envBool("OSM_FETCH", false), "Download the area from the OSM API")
	fs.StringVar(&c.Place, "place", envString("OSM_PLACE", "auckland"), "Named area: auckland, singapore, kuala-lumpur")
	fs.StringVar(&c.BBox, "bbox", os.Getenv("OSM_BBOX"), "Bounding box minLat,minLng,maxLat,maxLng (overrides --place extent)")
	fs.StringVar(&c.Network, "network", envString("OSM_NETWORK", "drive"), "Network type: drive, drive_service, walk, bike")
	fs.StringVar(&c.CRS, "crs", os.Getenv("GRAPH_CRS"), "Target CRS, e.g. EPSG:2193 or utm (default: the place's CRS)")
	fs.StringVar(&c.Output, "output", envString("GRAPH_PATH", "graph.bin"), "Output binary graph file path")
	fs.StringVar(&c.SQLitePath, "sqlite", os.Getenv("SQLITE_PATH"), "Also export the graph to this SQLite database")
	fs.Float64Var(&c.FallbackSpeed, "fallback-speed", envFloat("FALLBACK_SPEED", 0), "Speed in km/h for edges whose class has no tagged speeds (0 = mean of class means)")
	fs.BoolVar(&c.KeepAll, "keep-all", false, "Keep every component instead of the largest")
	if err := fs.Parse(args); err != nil {
		return PreprocessConfig{}, err
	}

	if c.Input == "" && !c.Fetch {
		return PreprocessConfig{}, fmt.Errorf("one of --input or --fetch is required")
	}
	if c.Input != "" && c.Fetch {
		return PreprocessConfig{}, fmt.Errorf("--input and --fetch are mutually exclusive")
	}
	if c.FallbackSpeed < 0 {
		return PreprocessConfig{}, fmt.Errorf("invalid fallback speed %f", c.FallbackSpeed)
	}
	return c, nil
}

// CompareConfig holds the flags of the route comparison tool.
type CompareConfig struct {
	GraphPath   string
	Orig, Dest  orb.Point // in the graph CRS
	PNGPath     string
	GraphPNG    string
	GeoJSONPath string
	Width       int
	Height      int
}

// FromFlagsCompare parses compare flags, including the origin and
// destination points.
func FromFlagsCompare(args []string) (CompareConfig, error) {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	graphPath := fs.String("graph", envString("GRAPH_PATH", "graph.bin"), "Path to graph binary or SQLite export")
	orig := fs.String("orig", envString("ROUTE_ORIG", FormatPoint(DefaultOrig)), "Origin x,y in the graph CRS")
	dest := fs.String("dest", envString("ROUTE_DEST", FormatPoint(DefaultDest)), "Destination x,y in the graph CRS")
	pngPath := fs.String("png", envString("ROUTES_PNG", "routes.png"), "Output image of both routes")
	graphPNG := fs.String("graph-png", os.Getenv("GRAPH_PNG"), "Optional image of the network alone")
	geojsonPath := fs.String("geojson", os.Getenv("ROUTES_GEOJSON"), "Optional GeoJSON export of network and routes")
	width := fs.Int("width", envInt("IMAGE_WIDTH", 1200), "Image width in pixels")
	height := fs.Int("height", envInt("IMAGE_HEIGHT", 1200), "Image height in pixels")
	if err := fs.Parse(args); err != nil {
		return CompareConfig{}, err
	}

	o, err := ParsePoint(*orig)
	if err != nil {
		return CompareConfig{}, fmt.Errorf("--orig: %w", err)
	}
	d, err := ParsePoint(*dest)
	if err != nil {
		return CompareConfig{}, fmt.Errorf("--dest: %w", err)
	}
	if *width <= 0 || *height <= 0 {
		return CompareConfig{}, fmt.Errorf("invalid image size %dx%d", *width, *height)
	}

	return CompareConfig{
		GraphPath:   *graphPath,
		Orig:        o,
		Dest:        d,
		PNGPath:     *pngPath,
		GraphPNG:    *graphPNG,
		GeoJSONPath: *geojsonPath,
		Width:       *width,
		Height:      *height,
	}, nil
}

// ParsePoint parses "x,y".
func ParsePoint(s string) (orb.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return orb.Point{}, fmt.Errorf("invalid point %q (expected x,y)", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("invalid x in %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("invalid y in %q: %w", s, err)
	}
	return orb.Point{x, y}, nil
}

// FormatPoint is the inverse of ParsePoint.
func FormatPoint(p orb.Point) string {
	return strconv.FormatFloat(p[0], 'f', -1, 64) + "," + strconv.FormatFloat(p[1], 'f', -1, 64)
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func envFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
