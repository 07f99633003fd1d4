package main

import (
	"context"
	"log"
	"math"
	"os"
	"time"

	"network_analysis/pkg/annotate"
	"network_analysis/pkg/config"
	"network_analysis/pkg/graph"
	osmparser "network_analysis/pkg/osm"
	"network_analysis/pkg/store"
)

func main() {
	config.LoadEnv()
	cfg, err := config.FromFlagsPreprocess(os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid arguments: %v", err)
	}

	network, err := osmparser.ParseNetworkType(cfg.Network)
	if err != nil {
		log.Fatalf("Invalid network type: %v", err)
	}
	place, err := osmparser.LookupPlace(cfg.Place)
	if err != nil {
		log.Fatalf("Invalid place: %v", err)
	}

	opts := osmparser.ParseOptions{BBox: place.BBox, Network: network}
	if cfg.BBox != "" {
		if opts.BBox, err = osmparser.ParseBBox(cfg.BBox); err != nil {
			log.Fatalf("Invalid bbox: %v", err)
		}
	}
	crs := cfg.CRS
	if crs == "" {
		crs = place.CRS
	}
	log.Printf("Building %s network for %s: lat [%.4f, %.4f], lng [%.4f, %.4f]",
		network, place.Name, opts.BBox.MinLat, opts.BBox.MaxLat, opts.BBox.MinLng, opts.BBox.MaxLng)

	start := time.Now()
	ctx := context.Background()

	// Step 1: Load OSM data.
	var parseResult *osmparser.ParseResult
	if cfg.Fetch {
		parseResult, err = osmparser.Fetch(ctx, opts)
		if err != nil {
			log.Fatalf("Failed to fetch OSM data: %v", err)
		}
	} else {
		log.Println("Opening OSM file...")
		f, err := os.Open(cfg.Input)
		if err != nil {
			log.Fatalf("Failed to open input file: %v", err)
		}
		defer f.Close()

		opts.Format = osmparser.FormatFromPath(cfg.Input)
		log.Println("Parsing OSM data...")
		parseResult, err = osmparser.Parse(ctx, f, opts)
		if err != nil {
			log.Fatalf("Failed to parse OSM data: %v", err)
		}
	}
	log.Printf("Parsed %d edges, %d nodes", len(parseResult.Edges), len(parseResult.NodeLat))

	// Step 2: Build graph.
	log.Println("Building graph...")
	g := graph.Build(parseResult)
	log.Printf("Graph: %d nodes, %d edges", g.NumNodes, g.NumEdges)

	// Step 3: Extract largest connected component.
	if !cfg.KeepAll && g.NumNodes > 0 {
		log.Println("Extracting largest connected component...")
		componentNodes := graph.LargestComponent(g)
		log.Printf("Largest component: %d nodes (%.1f%%)", len(componentNodes), float64(len(componentNodes))/float64(g.NumNodes)*100)
		g = graph.FilterToComponent(g, componentNodes)
		log.Printf("Filtered graph: %d nodes, %d edges", g.NumNodes, g.NumEdges)
	}

	// Step 4: Reproject.
	log.Printf("Projecting to %s...", crs)
	if g, err = graph.Project(g, crs); err != nil {
		log.Fatalf("Failed to project graph: %v", err)
	}

	// Step 5: Speeds and travel times.
	log.Println("Adding edge speeds and travel times...")
	if g, err = annotate.AddEdgeSpeeds(g, annotate.SpeedOptions{Fallback: cfg.FallbackSpeed}); err != nil {
		log.Fatalf("Failed to add edge speeds: %v", err)
	}
	if g, err = annotate.AddEdgeTravelTimes(g); err != nil {
		log.Fatalf("Failed to add travel times: %v", err)
	}
	if missing := countMissing(g.EdgeTravelTime); missing > 0 {
		log.Printf("Warning: %d of %d edges have no travel time (use --fallback-speed)", missing, g.NumEdges)
	}

	// Step 6: Serialize.
	log.Printf("Writing binary to %s...", cfg.Output)
	if err := graph.WriteBinary(cfg.Output, g); err != nil {
		log.Fatalf("Failed to write binary: %v", err)
	}
	if cfg.SQLitePath != "" {
		log.Printf("Exporting SQLite to %s...", cfg.SQLitePath)
		if err := store.Save(cfg.SQLitePath, g); err != nil {
			log.Fatalf("Failed to export SQLite: %v", err)
		}
	}

	info, err := os.Stat(cfg.Output)
	if err != nil {
		log.Fatalf("Failed to stat output: %v", err)
	}
	elapsed := time.Since(start)
	log.Printf("Done in %s. Output: %s (%.1f MB)", elapsed.Round(time.Second), cfg.Output, float64(info.Size())/(1024*1024))
}

func countMissing(col []float64) int {
	n := 0
	for _, v := range col {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}
