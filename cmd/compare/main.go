package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"network_analysis/pkg/config"
	"network_analysis/pkg/graph"
	"network_analysis/pkg/render"
	"network_analysis/pkg/routing"
	"network_analysis/pkg/store"
)

func main() {
	config.LoadEnv()
	cfg, err := config.FromFlagsCompare(os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid arguments: %v", err)
	}

	start := time.Now()

	log.Printf("Loading graph from %s...", cfg.GraphPath)
	g, err := store.LoadGraph(cfg.GraphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	log.Printf("Loaded: %d nodes, %d edges (%s)", g.NumNodes, g.NumEdges, g.CRS)

	opts := render.DefaultOptions()
	opts.Width, opts.Height = cfg.Width, cfg.Height

	if cfg.GraphPNG != "" {
		log.Printf("Rendering network to %s...", cfg.GraphPNG)
		img, err := render.Image(g, nil, opts)
		if err != nil {
			log.Fatalf("Failed to render network: %v", err)
		}
		if err := render.Save(cfg.GraphPNG, img); err != nil {
			log.Fatalf("Failed to save network image: %v", err)
		}
	}

	engine, err := routing.NewEngine(g)
	if err != nil {
		log.Fatalf("Failed to build routing engine: %v", err)
	}

	ctx := context.Background()
	var routes [][]uint32
	for _, weight := range []graph.Attribute{graph.Length, graph.TravelTime} {
		res, err := engine.RoutePoints(ctx, cfg.Orig, cfg.Dest, weight)
		if errors.Is(err, routing.ErrNoRoute) {
			log.Printf("No route by %s from %v to %v", weight, cfg.Orig, cfg.Dest)
			continue
		}
		if err != nil {
			log.Fatalf("Failed to route by %s: %v", weight, err)
		}
		log.Printf("Route by %s: %d nodes, %.0f m, %.0f s (OSM %d -> %d)",
			weight, len(res.Nodes), res.Length, res.TravelTime, res.NodeIDs[0], res.NodeIDs[len(res.NodeIDs)-1])
		routes = append(routes, res.Nodes)
	}

	log.Printf("Rendering routes to %s...", cfg.PNGPath)
	img, err := render.Image(g, routes, opts)
	if err != nil {
		log.Fatalf("Failed to render routes: %v", err)
	}
	if err := render.Save(cfg.PNGPath, img); err != nil {
		log.Fatalf("Failed to save routes image: %v", err)
	}

	if cfg.GeoJSONPath != "" {
		log.Printf("Writing GeoJSON to %s...", cfg.GeoJSONPath)
		if err := render.WriteGeoJSON(cfg.GeoJSONPath, render.GeoJSON(g, routes)); err != nil {
			log.Fatalf("Failed to write GeoJSON: %v", err)
		}
	}

	log.Printf("Done in %s", time.Since(start).Round(time.Millisecond))
}
