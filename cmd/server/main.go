package main

import (
	"log"
	"os"
	"time"

	"network_analysis/pkg/api"
	"network_analysis/pkg/config"
	"network_analysis/pkg/routing"
	"network_analysis/pkg/store"
)

func main() {
	config.LoadEnv()
	cfg, err := config.FromFlagsServer(os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid arguments: %v", err)
	}

	start := time.Now()

	// Load graph.
	log.Printf("Loading graph from %s...", cfg.GraphPath)
	g, err := store.LoadGraph(cfg.GraphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	log.Printf("Loaded: %d nodes, %d edges (%s)", g.NumNodes, g.NumEdges, g.CRS)

	// Build routing engine.
	log.Println("Building R-tree spatial index...")
	engine, err := routing.NewEngine(g)
	if err != nil {
		log.Fatalf("Failed to build routing engine: %v", err)
	}

	loadTime := time.Since(start)
	log.Printf("Ready in %s", loadTime.Round(time.Millisecond))

	// Setup HTTP server.
	srvCfg := api.DefaultConfig(cfg.Addr)
	srvCfg.CORSOrigin = cfg.CORSOrigin

	handlers := api.NewHandlers(engine, api.NewStats(g))
	srv := api.NewServer(srvCfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
