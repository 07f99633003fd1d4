// Package store exports graphs to SQLite so they can be inspected with
// ordinary SQL tools, and loads them back.
package store

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/paulmach/osm"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"network_analysis/pkg/graph"
)

const batchSize = 1000

// Meta keys.
const (
	metaCRS           = "crs"
	metaNumNodes      = "num_nodes"
	metaNumEdges      = "num_edges"
	metaHasSpeed      = "has_speed_kph"
	metaHasTravelTime = "has_travel_time"
)

func open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// Save writes g to a new SQLite database at path, replacing any existing file.
func Save(path string, g *graph.Graph) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove old database: %w", err)
	}
	db, err := open(path)
	if err != nil {
		return err
	}
	defer closeDB(db)

	if err := db.AutoMigrate(&NodeRecord{}, &EdgeRecord{}, &MetaRecord{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	nodes := make([]NodeRecord, g.NumNodes)
	for i := range nodes {
		nodes[i] = NodeRecord{
			Idx:   uint32(i),
			OSMID: int64(g.NodeID[i]),
			Lat:   g.NodeLat[i],
			Lon:   g.NodeLon[i],
			X:     g.NodeX[i],
			Y:     g.NodeY[i],
		}
	}

	edges := make([]EdgeRecord, 0, g.NumEdges)
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			edges = append(edges, EdgeRecord{
				Idx:        e,
				U:          u,
				V:          g.Head[e],
				Length:     g.EdgeLength[e],
				MaxSpeed:   nullable(g.EdgeMaxSpeed, int(e)),
				SpeedKph:   nullable(g.EdgeSpeed, int(e)),
				TravelTime: nullable(g.EdgeTravelTime, int(e)),
				Highway:    g.Class(e),
			})
		}
	}

	meta := []MetaRecord{
		{Key: metaCRS, Value: g.CRS},
		{Key: metaNumNodes, Value: strconv.FormatUint(uint64(g.NumNodes), 10)},
		{Key: metaNumEdges, Value: strconv.FormatUint(uint64(g.NumEdges), 10)},
		{Key: metaHasSpeed, Value: strconv.FormatBool(g.EdgeSpeed != nil)},
		{Key: metaHasTravelTime, Value: strconv.FormatBool(g.EdgeTravelTime != nil)},
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if len(nodes) > 0 {
			if err := tx.CreateInBatches(&nodes, batchSize).Error; err != nil {
				return fmt.Errorf("insert nodes: %w", err)
			}
		}
		if len(edges) > 0 {
			if err := tx.CreateInBatches(&edges, batchSize).Error; err != nil {
				return fmt.Errorf("insert edges: %w", err)
			}
		}
		if err := tx.Create(&meta).Error; err != nil {
			return fmt.Errorf("insert meta: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("Wrote %d nodes and %d edges to %s", g.NumNodes, g.NumEdges, path)
	return nil
}

// Load reads a graph written by Save.
func Load(path string) (*graph.Graph, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	db, err := open(path)
	if err != nil {
		return nil, err
	}
	defer closeDB(db)

	var metaRows []MetaRecord
	if err := db.Find(&metaRows).Error; err != nil {
		return nil, fmt.Errorf("read meta: %w", err)
	}
	meta := make(map[string]string, len(metaRows))
	for _, m := range metaRows {
		meta[m.Key] = m.Value
	}

	var nodeRows []NodeRecord
	if err := db.Order("idx").Find(&nodeRows).Error; err != nil {
		return nil, fmt.Errorf("read nodes: %w", err)
	}
	var edgeRows []EdgeRecord
	if err := db.Order("idx").Find(&edgeRows).Error; err != nil {
		return nil, fmt.Errorf("read edges: %w", err)
	}

	if want := meta[metaNumNodes]; want != strconv.Itoa(len(nodeRows)) {
		return nil, fmt.Errorf("node count mismatch: meta %q, table %d", want, len(nodeRows))
	}
	if want := meta[metaNumEdges]; want != strconv.Itoa(len(edgeRows)) {
		return nil, fmt.Errorf("edge count mismatch: meta %q, table %d", want, len(edgeRows))
	}

	nodes := make([]graph.Node, len(nodeRows))
	for i, r := range nodeRows {
		if r.Idx != uint32(i) {
			return nil, fmt.Errorf("node rows not contiguous at %d", i)
		}
		nodes[i] = graph.Node{ID: osm.NodeID(r.OSMID), Lat: r.Lat, Lon: r.Lon}
	}

	edges := make([]graph.Edge, len(edgeRows))
	speed := make([]float64, len(edgeRows))
	travelTime := make([]float64, len(edgeRows))
	for i, r := range edgeRows {
		edges[i] = graph.Edge{
			From:     r.U,
			To:       r.V,
			Length:   r.Length,
			MaxSpeed: orNaN(r.MaxSpeed),
			Class:    r.Highway,
		}
		speed[i] = orNaN(r.SpeedKph)
		travelTime[i] = orNaN(r.TravelTime)
	}

	// Rows are stored in CSR order, so rebuilding keeps every edge index.
	g, err := graph.New(nodes, edges)
	if err != nil {
		return nil, fmt.Errorf("rebuild graph: %w", err)
	}
	if meta[metaHasSpeed] == "true" {
		if g, err = g.WithColumn(graph.Speed, speed); err != nil {
			return nil, err
		}
	}
	if meta[metaHasTravelTime] == "true" {
		if g, err = g.WithColumn(graph.TravelTime, travelTime); err != nil {
			return nil, err
		}
	}
	if crs := meta[metaCRS]; crs != "" && crs != g.CRS {
		if g, err = graph.Project(g, crs); err != nil {
			return nil, err
		}
	}

	log.Printf("Loaded %d nodes and %d edges from %s", g.NumNodes, g.NumEdges, path)
	return g, nil
}
