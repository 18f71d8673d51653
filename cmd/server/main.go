package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/azybler/polyroute/pkg/api"
	"github.com/azybler/polyroute/pkg/geo"
	"github.com/azybler/polyroute/pkg/graph"
	"github.com/azybler/polyroute/pkg/routing"
)

func main() {
	graphPath := flag.String("graph", "graph.bin", "Path to preprocessed graph binary")
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	configPath := flag.String("config", "", "Optional YAML server config; flags are defaults")
	avoidPath := flag.String("avoid", "", "GeoJSON file of areas every route avoids (overrides config)")
	flag.Parse()

	start := time.Now()

	addr := fmt.Sprintf(":%d", *port)
	cfg := api.DefaultConfig(addr)
	cfg.CORSOrigin = *corsOrigin
	if *configPath != "" {
		var err error
		cfg, err = api.LoadConfig(*configPath, addr)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if cfg.CORSOrigin == "" {
			cfg.CORSOrigin = *corsOrigin
		}
	}
	if *avoidPath != "" {
		cfg.AvoidPolygons = *avoidPath
	}

	// Load graph.
	log.Printf("Loading graph from %s...", *graphPath)
	g, err := graph.ReadBinary(*graphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	log.Printf("Loaded: %d nodes, %d edges", g.NumNodes, g.NumEdges)

	var avoid []geo.Polygon
	if cfg.AvoidPolygons != "" {
		avoid, err = geo.LoadPolygons(cfg.AvoidPolygons)
		if err != nil {
			log.Fatalf("Failed to load avoid polygons: %v", err)
		}
		log.Printf("Loaded %d avoid polygons from %s", len(avoid), cfg.AvoidPolygons)
	}

	// Build routing engine.
	log.Println("Building R-tree spatial index...")
	engine := routing.NewEngine(g, routing.WithAvoidPolygons(avoid))

	loadTime := time.Since(start)
	log.Printf("Ready in %s", loadTime.Round(time.Millisecond))

	stats := api.StatsResponse{
		NumNodes:         g.NumNodes,
		NumEdges:         g.NumEdges,
		NumAvoidPolygons: len(avoid),
	}

	handlers := api.NewHandlers(engine, stats)
	srv := api.NewServer(cfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
