package main

import (
	"flag"
	"log"
	"time"

	"github.com/azybler/polyroute/pkg/geo"
	"github.com/azybler/polyroute/pkg/graph"
	"github.com/azybler/polyroute/pkg/routing"
	"github.com/azybler/polyroute/pkg/visgraph"
)

func main() {
	graphDir := flag.String("graph-dir", "", "Directory with first_out, head, weight, latitude and longitude vectors")
	graphPath := flag.String("graph", "", "Preprocessed graph binary (alternative to -graph-dir)")
	sourcePath := flag.String("source", "", "uint32 vector of query source nodes")
	targetPath := flag.String("target", "", "uint32 vector of query target nodes")
	distancePath := flag.String("distance", "distance", "Output uint32 vector of query distances")
	settlingsPath := flag.String("settlings", "", "Optional output uint32 vector of settled node counts")
	polygonsPath := flag.String("polygons", "", "Optional GeoJSON file of areas to avoid")
	heuristic := flag.String("heuristic", "zero", "Heuristic: zero or esp")
	scale := flag.Float64("scale", geo.MetersPerDegree, "Weight units per coordinate degree for the esp heuristic")
	flag.Parse()

	if *sourcePath == "" || *targetPath == "" {
		log.Fatal("-source and -target are required")
	}
	if *heuristic != "zero" && *heuristic != "esp" {
		log.Fatalf("Unknown heuristic %q", *heuristic)
	}

	start := time.Now()

	// Load graph.
	var g *graph.Graph
	var err error
	switch {
	case *graphDir != "":
		log.Printf("Loading graph vectors from %s...", *graphDir)
		g, err = graph.LoadVectors(*graphDir)
	case *graphPath != "":
		log.Printf("Loading graph from %s...", *graphPath)
		g, err = graph.ReadBinary(*graphPath)
	default:
		log.Fatal("one of -graph-dir or -graph is required")
	}
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	log.Printf("Loaded: %d nodes, %d edges", g.NumNodes, g.NumEdges)

	sources, err := graph.LoadUint32Vector(*sourcePath)
	if err != nil {
		log.Fatalf("Failed to load sources: %v", err)
	}
	targets, err := graph.LoadUint32Vector(*targetPath)
	if err != nil {
		log.Fatalf("Failed to load targets: %v", err)
	}

	var polys []geo.Polygon
	if *polygonsPath != "" {
		polys, err = geo.LoadPolygons(*polygonsPath)
		if err != nil {
			log.Fatalf("Failed to load polygons: %v", err)
		}
		log.Printf("Loaded %d avoid polygons", len(polys))
	}

	var w routing.Weighter = routing.ScalarWeight(g.Weight)
	if len(polys) > 0 {
		forbidden := routing.ForbiddenArcs(g.Tail, g.Head, g.NodeLat, g.NodeLon, polys)
		w = routing.ScalarWeight(routing.MaskWeights(g.Weight, forbidden))
	}

	h := func(uint32) routing.Heuristic { return routing.ZeroHeuristic{} }
	if *heuristic == "esp" {
		vg := visgraph.New(polys, *scale)
		vg.VisibilityNaive()
		log.Printf("Visibility graph: %d nodes, %d arcs", vg.NodeCount(), vg.ArcCount())
		h = func(target uint32) routing.Heuristic {
			vg.AddTarget(g.NodeLat[target], g.NodeLon[target])
			vg.SortForRouting()
			return routing.NewEspHeuristic(g.NodeLat, g.NodeLon, target, vg)
		}
	}
	log.Printf("Ready in %s", time.Since(start).Round(time.Millisecond))

	as := routing.NewAStar(g.FirstOut, g.Tail, g.Head)
	distance, settlings, stats, err := routing.RunQueries(as, w, h, sources, targets)
	if err != nil {
		log.Fatalf("Queries failed: %v", err)
	}
	log.Printf("%d queries, max time: %dus, avg time: %dus",
		stats.Count, stats.Max.Microseconds(), stats.Avg().Microseconds())

	if err := graph.SaveUint32Vector(*distancePath, distance); err != nil {
		log.Fatalf("Failed to save distances: %v", err)
	}
	if *settlingsPath != "" {
		if err := graph.SaveUint32Vector(*settlingsPath, settlings); err != nil {
			log.Fatalf("Failed to save settlings: %v", err)
		}
	}
	log.Printf("Done in %s", time.Since(start).Round(time.Millisecond))
}
