package graph

import (
	"github.com/paulmach/osm"

	osmparser "github.com/azybler/polyroute/pkg/osm"
)

// Build creates a CSR Graph from parsed OSM edges. Node indices follow the
// order in which OSM node ids first appear in the edge list.
func Build(result *osmparser.ParseResult) *Graph {
	if len(result.Edges) == 0 {
		return &Graph{FirstOut: []uint32{0}}
	}

	index := make(map[osm.NodeID]uint32)
	var nodeIDs []osm.NodeID
	compact := func(id osm.NodeID) uint32 {
		if idx, ok := index[id]; ok {
			return idx
		}
		idx := uint32(len(nodeIDs))
		index[id] = idx
		nodeIDs = append(nodeIDs, id)
		return idx
	}

	edges := make([]Edge, len(result.Edges))
	for i, e := range result.Edges {
		edges[i] = Edge{
			From:   compact(e.FromNodeID),
			To:     compact(e.ToNodeID),
			Weight: e.Weight,
		}
	}

	g := buildCSR(uint32(len(nodeIDs)), edges)
	g.NodeLat = make([]float64, g.NumNodes)
	g.NodeLon = make([]float64, g.NumNodes)
	for idx, id := range nodeIDs {
		g.NodeLat[idx] = result.NodeLat[id]
		g.NodeLon[idx] = result.NodeLon[id]
	}
	return g
}
