package routing

import (
	"github.com/azybler/polyroute/pkg/geo"
	"github.com/azybler/polyroute/pkg/graph"
)

// avoidFixture is a 13-node ring road around a rectangular avoid area,
// with a spur node 12 inside the area:
//
//	10 -- 9 --(8)-- 7 -- 6
//	 |  XXXXXXXXXXXX|XX  |
//	11  XXXXXXXXXX 12 X  5
//	 |  XXXXXXXXXXXX|XX  |
//	 0 --(1)-- 2 -- 3 -- 4
type avoidFixture struct {
	firstOut, tail, head, weight []uint32
	lat, lon                     []float64
	polys                        []geo.Polygon
}

func newAvoidFixture() avoidFixture {
	firstOut := []uint32{0, 2, 4, 6, 9, 11, 13, 15, 18, 20, 22, 24, 26, 28}
	head := []uint32{1, 11, 0, 2, 1, 3, 2, 4, 12, 3, 5, 4, 6, 5, 7, 6, 8, 12, 7, 9, 8, 10, 9, 11, 0, 10, 3, 7}
	weight := make([]uint32, len(head))
	for i := range weight {
		weight[i] = 111 // 0.001 degree at the equator
	}
	return avoidFixture{
		firstOut: firstOut,
		tail:     graph.InvertFirstOut(firstOut),
		head:     head,
		weight:   weight,
		lat:      []float64{0, 0, 0, 0, 0, 0.001, 0.002, 0.002, 0.002, 0.002, 0.002, 0.001, 0.001},
		lon:      []float64{0, 0.001, 0.002, 0.003, 0.004, 0.004, 0.004, 0.003, 0.002, 0.001, 0, 0, 0.003},
		polys:    []geo.Polygon{{0.0005, 0.0005, 0.0005, 0.0035, 0.0015, 0.0035, 0.0015, 0.0005}},
	}
}

// toGraph wraps the fixture as a graph.Graph.
func (f avoidFixture) toGraph() *graph.Graph {
	return &graph.Graph{
		NumNodes: uint32(len(f.firstOut) - 1),
		NumEdges: uint32(len(f.head)),
		FirstOut: f.firstOut,
		Tail:     f.tail,
		Head:     f.head,
		Weight:   f.weight,
		NodeLat:  f.lat,
		NodeLon:  f.lon,
	}
}
