package routing

import (
	"errors"
	"math"

	"github.com/tidwall/rtree"

	"github.com/azybler/polyroute/pkg/geo"
	"github.com/azybler/polyroute/pkg/graph"
)

const maxSnapDistMeters = 500.0

// ErrPointTooFar is returned when the query point is too far from any road.
var ErrPointTooFar = errors.New("point too far from road")

// SnapResult represents a point snapped to a road segment.
type SnapResult struct {
	EdgeIdx uint32  // index into the graph's arc arrays
	NodeU   uint32  // source node of the edge
	NodeV   uint32  // target node of the edge
	Ratio   float64 // 0.0 = at NodeU, 1.0 = at NodeV
	Dist    float64 // distance in meters from query point to snapped point
	Lat     float64 // snapped point
	Lng     float64
}

// Snapper provides nearest-road snapping over an R-tree of edge bounds.
type Snapper struct {
	index rtree.RTreeG[uint32] // edge bounds (lon, lat) -> arc id
	g     *graph.Graph
}

// NewSnapper indexes the bounding box of every edge of g.
func NewSnapper(g *graph.Graph) *Snapper {
	s := &Snapper{g: g}
	for e := uint32(0); e < g.NumEdges; e++ {
		u, v := g.Tail[e], g.Head[e]
		uLat, uLon := g.NodeLat[u], g.NodeLon[u]
		vLat, vLon := g.NodeLat[v], g.NodeLon[v]
		s.index.Insert(
			[2]float64{math.Min(uLon, vLon), math.Min(uLat, vLat)},
			[2]float64{math.Max(uLon, vLon), math.Max(uLat, vLat)},
			e,
		)
	}
	return s
}

// Snap finds the nearest road segment to the given lat/lng.
func (s *Snapper) Snap(lat, lng float64) (SnapResult, error) {
	return s.SnapFunc(lat, lng, nil)
}

// SnapFunc is Snap restricted to edges for which accept returns true. A nil
// accept admits every edge.
func (s *Snapper) SnapFunc(lat, lng float64, accept func(edge uint32) bool) (SnapResult, error) {
	dLat := geo.MetersToDegrees(maxSnapDistMeters)
	dLon := dLat / math.Max(math.Cos(lat*math.Pi/180), 0.01)

	bestDist := math.Inf(1)
	var bestResult SnapResult

	s.index.Search(
		[2]float64{lng - dLon, lat - dLat},
		[2]float64{lng + dLon, lat + dLat},
		func(_, _ [2]float64, e uint32) bool {
			if accept != nil && !accept(e) {
				return true
			}
			u, v := s.g.Tail[e], s.g.Head[e]
			exactDist, ratio := geo.PointToSegmentDist(
				lat, lng,
				s.g.NodeLat[u], s.g.NodeLon[u],
				s.g.NodeLat[v], s.g.NodeLon[v],
			)
			// Ties go to the lower arc id so results do not depend on
			// tree traversal order.
			if exactDist < bestDist || (exactDist == bestDist && e < bestResult.EdgeIdx) {
				bestDist = exactDist
				bestResult = SnapResult{
					EdgeIdx: e,
					NodeU:   u,
					NodeV:   v,
					Ratio:   ratio,
					Dist:    exactDist,
					Lat:     s.g.NodeLat[u] + ratio*(s.g.NodeLat[v]-s.g.NodeLat[u]),
					Lng:     s.g.NodeLon[u] + ratio*(s.g.NodeLon[v]-s.g.NodeLon[u]),
				}
			}
			return true
		},
	)

	if bestDist > maxSnapDistMeters {
		return SnapResult{}, ErrPointTooFar
	}

	return bestResult, nil
}
