package routing

import (
	"github.com/azybler/polyroute/pkg/geo"
	"github.com/azybler/polyroute/pkg/visgraph"
)

// Heuristic returns a lower bound on the cost from node to the fixed
// target of the current search episode. It must never overestimate, and
// should be consistent for AStar's first pop of the target to be optimal.
type Heuristic interface {
	Estimate(node uint32) uint32
}

// ZeroHeuristic turns AStar into Dijkstra.
type ZeroHeuristic struct{}

// Estimate always returns 0.
func (ZeroHeuristic) Estimate(uint32) uint32 { return 0 }

// EspHeuristic estimates the Euclidean shortest path from a road node to
// the target around the obstacles of a visibility graph.
//
// For a node with a clear line of sight to the target the estimate is the
// scaled straight-line distance. Otherwise it is the cheapest detour over a
// visible obstacle vertex, using obstacle-avoiding vertex-to-target
// distances computed once at construction. Nodes inside an obstacle, or
// without any useful visible vertex, fall back to the straight line. All
// lengths are floored, so estimates never exceed the geometric length of a
// path that avoids the obstacles.
type EspHeuristic struct {
	lat, lon             []float64
	targetLat, targetLon float64

	vg     *visgraph.VisibilityGraph
	vgDist []uint32 // visibility graph target -> vertex
	cache  map[uint32]uint32
}

// NewEspHeuristic prepares estimates towards road node target. vg must
// already hold the target point and be sorted for routing. The slices are
// borrowed.
func NewEspHeuristic(lat, lon []float64, target uint32, vg *visgraph.VisibilityGraph) *EspHeuristic {
	return NewEspHeuristicToPoint(lat, lon, lat[target], lon[target], vg)
}

// NewEspHeuristicToPoint is NewEspHeuristic for a target that need not be a
// road node, such as a query point snapped onto the middle of an arc. vg
// must hold the same point as its target.
func NewEspHeuristicToPoint(lat, lon []float64, targetLat, targetLon float64, vg *visgraph.VisibilityGraph) *EspHeuristic {
	vgTarget, ok := vg.Target()
	if !ok || !vg.Sorted() {
		panic("routing: visibility graph needs AddTarget and SortForRouting before use")
	}

	d := NewDijkstra(vg.FirstOut, vg.Tail, vg.Head)
	d.AddSource(vgTarget, 0)
	d.Run(ScalarWeight(vg.Weight))

	vgDist := make([]uint32, vg.NodeCount())
	for i := range vgDist {
		vgDist[i], _ = d.DistanceTo(uint32(i))
	}

	return &EspHeuristic{
		lat:       lat,
		lon:       lon,
		targetLat: targetLat,
		targetLon: targetLon,
		vg:        vg,
		vgDist:    vgDist,
		cache:     make(map[uint32]uint32),
	}
}

// Estimate implements Heuristic.
func (h *EspHeuristic) Estimate(node uint32) uint32 {
	if e, ok := h.cache[node]; ok {
		return e
	}
	e := h.estimate(h.lat[node], h.lon[node])
	h.cache[node] = e
	return e
}

func (h *EspHeuristic) estimate(lat, lon float64) uint32 {
	direct := h.vg.ScaledLength(lat, lon, h.targetLat, h.targetLon)
	polys := h.vg.Polygons()

	for _, p := range polys {
		if geo.PointInPolygon(lat, lon, p) {
			return direct
		}
	}
	if visgraph.Visible(polys, lat, lon, h.targetLat, h.targetLon) {
		return direct
	}

	vgTarget, _ := h.vg.Target()
	best := uint32(InfWeight)
	for u, du := range h.vgDist {
		if uint32(u) == vgTarget || du == InfWeight {
			continue
		}
		uLat, uLon := h.vg.Lat[u], h.vg.Lon[u]
		if !visgraph.Visible(polys, lat, lon, uLat, uLon) {
			continue
		}
		best = min(best, saturatingAdd(h.vg.ScaledLength(lat, lon, uLat, uLon), du))
	}
	if best == InfWeight {
		return direct
	}
	return max(best, direct)
}
