package routing

import (
	"github.com/tidwall/rtree"

	"github.com/azybler/polyroute/pkg/geo"
)

// Weighter returns the cost of traversing arc when departing its tail at
// accumulated cost departure, or InfWeight if the arc must not be used.
type Weighter interface {
	Weight(arc, departure uint32) uint32
}

// WeightFunc adapts a plain function to Weighter.
type WeightFunc func(arc, departure uint32) uint32

// Weight calls f.
func (f WeightFunc) Weight(arc, departure uint32) uint32 { return f(arc, departure) }

// ScalarWeight looks up a precomputed per-arc cost.
type ScalarWeight []uint32

// Weight returns w[arc]; departure is ignored.
func (w ScalarWeight) Weight(arc, _ uint32) uint32 { return w[arc] }

// AvoidPolygonsWeight forbids every arc that starts inside, ends inside or
// crosses the boundary of one of a set of polygons. Other arcs cost their
// scalar weight. All slices are borrowed.
type AvoidPolygonsWeight struct {
	weight []uint32
	tail   []uint32
	head   []uint32
	lat    []float64
	lon    []float64
	polys  []geo.Polygon
	index  rtree.RTreeG[int] // polygon bounds -> index into polys
}

// NewAvoidPolygonsWeight builds the evaluator and indexes polygon bounds.
func NewAvoidPolygonsWeight(weight, tail, head []uint32, lat, lon []float64, polys []geo.Polygon) *AvoidPolygonsWeight {
	w := &AvoidPolygonsWeight{
		weight: weight,
		tail:   tail,
		head:   head,
		lat:    lat,
		lon:    lon,
		polys:  polys,
	}
	for i, p := range polys {
		b := p.Bound()
		w.index.Insert([2]float64{b.X.Lo, b.Y.Lo}, [2]float64{b.X.Hi, b.Y.Hi}, i)
	}
	return w
}

// Weight implements Weighter.
func (w *AvoidPolygonsWeight) Weight(arc, _ uint32) uint32 {
	if w.Forbidden(arc) {
		return InfWeight
	}
	return w.weight[arc]
}

// Forbidden reports whether arc touches any avoid polygon.
func (w *AvoidPolygonsWeight) Forbidden(arc uint32) bool {
	if len(w.polys) == 0 {
		return false
	}
	t, h := w.tail[arc], w.head[arc]
	lat1, lon1 := w.lat[t], w.lon[t]
	lat2, lon2 := w.lat[h], w.lon[h]

	minPt := [2]float64{min(lon1, lon2), min(lat1, lat2)}
	maxPt := [2]float64{max(lon1, lon2), max(lat1, lat2)}

	forbidden := false
	w.index.Search(minPt, maxPt, func(_, _ [2]float64, i int) bool {
		p := w.polys[i]
		if geo.PointInPolygon(lat1, lon1, p) ||
			geo.PointInPolygon(lat2, lon2, p) ||
			geo.EdgeCrossesPolygon(lat1, lon1, lat2, lon2, p) {
			forbidden = true
			return false
		}
		return true
	})
	return forbidden
}

// ForbiddenArcs marks every arc of the graph that the avoidance evaluator
// rejects.
func ForbiddenArcs(tail, head []uint32, lat, lon []float64, polys []geo.Polygon) []bool {
	w := NewAvoidPolygonsWeight(nil, tail, head, lat, lon, polys)
	out := make([]bool, len(head))
	for a := range out {
		out[a] = w.Forbidden(uint32(a))
	}
	return out
}

// MaskWeights returns a copy of weight with every forbidden arc set to
// InfWeight, so that a ScalarWeight over the result behaves like the
// avoidance evaluator without per-arc geometry tests.
func MaskWeights(weight []uint32, forbidden []bool) []uint32 {
	out := make([]uint32, len(weight))
	for a, w := range weight {
		if forbidden[a] {
			out[a] = InfWeight
		} else {
			out[a] = w
		}
	}
	return out
}
