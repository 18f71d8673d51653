// Package visgraph builds visibility graphs over polygonal obstacles.
//
// Nodes are polygon vertices plus at most one target point. Two nodes are
// connected when the segment between them neither properly crosses a
// polygon edge nor runs through a polygon interior. Arc weights are
// Euclidean lengths scaled to integer cost units, so the finished graph can
// be searched with the same CSR shortest path code as the road network.
package visgraph

import (
	"cmp"
	"context"
	"math"
	"slices"

	"github.com/golang/geo/r2"

	"github.com/azybler/polyroute/pkg/geo"
)

const noTarget = math.MaxUint32

// cancelCheckArcs is how many kept-arc tests run between context checks.
const cancelCheckArcs = 1024

type arc struct {
	tail, head, weight uint32
}

// VisibilityGraph is built once per polygon set and extended with a target
// point per query. After SortForRouting the exported CSR arrays are valid
// until the next AddTarget or VisibilityNaive call.
type VisibilityGraph struct {
	Lat []float64
	Lon []float64

	// CSR adjacency, filled by SortForRouting.
	FirstOut []uint32
	Tail     []uint32
	Head     []uint32
	Weight   []uint32

	polys    []geo.Polygon
	scale    float64
	arcs     []arc
	vertices int    // polygon vertex count; target, if any, follows
	target   uint32 // noTarget if none
	sorted   bool
}

// New creates a visibility graph whose nodes are the vertices of polys.
// scale converts coordinate distances into arc weight units and must make
// scaled lengths a lower bound of road arc weights.
func New(polys []geo.Polygon, scale float64) *VisibilityGraph {
	g := &VisibilityGraph{polys: polys, scale: scale, target: noTarget}
	for _, p := range polys {
		for i := 0; i < p.NumVertices(); i++ {
			g.Lat = append(g.Lat, p[2*i])
			g.Lon = append(g.Lon, p[2*i+1])
		}
	}
	g.vertices = len(g.Lat)
	return g
}

// NodeCount returns the number of nodes including the target.
func (g *VisibilityGraph) NodeCount() int { return len(g.Lat) }

// ArcCount returns the number of directed arcs.
func (g *VisibilityGraph) ArcCount() int { return len(g.arcs) }

// Polygons returns the obstacle set.
func (g *VisibilityGraph) Polygons() []geo.Polygon { return g.polys }

// Scale returns the coordinate-to-weight factor.
func (g *VisibilityGraph) Scale() float64 { return g.scale }

// Target returns the target node id, if one was added.
func (g *VisibilityGraph) Target() (uint32, bool) {
	return g.target, g.target != noTarget
}

// Sorted reports whether the CSR arrays reflect the current arc set.
func (g *VisibilityGraph) Sorted() bool { return g.sorted }

// ScaledLength returns the floored, scaled Euclidean distance between two
// coordinates.
func (g *VisibilityGraph) ScaledLength(lat1, lon1, lat2, lon2 float64) uint32 {
	return uint32(math.Floor(geo.Euclidean(lat1, lon1, lat2, lon2) * g.scale))
}

// VisibilityNaive recomputes all arcs by testing every pair of polygon
// vertices. Each visible pair yields an arc in both directions. An
// existing target keeps its arcs.
func (g *VisibilityGraph) VisibilityNaive() {
	_ = g.VisibilityNaiveContext(context.Background())
}

// VisibilityNaiveContext is VisibilityNaive with cancellation checked once
// per vertex. On error the graph is left without arcs.
func (g *VisibilityGraph) VisibilityNaiveContext(ctx context.Context) error {
	g.arcs = g.arcs[:0]
	g.sorted = false
	for i := 0; i < g.vertices; i++ {
		if err := ctx.Err(); err != nil {
			g.arcs = g.arcs[:0]
			return err
		}
		for j := i + 1; j < g.vertices; j++ {
			if !g.Visible(g.Lat[i], g.Lon[i], g.Lat[j], g.Lon[j]) {
				continue
			}
			w := g.ScaledLength(g.Lat[i], g.Lon[i], g.Lat[j], g.Lon[j])
			g.arcs = append(g.arcs,
				arc{tail: uint32(i), head: uint32(j), weight: w},
				arc{tail: uint32(j), head: uint32(i), weight: w},
			)
		}
	}
	if g.target != noTarget {
		g.connectTarget()
	}
	return nil
}

// Clone returns an independent copy of g without its CSR arrays. A graph
// built once can be cloned per query and given its own target.
func (g *VisibilityGraph) Clone() *VisibilityGraph {
	return &VisibilityGraph{
		Lat:      slices.Clone(g.Lat),
		Lon:      slices.Clone(g.Lon),
		polys:    g.polys,
		scale:    g.scale,
		arcs:     slices.Clone(g.arcs),
		vertices: g.vertices,
		target:   g.target,
	}
}

// ExtendContext returns a new graph over g's polygons followed by extra,
// reusing g's vertex arcs. Arcs of g are kept when extra does not block
// them; pairs involving a new vertex are tested against every polygon. g
// must be built with VisibilityNaive and is not modified. Its target is not
// carried over.
func (g *VisibilityGraph) ExtendContext(ctx context.Context, extra []geo.Polygon) (*VisibilityGraph, error) {
	polys := make([]geo.Polygon, 0, len(g.polys)+len(extra))
	polys = append(polys, g.polys...)
	polys = append(polys, extra...)
	out := New(polys, g.scale)

	for n, a := range g.arcs {
		if n%cancelCheckArcs == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if a.tail >= uint32(g.vertices) || a.head >= uint32(g.vertices) {
			continue
		}
		if Visible(extra, g.Lat[a.tail], g.Lon[a.tail], g.Lat[a.head], g.Lon[a.head]) {
			out.arcs = append(out.arcs, a)
		}
	}

	for j := g.vertices; j < out.vertices; j++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// Pairs with every earlier vertex, old or new.
		for i := 0; i < j; i++ {
			if !out.Visible(out.Lat[i], out.Lon[i], out.Lat[j], out.Lon[j]) {
				continue
			}
			w := out.ScaledLength(out.Lat[i], out.Lon[i], out.Lat[j], out.Lon[j])
			out.arcs = append(out.arcs,
				arc{tail: uint32(i), head: uint32(j), weight: w},
				arc{tail: uint32(j), head: uint32(i), weight: w},
			)
		}
	}
	return out, nil
}

// AddTarget appends the target point and links it to every visible polygon
// vertex with an arc leaving the target. A search from the target then
// yields obstacle-avoiding distances to all vertices. Adding a target again
// replaces the previous one.
func (g *VisibilityGraph) AddTarget(lat, lon float64) uint32 {
	if g.target != noTarget {
		g.arcs = slices.DeleteFunc(g.arcs, func(a arc) bool { return a.tail == g.target })
		g.Lat = g.Lat[:g.vertices]
		g.Lon = g.Lon[:g.vertices]
	}
	g.target = uint32(len(g.Lat))
	g.Lat = append(g.Lat, lat)
	g.Lon = append(g.Lon, lon)
	g.connectTarget()
	g.sorted = false
	return g.target
}

func (g *VisibilityGraph) connectTarget() {
	t := g.target
	for i := 0; i < g.vertices; i++ {
		if g.Visible(g.Lat[t], g.Lon[t], g.Lat[i], g.Lon[i]) {
			g.arcs = append(g.arcs, arc{
				tail:   t,
				head:   uint32(i),
				weight: g.ScaledLength(g.Lat[t], g.Lon[t], g.Lat[i], g.Lon[i]),
			})
		}
	}
}

// SortForRouting orders arcs by tail and builds the CSR arrays.
func (g *VisibilityGraph) SortForRouting() {
	slices.SortFunc(g.arcs, func(a, b arc) int {
		if c := cmp.Compare(a.tail, b.tail); c != 0 {
			return c
		}
		return cmp.Compare(a.head, b.head)
	})

	n := g.NodeCount()
	m := len(g.arcs)
	g.FirstOut = make([]uint32, n+1)
	g.Tail = make([]uint32, m)
	g.Head = make([]uint32, m)
	g.Weight = make([]uint32, m)
	for i, a := range g.arcs {
		g.FirstOut[a.tail+1]++
		g.Tail[i] = a.tail
		g.Head[i] = a.head
		g.Weight[i] = a.weight
	}
	for i := 1; i <= n; i++ {
		g.FirstOut[i] += g.FirstOut[i-1]
	}
	g.sorted = true
}

// Visible reports whether the segment between two coordinates has a clear
// line of sight: it properly crosses no polygon edge and its midpoint lies
// outside every polygon it is not a side of. Grazing a vertex does not
// block, which keeps the resulting distances lower bounds.
func (g *VisibilityGraph) Visible(lat1, lon1, lat2, lon2 float64) bool {
	return Visible(g.polys, lat1, lon1, lat2, lon2)
}

// Visible is the line-of-sight predicate against an arbitrary polygon set.
func Visible(polys []geo.Polygon, lat1, lon1, lat2, lon2 float64) bool {
	a := r2.Point{X: lon1, Y: lat1}
	b := r2.Point{X: lon2, Y: lat2}
	mid := a.Add(b).Mul(0.5)

	for _, p := range polys {
		side := false
		n := p.NumVertices()
		for i, j := 0, n-1; i < n; j, i = i, i+1 {
			u, v := p.Vertex(j), p.Vertex(i)
			if (u == a && v == b) || (u == b && v == a) {
				side = true
				continue
			}
			if geo.SegmentsCross(a, b, u, v) {
				return false
			}
		}
		if !side && geo.PointInPolygon(mid.Y, mid.X, p) {
			return false
		}
	}
	return true
}
