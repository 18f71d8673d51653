package routing

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/azybler/polyroute/pkg/geo"
	"github.com/azybler/polyroute/pkg/graph"
	"github.com/azybler/polyroute/pkg/visgraph"
)

// ErrNoRoute is returned when no route exists between the two points.
var ErrNoRoute = errors.New("no route found")

// cancelCheckInterval is how many settles run between context checks.
const cancelCheckInterval = 256

// LatLng represents a geographic coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// Segment represents a road segment in the route result.
type Segment struct {
	DistanceMeters float64
	Geometry       []LatLng
}

// RouteResult is the output of a route query.
type RouteResult struct {
	TotalDistanceMeters float64
	Segments            []Segment
	SettledNodes        int
}

// Router is the interface for route queries. Routes never use a road arc
// that touches one of the avoid polygons.
type Router interface {
	Route(ctx context.Context, start, end LatLng, avoid []geo.Polygon) (*RouteResult, error)
}

// Engine implements Router with A* over the road graph, weighted by
// polygon avoidance and guided by a visibility graph heuristic.
type Engine struct {
	g       *graph.Graph
	snapper *Snapper
	avoid   []geo.Polygon             // applied to every query
	base    *visgraph.VisibilityGraph // over avoid, without target
	scale   float64
	pool    sync.Pool // *AStar bound to g
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithAvoidPolygons sets polygons avoided by every query in addition to
// the per-request ones.
func WithAvoidPolygons(polys []geo.Polygon) EngineOption {
	return func(e *Engine) { e.avoid = polys }
}

// WithScale sets the weight units per coordinate degree used by the
// heuristic. It must not exceed the ratio of any arc weight to the arc's
// planar length.
func WithScale(scale float64) EngineOption {
	return func(e *Engine) { e.scale = scale }
}

// NewEngine creates a routing engine over g. g must carry Tail and
// coordinates. The visibility graph of the default avoid polygons is built
// here once.
func NewEngine(g *graph.Graph, opts ...EngineOption) *Engine {
	e := &Engine{
		g:       g,
		snapper: NewSnapper(g),
		scale:   geo.MetersPerDegree,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.base = visgraph.New(e.avoid, e.scale)
	e.base.VisibilityNaive()
	e.pool.New = func() any {
		return NewAStar(g.FirstOut, g.Tail, g.Head)
	}
	return e
}

// Route computes the shortest path between two points that avoids every
// polygon in avoid and the engine's default set.
func (e *Engine) Route(ctx context.Context, start, end LatLng, avoid []geo.Polygon) (*RouteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	polys := e.polygons(avoid)

	var w Weighter = ScalarWeight(e.g.Weight)
	accept := func(uint32) bool { return true }
	if len(polys) > 0 {
		aw := NewAvoidPolygonsWeight(e.g.Weight, e.g.Tail, e.g.Head, e.g.NodeLat, e.g.NodeLon, polys)
		w = aw
		accept = func(edge uint32) bool { return !aw.Forbidden(edge) }
	}

	// Step 1: Snap points to the nearest usable road segments.
	startSnap, err := e.snapper.SnapFunc(start.Lat, start.Lng, accept)
	if err != nil {
		return nil, err
	}
	endSnap, err := e.snapper.SnapFunc(end.Lat, end.Lng, accept)
	if err != nil {
		return nil, err
	}

	// Step 2: Heuristic towards the snapped end point.
	vg, err := e.visibility(ctx, avoid)
	if err != nil {
		return nil, err
	}
	vg.AddTarget(endSnap.Lat, endSnap.Lng)
	vg.SortForRouting()
	h := NewEspHeuristicToPoint(e.g.NodeLat, e.g.NodeLon, endSnap.Lat, endSnap.Lng, vg)

	// Step 3: A* from the ends of the start edge the snapped point can drive
	// to, until no queued node can improve on the best arrival.
	as := e.pool.Get().(*AStar)
	defer e.pool.Put(as)
	as.Reset()
	seedSources(as, h, e.g, startSnap)

	best, last, err := search(ctx, as, w, h, e.g, startSnap, endSnap)
	if err != nil {
		return nil, err
	}
	if best == InfWeight {
		return nil, ErrNoRoute
	}

	// Step 4: Build geometry.
	geometry := []LatLng{{Lat: startSnap.Lat, Lng: startSnap.Lng}}
	if last != InvalidID {
		for _, n := range as.NodePathTo(last) {
			geometry = append(geometry, LatLng{Lat: e.g.NodeLat[n], Lng: e.g.NodeLon[n]})
		}
	}
	geometry = append(geometry, LatLng{Lat: endSnap.Lat, Lng: endSnap.Lng})

	total := float64(best)
	return &RouteResult{
		TotalDistanceMeters: total,
		Segments: []Segment{
			{
				DistanceMeters: total,
				Geometry:       geometry,
			},
		},
		SettledNodes: as.SettleCount(),
	}, nil
}

// visibility returns a private visibility graph over the default and the
// request polygons, in the order polygons merges them.
func (e *Engine) visibility(ctx context.Context, avoid []geo.Polygon) (*visgraph.VisibilityGraph, error) {
	if len(avoid) == 0 {
		return e.base.Clone(), nil
	}
	return e.base.ExtendContext(ctx, avoid)
}

func (e *Engine) polygons(avoid []geo.Polygon) []geo.Polygon {
	if len(e.avoid) == 0 {
		return avoid
	}
	if len(avoid) == 0 {
		return e.avoid
	}
	polys := make([]geo.Polygon, 0, len(e.avoid)+len(avoid))
	polys = append(polys, e.avoid...)
	return append(polys, avoid...)
}

// reverseArc returns the cheapest arc running against arc a, from its head
// back to its tail.
func reverseArc(g *graph.Graph, a uint32) (uint32, bool) {
	u, v := g.Tail[a], g.Head[a]
	best, found := uint32(InvalidID), false
	start, end := g.EdgesFrom(v)
	for r := start; r < end; r++ {
		if g.Head[r] == u && (!found || g.Weight[r] < g.Weight[best]) {
			best, found = r, true
		}
	}
	return best, found
}

// seedSources queues the endpoints of the start edge that can be driven to
// from the snapped point: NodeV along the snapped arc, NodeU only over a
// reverse arc.
func seedSources(as *AStar, h Heuristic, g *graph.Graph, snap SnapResult) {
	as.AddSource(snap.NodeV, fraction(g.Weight[snap.EdgeIdx], 1-snap.Ratio), h)
	if r, ok := reverseArc(g, snap.EdgeIdx); ok {
		as.AddSource(snap.NodeU, fraction(g.Weight[r], snap.Ratio), h)
	}
}

// fraction returns the share r of an arc weight, rounded down so partial
// costs never undercut the floored straight-line heuristic.
func fraction(weight uint32, r float64) uint32 {
	return uint32(math.Floor(float64(weight) * r))
}

// search settles nodes until the best arrival cost at the end point is
// final. It returns that cost and the road node the route leaves the graph
// at, or InvalidID when the route stays on the start edge. The end point is
// reached from NodeU along the snapped arc, or from NodeV if a reverse arc
// exists.
func search(ctx context.Context, as *AStar, w Weighter, h Heuristic, g *graph.Graph, startSnap, endSnap SnapResult) (best, last uint32, err error) {
	best, last = uint32(InfWeight), uint32(InvalidID)

	endRev, endTwoWay := reverseArc(g, endSnap.EdgeIdx)

	// Start and end on the same road: drive straight along it.
	if startSnap.EdgeIdx == endSnap.EdgeIdx {
		if endSnap.Ratio >= startSnap.Ratio {
			best = fraction(g.Weight[startSnap.EdgeIdx], endSnap.Ratio-startSnap.Ratio)
		} else if endTwoWay {
			best = fraction(g.Weight[endRev], startSnap.Ratio-endSnap.Ratio)
		}
	}

	toU := fraction(g.Weight[endSnap.EdgeIdx], endSnap.Ratio)
	toV := uint32(InfWeight)
	if endTwoWay {
		toV = fraction(g.Weight[endRev], 1-endSnap.Ratio)
	}
	reachedU, reachedV := false, !endTwoWay

	for !as.IsFinished() && !(reachedU && reachedV) {
		if as.SettleCount()%cancelCheckInterval == cancelCheckInterval-1 {
			if err := ctx.Err(); err != nil {
				return InfWeight, InvalidID, err
			}
		}

		r := as.Settle(w, h)
		// Keys never decrease, so nothing left in the queue can beat best.
		if saturatingAdd(r.Distance, h.Estimate(r.Node)) >= best {
			break
		}
		if r.Node == endSnap.NodeU {
			reachedU = true
			if c := saturatingAdd(r.Distance, toU); c < best {
				best, last = c, r.Node
			}
		}
		if endTwoWay && r.Node == endSnap.NodeV {
			reachedV = true
			if c := saturatingAdd(r.Distance, toV); c < best {
				best, last = c, r.Node
			}
		}
	}
	return best, last, nil
}
