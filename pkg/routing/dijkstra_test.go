package routing

import (
	"testing"

	"golang.org/x/exp/rand"

	"github.com/azybler/polyroute/pkg/graph"
)

type testGraph struct {
	firstOut, tail, head, weight []uint32
}

// buildTestGraph lays out edges (from, to, weight) as CSR arrays.
func buildTestGraph(numNodes int, edges [][3]uint32) testGraph {
	firstOut := make([]uint32, numNodes+1)
	for _, e := range edges {
		firstOut[e[0]+1]++
	}
	for i := 1; i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}
	next := append([]uint32(nil), firstOut[:numNodes]...)
	head := make([]uint32, len(edges))
	weight := make([]uint32, len(edges))
	for _, e := range edges {
		a := next[e[0]]
		next[e[0]]++
		head[a] = e[1]
		weight[a] = e[2]
	}
	return testGraph{
		firstOut: firstOut,
		tail:     graph.InvertFirstOut(firstOut),
		head:     head,
		weight:   weight,
	}
}

// randomGraph returns a random graph with weights in [0, maxWeight).
func randomGraph(r *rand.Rand, numNodes, numEdges int, maxWeight int) testGraph {
	edges := make([][3]uint32, numEdges)
	for i := range edges {
		edges[i] = [3]uint32{uint32(r.Intn(numNodes)), uint32(r.Intn(numNodes)), uint32(r.Intn(maxWeight))}
	}
	return buildTestGraph(numNodes, edges)
}

// bellmanFord is the reference shortest path oracle.
func bellmanFord(g testGraph, weight []uint32, source uint32) []uint32 {
	n := len(g.firstOut) - 1
	dist := make([]uint32, n)
	for i := range dist {
		dist[i] = InfWeight
	}
	dist[source] = 0
	for round := 0; round < n; round++ {
		changed := false
		for a := range g.head {
			t, h := g.tail[a], g.head[a]
			if dist[t] == InfWeight || weight[a] == InfWeight {
				continue
			}
			if d := dist[t] + weight[a]; d < dist[h] {
				dist[h] = d
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return dist
}

func TestDijkstraSimple(t *testing.T) {
	// 0 -> 1 (100), 1 -> 2 (200), 0 -> 2 (500), 2 -> 3 (50)
	g := buildTestGraph(4, [][3]uint32{
		{0, 1, 100}, {0, 2, 500}, {1, 2, 200}, {2, 3, 50},
	})
	d := NewDijkstra(g.firstOut, g.tail, g.head)
	d.AddSource(0, 0)
	d.Run(ScalarWeight(g.weight))

	want := []uint32{0, 100, 300, 350}
	for x, w := range want {
		got, ok := d.DistanceTo(uint32(x))
		if !ok || got != w {
			t.Errorf("DistanceTo(%d) = %d, %v; want %d", x, got, ok, w)
		}
	}

	path := d.NodePathTo(3)
	wantPath := []uint32{0, 1, 2, 3}
	if len(path) != len(wantPath) {
		t.Fatalf("NodePathTo(3) = %v, want %v", path, wantPath)
	}
	for i := range path {
		if path[i] != wantPath[i] {
			t.Fatalf("NodePathTo(3) = %v, want %v", path, wantPath)
		}
	}
	if d.SettleCount() != 4 {
		t.Errorf("SettleCount = %d, want 4", d.SettleCount())
	}
}

func TestDijkstraUnreachable(t *testing.T) {
	g := buildTestGraph(3, [][3]uint32{{0, 1, 10}})
	d := NewDijkstra(g.firstOut, g.tail, g.head)
	d.AddSource(0, 0)
	d.Run(ScalarWeight(g.weight))

	if got, ok := d.DistanceTo(2); ok || got != InfWeight {
		t.Errorf("DistanceTo(2) = %d, %v; want InfWeight, false", got, ok)
	}
	if d.NodePathTo(2) != nil || d.ArcPathTo(2) != nil {
		t.Error("paths to an unreached node should be nil")
	}
	if d.WasNodeReached(2) {
		t.Error("WasNodeReached(2) = true")
	}
}

func TestDijkstraSourcePaths(t *testing.T) {
	g := buildTestGraph(2, [][3]uint32{{0, 1, 10}})
	d := NewDijkstra(g.firstOut, g.tail, g.head)
	d.AddSource(0, 7)
	d.Run(ScalarWeight(g.weight))

	if got, _ := d.DistanceTo(0); got != 7 {
		t.Errorf("DistanceTo(source) = %d, want start cost 7", got)
	}
	if p := d.NodePathTo(0); len(p) != 1 || p[0] != 0 {
		t.Errorf("NodePathTo(source) = %v, want [0]", p)
	}
	if p := d.ArcPathTo(0); len(p) != 0 {
		t.Errorf("ArcPathTo(source) = %v, want empty", p)
	}
	if got, _ := d.DistanceTo(1); got != 17 {
		t.Errorf("DistanceTo(1) = %d, want 17", got)
	}
}

func TestDijkstraForbiddenArc(t *testing.T) {
	// Direct arc 0 -> 2 is forbidden; the detour via 1 must be used.
	g := buildTestGraph(3, [][3]uint32{{0, 1, 5}, {0, 2, 1}, {1, 2, 5}})
	weight := append([]uint32(nil), g.weight...)
	weight[1] = InfWeight

	d := NewDijkstra(g.firstOut, g.tail, g.head)
	d.AddSource(0, 0)
	d.Run(ScalarWeight(weight))

	if got, _ := d.DistanceTo(2); got != 10 {
		t.Errorf("DistanceTo(2) = %d, want 10", got)
	}
	for _, a := range d.ArcPathTo(2) {
		if a == 1 {
			t.Error("path uses the forbidden arc")
		}
	}
}

func TestDijkstraMultiSource(t *testing.T) {
	// Chain 0 -> 1 -> 2 -> 3 -> 4, sources 0 (cost 0) and 3 (cost 5).
	g := buildTestGraph(5, [][3]uint32{{0, 1, 10}, {1, 2, 10}, {2, 3, 10}, {3, 4, 10}})
	d := NewDijkstra(g.firstOut, g.tail, g.head)
	d.AddSource(0, 0).AddSource(3, 5)
	d.Run(ScalarWeight(g.weight))

	want := []uint32{0, 10, 20, 5, 15}
	for x, w := range want {
		if got, _ := d.DistanceTo(uint32(x)); got != w {
			t.Errorf("DistanceTo(%d) = %d, want %d", x, got, w)
		}
	}
	if p := d.NodePathTo(4); len(p) != 2 || p[0] != 3 {
		t.Errorf("NodePathTo(4) = %v, want [3 4]", p)
	}
}

func TestDijkstraDuplicateSourceKeepsCheaper(t *testing.T) {
	g := buildTestGraph(2, [][3]uint32{{0, 1, 1}})
	d := NewDijkstra(g.firstOut, g.tail, g.head)
	d.AddSource(0, 9).AddSource(0, 4).AddSource(0, 6)
	d.Run(ScalarWeight(g.weight))

	if got, _ := d.DistanceTo(0); got != 4 {
		t.Errorf("DistanceTo(0) = %d, want 4", got)
	}
}

func TestDijkstraPredecessorOnlyOnStrictDecrease(t *testing.T) {
	// Two equal-cost paths 0 -> 1 -> 3 and 0 -> 2 -> 3. Node 1 settles
	// first (smaller id) and pushes 3 via arc 2. The tie through node 2
	// must not replace that predecessor.
	g := buildTestGraph(4, [][3]uint32{{0, 1, 5}, {0, 2, 5}, {1, 3, 5}, {2, 3, 5}})
	d := NewDijkstra(g.firstOut, g.tail, g.head)
	d.AddSource(0, 0)
	d.Run(ScalarWeight(g.weight))

	arcs := d.ArcPathTo(3)
	if len(arcs) != 2 || arcs[0] != 0 || arcs[1] != 2 {
		t.Errorf("ArcPathTo(3) = %v, want [0 2]", arcs)
	}
}

func TestDijkstraSettlePanicsWhenFinished(t *testing.T) {
	g := buildTestGraph(1, nil)
	d := NewDijkstra(g.firstOut, g.tail, g.head)
	defer func() {
		if recover() == nil {
			t.Error("Settle on a finished search should panic")
		}
	}()
	d.Settle(ScalarWeight(g.weight))
}

func TestDijkstraInvalidInputPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"empty first_out", func() { NewDijkstra(nil, nil, nil) }},
		{"first_out not starting at 0", func() { NewDijkstra([]uint32{1, 1}, nil, nil) }},
		{"arc count mismatch", func() { NewDijkstra([]uint32{0, 2}, []uint32{0}, []uint32{0}) }},
		{"source out of range", func() {
			NewDijkstra([]uint32{0, 0}, nil, nil).AddSource(1, 0)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestDijkstraResetReuse(t *testing.T) {
	g := buildTestGraph(4, [][3]uint32{{0, 1, 1}, {1, 2, 1}, {2, 3, 1}, {3, 0, 1}})
	d := NewDijkstra(g.firstOut, g.tail, g.head)
	d.AddSource(0, 0)
	d.Run(ScalarWeight(g.weight))

	storage := &d.tentativeDistance[0]

	d.Reset()
	if !d.IsFinished() {
		t.Fatal("queue not empty after Reset")
	}
	for x := uint32(0); x < 4; x++ {
		if d.WasNodeReached(x) {
			t.Errorf("node %d still reached after Reset", x)
		}
	}
	if d.SettleCount() != 0 {
		t.Errorf("SettleCount = %d after Reset", d.SettleCount())
	}

	d.AddSource(2, 0)
	d.Run(ScalarWeight(g.weight))
	want := []uint32{2, 3, 0, 1}
	for x, w := range want {
		if got, _ := d.DistanceTo(uint32(x)); got != w {
			t.Errorf("second query: DistanceTo(%d) = %d, want %d", x, got, w)
		}
	}
	if p := d.NodePathTo(1); len(p) != 4 || p[0] != 2 {
		t.Errorf("second query: NodePathTo(1) = %v, want path from 2", p)
	}

	// Rebinding a graph of the same size keeps storage.
	d.ResetGraph(g.firstOut, g.tail, g.head)
	if &d.tentativeDistance[0] != storage {
		t.Error("ResetGraph with same node count reallocated storage")
	}

	// A different size reallocates.
	g2 := buildTestGraph(6, [][3]uint32{{0, 5, 3}})
	d.ResetGraph(g2.firstOut, g2.tail, g2.head)
	if d.NodeCount() != 6 {
		t.Fatalf("NodeCount = %d, want 6", d.NodeCount())
	}
	d.AddSource(0, 0)
	d.Run(ScalarWeight(g2.weight))
	if got, _ := d.DistanceTo(5); got != 3 {
		t.Errorf("DistanceTo(5) = %d, want 3", got)
	}
}

func TestDijkstraMatchesBellmanFord(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	d := &Dijkstra{}

	for trial := 0; trial < 50; trial++ {
		n := 1 + r.Intn(60)
		g := randomGraph(r, n, r.Intn(4*n), 100)
		weight := append([]uint32(nil), g.weight...)
		for a := range weight {
			if r.Intn(10) == 0 {
				weight[a] = InfWeight
			}
		}
		source := uint32(r.Intn(n))

		d.ResetGraph(g.firstOut, g.tail, g.head)
		d.AddSource(source, 0)
		d.Run(ScalarWeight(weight))

		want := bellmanFord(g, weight, source)
		for x := range want {
			got, ok := d.DistanceTo(uint32(x))
			if ok != (want[x] != InfWeight) || got != want[x] {
				t.Fatalf("trial %d: DistanceTo(%d) = %d, %v; want %d", trial, x, got, ok, want[x])
			}
			if !ok {
				continue
			}

			// Path consistency: starts at the source, ends at x, and its
			// arcs sum to the distance.
			nodes := d.NodePathTo(uint32(x))
			if nodes[0] != source || nodes[len(nodes)-1] != uint32(x) {
				t.Fatalf("trial %d: NodePathTo(%d) = %v", trial, x, nodes)
			}
			var sum uint32
			arcs := d.ArcPathTo(uint32(x))
			for i, a := range arcs {
				if g.tail[a] != nodes[i] || g.head[a] != nodes[i+1] {
					t.Fatalf("trial %d: arc %d does not join %d and %d", trial, a, nodes[i], nodes[i+1])
				}
				sum += weight[a]
			}
			if sum != got {
				t.Fatalf("trial %d: path to %d sums to %d, distance is %d", trial, x, sum, got)
			}
		}
	}
}

func BenchmarkDijkstraGrid(b *testing.B) {
	const side = 100
	var edges [][3]uint32
	id := func(r, c int) uint32 { return uint32(r*side + c) }
	for r := 0; r < side; r++ {
		for c := 0; c < side; c++ {
			if c+1 < side {
				edges = append(edges, [3]uint32{id(r, c), id(r, c+1), 10}, [3]uint32{id(r, c+1), id(r, c), 10})
			}
			if r+1 < side {
				edges = append(edges, [3]uint32{id(r, c), id(r+1, c), 10}, [3]uint32{id(r+1, c), id(r, c), 10})
			}
		}
	}
	g := buildTestGraph(side*side, edges)
	d := NewDijkstra(g.firstOut, g.tail, g.head)
	w := ScalarWeight(g.weight)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Reset()
		d.AddSource(0, 0)
		d.Run(w)
	}
}
