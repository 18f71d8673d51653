package graph

import "math"

// noNode marks a node dropped by FilterToComponent.
const noNode = math.MaxUint32

// disjointSet is a union-find forest over node ids, merged by size.
type disjointSet struct {
	parent []uint32
	size   []uint32
}

func newDisjointSet(n uint32) disjointSet {
	ds := disjointSet{parent: make([]uint32, n), size: make([]uint32, n)}
	for i := range n {
		ds.parent[i] = i
		ds.size[i] = 1
	}
	return ds
}

func (ds disjointSet) root(x uint32) uint32 {
	r := x
	for ds.parent[r] != r {
		r = ds.parent[r]
	}
	for ds.parent[x] != r {
		ds.parent[x], x = r, ds.parent[x]
	}
	return r
}

func (ds disjointSet) join(x, y uint32) {
	x, y = ds.root(x), ds.root(y)
	if x == y {
		return
	}
	if ds.size[x] < ds.size[y] {
		x, y = y, x
	}
	ds.parent[y] = x
	ds.size[x] += ds.size[y]
}

// Components labels every node with its weakly connected component. Arcs
// are treated as undirected. Components are numbered in order of their
// smallest node id; sizes holds the node count per component.
func Components(g *Graph) (label []uint32, sizes []uint32) {
	ds := newDisjointSet(g.NumNodes)
	for a := uint32(0); a < g.NumEdges; a++ {
		ds.join(g.Tail[a], g.Head[a])
	}

	label = make([]uint32, g.NumNodes)
	rootLabel := make(map[uint32]uint32)
	for x := uint32(0); x < g.NumNodes; x++ {
		r := ds.root(x)
		id, ok := rootLabel[r]
		if !ok {
			id = uint32(len(sizes))
			rootLabel[r] = id
			sizes = append(sizes, 0)
		}
		label[x] = id
		sizes[id]++
	}
	return label, sizes
}

// LargestComponent returns the ascending node ids of the largest weakly
// connected component. Of equally large components the one holding the
// smallest node id wins.
func LargestComponent(g *Graph) []uint32 {
	if g.NumNodes == 0 {
		return nil
	}
	label, sizes := Components(g)

	best := uint32(0)
	for c := range sizes {
		if sizes[c] > sizes[best] {
			best = uint32(c)
		}
	}

	nodes := make([]uint32, 0, sizes[best])
	for x, c := range label {
		if c == best {
			nodes = append(nodes, uint32(x))
		}
	}
	return nodes
}

// FilterToComponent creates a new graph containing only the specified
// nodes, renumbered in the given order. Arcs leaving the set are dropped;
// coordinates follow their nodes.
func FilterToComponent(g *Graph, nodes []uint32) *Graph {
	if len(nodes) == 0 {
		return &Graph{FirstOut: []uint32{0}}
	}

	oldToNew := make([]uint32, g.NumNodes)
	for i := range oldToNew {
		oldToNew[i] = noNode
	}
	for newIdx, oldIdx := range nodes {
		oldToNew[oldIdx] = uint32(newIdx)
	}

	var edges []Edge
	for _, oldU := range nodes {
		start, end := g.EdgesFrom(oldU)
		for e := start; e < end; e++ {
			newV := oldToNew[g.Head[e]]
			if newV == noNode {
				continue
			}
			edges = append(edges, Edge{From: oldToNew[oldU], To: newV, Weight: g.Weight[e]})
		}
	}

	out := buildCSR(uint32(len(nodes)), edges)
	out.NodeLat = make([]float64, len(nodes))
	out.NodeLon = make([]float64, len(nodes))
	for newIdx, oldIdx := range nodes {
		out.NodeLat[newIdx] = g.NodeLat[oldIdx]
		out.NodeLon[newIdx] = g.NodeLon[oldIdx]
	}
	return out
}
