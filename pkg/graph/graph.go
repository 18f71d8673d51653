package graph

// Graph is a directed graph in CSR (compressed sparse row) format.
// FirstOut[u]..FirstOut[u+1] are the arcs leaving u; Tail and Head give the
// endpoints of each arc.
type Graph struct {
	NumNodes uint32
	NumEdges uint32
	FirstOut []uint32  // len: NumNodes + 1
	Tail     []uint32  // len: NumEdges; derived from FirstOut
	Head     []uint32  // len: NumEdges
	Weight   []uint32  // len: NumEdges; distance in meters
	NodeLat  []float64 // len: NumNodes
	NodeLon  []float64 // len: NumNodes
}

// EdgesFrom returns the range of edge indices for edges originating from node u.
func (g *Graph) EdgesFrom(u uint32) (start, end uint32) {
	return g.FirstOut[u], g.FirstOut[u+1]
}
