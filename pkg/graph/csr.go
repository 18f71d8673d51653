package graph

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidGraph is wrapped by every CSR validation failure.
var ErrInvalidGraph = errors.New("invalid graph")

// Edge is a directed weighted edge between compact node indices.
type Edge struct {
	From, To, Weight uint32
}

// Validate checks the CSR invariants: FirstOut is non-empty, starts at 0,
// is non-decreasing and ends at len(head), and every head is a node id.
func Validate(firstOut, head []uint32) error {
	if len(firstOut) == 0 {
		return fmt.Errorf("%w: first_out is empty", ErrInvalidGraph)
	}
	if firstOut[0] != 0 {
		return fmt.Errorf("%w: first_out[0]=%d, must be 0", ErrInvalidGraph, firstOut[0])
	}
	numNodes := uint32(len(firstOut) - 1)
	if int(firstOut[numNodes]) != len(head) {
		return fmt.Errorf("%w: first_out ends at %d but head has %d arcs", ErrInvalidGraph, firstOut[numNodes], len(head))
	}
	for i := uint32(1); i <= numNodes; i++ {
		if firstOut[i] < firstOut[i-1] {
			return fmt.Errorf("%w: first_out not monotonic at %d: %d < %d", ErrInvalidGraph, i, firstOut[i], firstOut[i-1])
		}
	}
	for i, h := range head {
		if h >= numNodes {
			return fmt.Errorf("%w: head[%d]=%d >= node count %d", ErrInvalidGraph, i, h, numNodes)
		}
	}
	return nil
}

// InvertFirstOut expands a CSR offset array into the tail of every arc.
func InvertFirstOut(firstOut []uint32) []uint32 {
	if len(firstOut) == 0 {
		return nil
	}
	tail := make([]uint32, firstOut[len(firstOut)-1])
	for u := 0; u < len(firstOut)-1; u++ {
		for a := firstOut[u]; a < firstOut[u+1]; a++ {
			tail[a] = uint32(u)
		}
	}
	return tail
}

// buildCSR sorts edges by (From, To) and lays them out as a CSR graph with
// numNodes nodes. Coordinates are left to the caller.
func buildCSR(numNodes uint32, edges []Edge) *Graph {
	slices.SortFunc(edges, func(a, b Edge) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		return cmp.Compare(a.To, b.To)
	})

	numEdges := uint32(len(edges))
	firstOut := make([]uint32, numNodes+1)
	head := make([]uint32, numEdges)
	weight := make([]uint32, numEdges)

	for i, e := range edges {
		firstOut[e.From+1]++
		head[i] = e.To
		weight[i] = e.Weight
	}
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	return &Graph{
		NumNodes: numNodes,
		NumEdges: numEdges,
		FirstOut: firstOut,
		Tail:     InvertFirstOut(firstOut),
		Head:     head,
		Weight:   weight,
	}
}
