package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// componentTestGraph has three weakly connected components:
//
//	0 -> 2 <- 3        {0, 2, 3}
//	1 <-> 4 -> 6       {1, 4, 6}
//	5                  {5}
func componentTestGraph() *Graph {
	g := buildCSR(7, []Edge{
		{From: 0, To: 2, Weight: 10},
		{From: 3, To: 2, Weight: 20},
		{From: 1, To: 4, Weight: 30},
		{From: 4, To: 1, Weight: 30},
		{From: 4, To: 6, Weight: 40},
	})
	g.NodeLat = []float64{1.0, 1.1, 1.2, 1.3, 1.4, 1.5, 1.6}
	g.NodeLon = []float64{103.0, 103.1, 103.2, 103.3, 103.4, 103.5, 103.6}
	return g
}

func TestComponents(t *testing.T) {
	label, sizes := Components(componentTestGraph())

	assert.Equal(t, []uint32{0, 1, 0, 0, 1, 2, 1}, label)
	assert.Equal(t, []uint32{3, 3, 1}, sizes)
}

func TestLargestComponentTieGoesToSmallestNode(t *testing.T) {
	assert.Equal(t, []uint32{0, 2, 3}, LargestComponent(componentTestGraph()))
}

func TestLargestComponentFollowsOneWayArcs(t *testing.T) {
	g := componentTestGraph()
	// Link node 5 into the second component with a single one-way arc.
	edges := []Edge{
		{From: 0, To: 2, Weight: 10},
		{From: 3, To: 2, Weight: 20},
		{From: 1, To: 4, Weight: 30},
		{From: 4, To: 1, Weight: 30},
		{From: 4, To: 6, Weight: 40},
		{From: 5, To: 6, Weight: 50},
	}
	linked := buildCSR(g.NumNodes, edges)

	assert.Equal(t, []uint32{1, 4, 5, 6}, LargestComponent(linked))
}

func TestFilterToComponentIsValidCSR(t *testing.T) {
	g := componentTestGraph()
	filtered := FilterToComponent(g, LargestComponent(g))

	require.NoError(t, Validate(filtered.FirstOut, filtered.Head))
	assert.Equal(t, uint32(3), filtered.NumNodes)
	assert.Equal(t, uint32(2), filtered.NumEdges)
	assert.Equal(t, InvertFirstOut(filtered.FirstOut), filtered.Tail)

	// 0 -> 2 and 3 -> 2 become 0 -> 1 and 2 -> 1.
	assert.Equal(t, []uint32{0, 2}, filtered.Tail)
	assert.Equal(t, []uint32{1, 1}, filtered.Head)
	assert.Equal(t, []uint32{10, 20}, filtered.Weight)

	assert.Equal(t, []float64{1.0, 1.2, 1.3}, filtered.NodeLat)
	assert.Equal(t, []float64{103.0, 103.2, 103.3}, filtered.NodeLon)
}

func TestFilterToComponentRenumbersInGivenOrder(t *testing.T) {
	g := componentTestGraph()
	filtered := FilterToComponent(g, []uint32{3, 2, 0})

	require.NoError(t, Validate(filtered.FirstOut, filtered.Head))
	assert.Equal(t, []uint32{0, 1, 1, 2}, filtered.FirstOut)
	assert.Equal(t, []uint32{1, 1}, filtered.Head)
	assert.Equal(t, []uint32{20, 10}, filtered.Weight)
	assert.Equal(t, []float64{1.3, 1.2, 1.0}, filtered.NodeLat)
}

func TestFilteredGraphVectorExport(t *testing.T) {
	g := componentTestGraph()
	filtered := FilterToComponent(g, LargestComponent(g))

	dir := t.TempDir()
	require.NoError(t, SaveVectors(dir, filtered))
	loaded, err := LoadVectors(dir)
	require.NoError(t, err)

	assert.Equal(t, filtered.FirstOut, loaded.FirstOut)
	assert.Equal(t, filtered.Tail, loaded.Tail)
	assert.Equal(t, filtered.Head, loaded.Head)
	assert.Equal(t, filtered.Weight, loaded.Weight)
	require.Len(t, loaded.NodeLat, 3)
	for i := range filtered.NodeLat {
		assert.InDelta(t, filtered.NodeLat[i], loaded.NodeLat[i], 1e-5)
		assert.InDelta(t, filtered.NodeLon[i], loaded.NodeLon[i], 1e-4)
	}
}

func TestComponentsEmptyGraph(t *testing.T) {
	g := &Graph{FirstOut: []uint32{0}}
	assert.Nil(t, LargestComponent(g))

	label, sizes := Components(g)
	assert.Empty(t, label)
	assert.Empty(t, sizes)

	filtered := FilterToComponent(g, nil)
	assert.Zero(t, filtered.NumNodes)
	assert.Zero(t, filtered.NumEdges)
	assert.Equal(t, []uint32{0}, filtered.FirstOut)
}
