package routing

import (
	"fmt"
	"math"
	"slices"
)

const (
	// InfWeight marks an unreached node or a forbidden arc. It compares
	// greater than every finite cost.
	InfWeight = math.MaxUint32
	// InvalidID marks "no predecessor" and absent queue positions.
	InvalidID = math.MaxUint32
)

// SettleResult is the node popped by a settle step and its final cost.
type SettleResult struct {
	Node     uint32
	Distance uint32
}

// Dijkstra is a reusable single-source (or multi-source) shortest path
// search over a CSR graph. The FirstOut, Tail and Head slices are borrowed:
// they must stay unchanged for as long as the search is bound to them.
//
// A Dijkstra is allocated once and reused across queries through Reset; it
// must not be shared between goroutines.
type Dijkstra struct {
	tentativeDistance []uint32
	predecessorArc    []uint32

	wasPopped   TimestampFlags
	queue       MinIDQueue
	settleCount int

	firstOut []uint32
	tail     []uint32
	head     []uint32
}

// NewDijkstra binds a search to a graph. It panics if the arrays do not
// form a valid CSR graph.
func NewDijkstra(firstOut, tail, head []uint32) *Dijkstra {
	d := &Dijkstra{}
	d.ResetGraph(firstOut, tail, head)
	return d
}

// checkCSR panics on arrays that cannot be searched.
func checkCSR(firstOut, tail, head []uint32) {
	if len(firstOut) == 0 {
		panic("routing: empty first_out")
	}
	if firstOut[0] != 0 {
		panic(fmt.Sprintf("routing: first_out[0] = %d, want 0", firstOut[0]))
	}
	arcs := firstOut[len(firstOut)-1]
	if int(arcs) != len(tail) || int(arcs) != len(head) {
		panic(fmt.Sprintf("routing: first_out ends at %d but tail has %d and head has %d arcs", arcs, len(tail), len(head)))
	}
}

// Reset empties the queue and clears all visited flags, keeping the bound
// graph and all allocated storage.
func (d *Dijkstra) Reset() *Dijkstra {
	d.queue.Clear()
	d.wasPopped.ResetAll()
	d.settleCount = 0
	return d
}

// ResetGraph rebinds the search to another graph. Storage is kept when the
// node count is unchanged and reallocated otherwise.
func (d *Dijkstra) ResetGraph(firstOut, tail, head []uint32) *Dijkstra {
	checkCSR(firstOut, tail, head)
	sameSize := d.firstOut != nil && len(firstOut) == len(d.firstOut)

	d.firstOut = firstOut
	d.tail = tail
	d.head = head
	d.settleCount = 0

	if sameSize {
		d.queue.Clear()
		d.wasPopped.ResetAll()
		return d
	}

	n := len(firstOut) - 1
	d.tentativeDistance = make([]uint32, n)
	d.predecessorArc = make([]uint32, n)
	d.wasPopped = NewTimestampFlags(n)
	d.queue = NewMinIDQueue(n)
	return d
}

// NodeCount returns the node count of the bound graph.
func (d *Dijkstra) NodeCount() int { return len(d.firstOut) - 1 }

func (d *Dijkstra) checkNode(x uint32) {
	if d.firstOut == nil || int(x) >= len(d.firstOut)-1 {
		panic(fmt.Sprintf("routing: node %d out of range [0, %d)", x, max(len(d.firstOut)-1, 0)))
	}
}

// AddSource queues a source node with the given start cost. Several sources
// may be added before the first Settle.
func (d *Dijkstra) AddSource(id, startCost uint32) *Dijkstra {
	d.addSource(id, startCost, startCost)
	return d
}

func (d *Dijkstra) addSource(id, startCost, key uint32) {
	d.checkNode(id)
	if d.queue.ContainsID(id) {
		// Same source added twice: keep the cheaper start.
		if !d.queue.DecreaseKey(IDKeyPair{ID: id, Key: key}) {
			return
		}
	} else {
		d.queue.Push(IDKeyPair{ID: id, Key: key})
	}
	d.tentativeDistance[id] = startCost
	d.predecessorArc[id] = InvalidID
}

// IsFinished reports whether the queue is empty.
func (d *Dijkstra) IsFinished() bool { return d.queue.Empty() }

// WasNodeReached reports whether x has been settled.
func (d *Dijkstra) WasNodeReached(x uint32) bool {
	d.checkNode(x)
	return d.wasPopped.IsSet(x)
}

// Settle pops the node with the smallest tentative distance, fixes its
// distance and relaxes its outgoing arcs. It panics if the search is
// finished.
func (d *Dijkstra) Settle(w Weighter) SettleResult {
	return d.settle(w, nil)
}

// settle is shared by Dijkstra and AStar. With h == nil keys are plain
// distances; otherwise the queue key of a node is its distance plus h.
func (d *Dijkstra) settle(w Weighter, h Heuristic) SettleResult {
	if d.queue.Empty() {
		panic("routing: Settle on a finished search")
	}

	p := d.queue.Pop()
	dist := d.tentativeDistance[p.ID]
	d.wasPopped.Set(p.ID)

	for a := d.firstOut[p.ID]; a < d.firstOut[p.ID+1]; a++ {
		x := d.head[a]
		if d.wasPopped.IsSet(x) {
			continue
		}
		wt := w.Weight(a, dist)
		if wt == InfWeight {
			continue
		}
		g := saturatingAdd(dist, wt)
		if g == InfWeight {
			continue
		}
		key := g
		if h != nil {
			key = saturatingAdd(g, h.Estimate(x))
		}

		if d.queue.ContainsID(x) {
			if d.queue.DecreaseKey(IDKeyPair{ID: x, Key: key}) {
				d.tentativeDistance[x] = g
				d.predecessorArc[x] = a
			}
		} else {
			d.queue.Push(IDKeyPair{ID: x, Key: key})
			d.tentativeDistance[x] = g
			d.predecessorArc[x] = a
		}
	}

	d.settleCount++
	return SettleResult{Node: p.ID, Distance: dist}
}

func saturatingAdd(a, b uint32) uint32 {
	if s := uint64(a) + uint64(b); s < InfWeight {
		return uint32(s)
	}
	return InfWeight
}

// Run settles nodes until the queue is empty.
func (d *Dijkstra) Run(w Weighter) {
	for !d.IsFinished() {
		d.Settle(w)
	}
}

// DistanceTo returns the final distance to x, or false if x was not
// reached.
func (d *Dijkstra) DistanceTo(x uint32) (uint32, bool) {
	d.checkNode(x)
	if !d.wasPopped.IsSet(x) {
		return InfWeight, false
	}
	return d.tentativeDistance[x], true
}

// NodePathTo returns the nodes of the shortest path tree from a source to
// x, in source-to-x order. It returns nil if x was not reached.
func (d *Dijkstra) NodePathTo(x uint32) []uint32 {
	if !d.WasNodeReached(x) {
		return nil
	}
	var path []uint32
	for p := d.predecessorArc[x]; p != InvalidID; p = d.predecessorArc[x] {
		path = append(path, x)
		x = d.tail[p]
	}
	path = append(path, x)
	slices.Reverse(path)
	return path
}

// ArcPathTo returns the arcs of the shortest path tree from a source to x,
// in source-to-x order. It returns nil if x was not reached or is a source.
func (d *Dijkstra) ArcPathTo(x uint32) []uint32 {
	if !d.WasNodeReached(x) {
		return nil
	}
	var path []uint32
	for p := d.predecessorArc[x]; p != InvalidID; p = d.predecessorArc[x] {
		path = append(path, p)
		x = d.tail[p]
	}
	slices.Reverse(path)
	return path
}

// SettleCount returns the number of Settle calls since the last reset.
func (d *Dijkstra) SettleCount() int { return d.settleCount }
