package routing

// AStar is a goal-directed Dijkstra. Queue keys are distance plus a
// heuristic lower bound to the target; distances are always the true
// accumulated cost. With a consistent heuristic, the first settle that pops
// the target yields its shortest distance.
type AStar struct {
	Dijkstra
}

// NewAStar binds an A* search to a graph. See NewDijkstra.
func NewAStar(firstOut, tail, head []uint32) *AStar {
	a := &AStar{}
	a.Dijkstra.ResetGraph(firstOut, tail, head)
	return a
}

// Reset clears the search for a new query on the same graph.
func (a *AStar) Reset() *AStar {
	a.Dijkstra.Reset()
	return a
}

// ResetGraph rebinds the search to another graph.
func (a *AStar) ResetGraph(firstOut, tail, head []uint32) *AStar {
	a.Dijkstra.ResetGraph(firstOut, tail, head)
	return a
}

// AddSource queues a source with the given start cost. h must be the
// heuristic later passed to Settle.
func (a *AStar) AddSource(id, startCost uint32, h Heuristic) *AStar {
	a.checkNode(id)
	a.addSource(id, startCost, saturatingAdd(startCost, h.Estimate(id)))
	return a
}

// Settle pops the node with the smallest distance-plus-estimate key and
// relaxes its outgoing arcs.
func (a *AStar) Settle(w Weighter, h Heuristic) SettleResult {
	return a.settle(w, h)
}

// RunTo settles nodes until target is popped or the queue empties and
// returns the distance to target.
func (a *AStar) RunTo(w Weighter, h Heuristic, target uint32) (uint32, bool) {
	a.checkNode(target)
	for !a.IsFinished() {
		if a.Settle(w, h).Node == target {
			break
		}
	}
	return a.DistanceTo(target)
}
