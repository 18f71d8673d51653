package routing

import (
	"fmt"
	"time"
)

// QueryStats summarizes the running time of a query batch.
type QueryStats struct {
	Max   time.Duration
	Total time.Duration
	Count int
}

// Avg returns the mean query time.
func (s QueryStats) Avg() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// HeuristicFunc builds the heuristic for one query target.
type HeuristicFunc func(target uint32) Heuristic

// RunQueries answers point-to-point queries one after another on a single
// reused AStar. For query i it returns the distance from sources[i] to
// targets[i] (InfWeight if unreachable) and the number of settled nodes.
// Building the heuristic counts towards the query time.
func RunQueries(as *AStar, w Weighter, heuristic HeuristicFunc, sources, targets []uint32) (distance, settlings []uint32, stats QueryStats, err error) {
	if len(sources) != len(targets) {
		return nil, nil, stats, fmt.Errorf("source and target vectors differ in length: %d != %d", len(sources), len(targets))
	}
	n := uint32(as.NodeCount())
	for i := range sources {
		if sources[i] >= n || targets[i] >= n {
			return nil, nil, stats, fmt.Errorf("query %d: node id out of range [0, %d)", i, n)
		}
	}

	distance = make([]uint32, len(sources))
	settlings = make([]uint32, len(sources))
	for i := range sources {
		start := time.Now()

		h := heuristic(targets[i])
		as.Reset().AddSource(sources[i], 0, h)
		distance[i], _ = as.RunTo(w, h, targets[i])
		settlings[i] = uint32(as.SettleCount())

		elapsed := time.Since(start)
		stats.Max = max(stats.Max, elapsed)
		stats.Total += elapsed
		stats.Count++
	}
	return distance, settlings, stats, nil
}
