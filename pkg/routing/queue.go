package routing

// IDKeyPair is a queue entry.
type IDKeyPair struct {
	ID  uint32
	Key uint32
}

// MinIDQueue is a binary min-heap over ids in [0, n) with decrease-key.
// Each id is present at most once. Ties on Key pop the smaller ID first.
type MinIDQueue struct {
	heap []IDKeyPair
	pos  []uint32 // id -> index into heap, InvalidID if absent
}

// NewMinIDQueue creates an empty queue for ids in [0, n).
func NewMinIDQueue(n int) MinIDQueue {
	pos := make([]uint32, n)
	for i := range pos {
		pos[i] = InvalidID
	}
	return MinIDQueue{heap: make([]IDKeyPair, 0, 256), pos: pos}
}

// IDCount returns the size of the id universe.
func (q *MinIDQueue) IDCount() int { return len(q.pos) }

// Len returns the number of queued ids.
func (q *MinIDQueue) Len() int { return len(q.heap) }

// Empty reports whether the queue holds no ids.
func (q *MinIDQueue) Empty() bool { return len(q.heap) == 0 }

// ContainsID reports whether id is queued.
func (q *MinIDQueue) ContainsID(id uint32) bool { return q.pos[id] != InvalidID }

// GetKey returns the current key of a queued id.
func (q *MinIDQueue) GetKey(id uint32) uint32 {
	if !q.ContainsID(id) {
		panic("routing: GetKey on id not in queue")
	}
	return q.heap[q.pos[id]].Key
}

// Push inserts an id that is not yet queued.
func (q *MinIDQueue) Push(p IDKeyPair) {
	if q.ContainsID(p.ID) {
		panic("routing: Push of id already in queue")
	}
	q.heap = append(q.heap, p)
	i := uint32(len(q.heap) - 1)
	q.pos[p.ID] = i
	q.siftUp(i)
}

// Peek returns the minimum entry without removing it.
func (q *MinIDQueue) Peek() IDKeyPair {
	if q.Empty() {
		panic("routing: Peek on empty queue")
	}
	return q.heap[0]
}

// Pop removes and returns the minimum entry.
func (q *MinIDQueue) Pop() IDKeyPair {
	if q.Empty() {
		panic("routing: Pop on empty queue")
	}
	top := q.heap[0]
	last := len(q.heap) - 1
	q.pos[top.ID] = InvalidID
	if last > 0 {
		q.heap[0] = q.heap[last]
		q.pos[q.heap[0].ID] = 0
	}
	q.heap = q.heap[:last]
	if last > 0 {
		q.siftDown(0)
	}
	return top
}

// DecreaseKey lowers the key of a queued id. It returns true iff the new
// key is strictly smaller than the stored one; otherwise the queue is
// unchanged.
func (q *MinIDQueue) DecreaseKey(p IDKeyPair) bool {
	i := q.pos[p.ID]
	if i == InvalidID {
		panic("routing: DecreaseKey on id not in queue")
	}
	if p.Key >= q.heap[i].Key {
		return false
	}
	q.heap[i].Key = p.Key
	q.siftUp(i)
	return true
}

// Clear removes all ids in O(Len).
func (q *MinIDQueue) Clear() {
	for _, p := range q.heap {
		q.pos[p.ID] = InvalidID
	}
	q.heap = q.heap[:0]
}

func less(a, b IDKeyPair) bool {
	if a.Key != b.Key {
		return a.Key < b.Key
	}
	return a.ID < b.ID
}

func (q *MinIDQueue) swap(i, j uint32) {
	q.heap[i], q.heap[j] = q.heap[j], q.heap[i]
	q.pos[q.heap[i].ID] = i
	q.pos[q.heap[j].ID] = j
}

func (q *MinIDQueue) siftUp(i uint32) {
	for i > 0 {
		parent := (i - 1) / 2
		if !less(q.heap[i], q.heap[parent]) {
			break
		}
		q.swap(i, parent)
		i = parent
	}
}

func (q *MinIDQueue) siftDown(i uint32) {
	n := uint32(len(q.heap))
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && less(q.heap[left], q.heap[smallest]) {
			smallest = left
		}
		if right < n && less(q.heap[right], q.heap[smallest]) {
			smallest = right
		}
		if smallest == i {
			break
		}
		q.swap(i, smallest)
		i = smallest
	}
}
