package internal

// recomputeQueue is the height-ordered worklist of dirty computeds waiting
// to be recomputed eagerly during a flush, whether or not they currently
// have any listeners of their own. Height
// ordering guarantees a node's own dependencies have already settled by the
// time it's processed, so a diamond-shaped graph recomputes every node at
// most once per flush - without it, correctness would still hold (Read()
// lazily recomputes stale sources on demand) but a deep fan-in graph could
// redundantly recompute the same node from multiple incoming edges.
type recomputeQueue struct {
	min, max int
	buckets  []*queueEntry // indexed by height
	lookup   map[*Computed]*queueEntry
}

type queueEntry struct {
	node       *Computed
	prev, next *queueEntry
}

func newRecomputeQueue() *recomputeQueue {
	return &recomputeQueue{
		buckets: make([]*queueEntry, 64),
		lookup:  make(map[*Computed]*queueEntry),
	}
}

func (q *recomputeQueue) grow(height int) {
	if height < len(q.buckets) {
		return
	}
	next := make([]*queueEntry, height*2+1)
	copy(next, q.buckets)
	q.buckets = next
}

func (q *recomputeQueue) insert(node *Computed) {
	if node.HasFlag(FlagInHeap) {
		return
	}
	node.AddFlag(FlagInHeap)

	height := node.Height()
	q.grow(height)

	entry := &queueEntry{node: node}
	q.lookup[node] = entry

	if q.buckets[height] == nil {
		q.buckets[height] = entry
		entry.prev = entry
		entry.next = nil
	} else {
		head := q.buckets[height]
		tail := head.prev
		tail.next = entry
		entry.prev = tail
		entry.next = nil
		head.prev = entry
	}

	if height > q.max {
		q.max = height
	}
}

func (q *recomputeQueue) remove(node *Computed) {
	if !node.HasFlag(FlagInHeap) {
		return
	}
	node.RemoveFlag(FlagInHeap)

	entry, ok := q.lookup[node]
	if !ok {
		return
	}
	delete(q.lookup, node)

	height := node.Height()

	if entry.prev == entry {
		q.buckets[height] = nil
		entry.prev, entry.next = nil, nil
		return
	}

	head := q.buckets[height]
	if entry == head {
		q.buckets[height] = entry.next
	} else {
		entry.prev.next = entry.next
	}

	next := entry.next
	if next == nil {
		next = head
	}
	next.prev = entry.prev

	entry.prev, entry.next = nil, nil
}

// drain processes every queued entry in ascending height order, leaving the
// queue empty. process may itself insert new, higher-height entries (a
// recompute that changes value dirties its own listeners); those are
// visited later in the same pass since the outer loop re-reads q.max.
func (q *recomputeQueue) drain(process func(*Computed)) {
	for q.min = 0; q.min <= q.max; q.min++ {
		for {
			entry := q.buckets[q.min]
			if entry == nil {
				break
			}
			q.remove(entry.node)
			process(entry.node)
		}
	}
	q.max = 0
}

func (q *recomputeQueue) empty() bool {
	return len(q.lookup) == 0
}
