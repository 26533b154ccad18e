package network

import "math"

const (
	noNode    = ^uint32(0)
	infWeight = uint32(math.MaxUint32)
)

// minHeap is a concrete-typed min-heap for the Dijkstra priority queue.
// Avoids the interface boxing overhead of container/heap.
type minHeap struct {
	items []pqItem
}

// pqItem is a priority queue entry; dist is millimeters from the seed.
type pqItem struct {
	node uint32
	dist uint32
}

func (h *minHeap) push(node, dist uint32) {
	h.items = append(h.items, pqItem{node, dist})
	h.siftUp(len(h.items) - 1)
}

func (h *minHeap) pop() pqItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *minHeap) empty() bool { return len(h.items) == 0 }

func (h *minHeap) reset() { h.items = h.items[:0] }

func (h *minHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].dist >= h.items[parent].dist {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *minHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].dist < h.items[smallest].dist {
			smallest = left
		}
		if right < n && h.items[right].dist < h.items[smallest].dist {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// queryState holds per-query Dijkstra scratch state, pooled across queries
// and reset via the touched list instead of reallocating.
type queryState struct {
	dist    []uint32
	pred    []uint32 // predecessor node (noNode = seed or unreached)
	touched []uint32
	pq      minHeap
}

func newQueryState(n uint32) *queryState {
	dist := make([]uint32, n)
	pred := make([]uint32, n)
	for i := range dist {
		dist[i] = infWeight
		pred[i] = noNode
	}
	return &queryState{
		dist:    dist,
		pred:    pred,
		touched: make([]uint32, 0, 1024),
		pq:      minHeap{items: make([]pqItem, 0, 256)},
	}
}

// reset clears only the touched entries for fast reuse.
func (qs *queryState) reset() {
	for _, node := range qs.touched {
		qs.dist[node] = infWeight
		qs.pred[node] = noNode
	}
	qs.touched = qs.touched[:0]
	qs.pq.reset()
}

func (qs *queryState) touch(node, dist, pred uint32) {
	if qs.dist[node] == infWeight {
		qs.touched = append(qs.touched, node)
	}
	qs.dist[node] = dist
	qs.pred[node] = pred
}
