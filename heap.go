package vantage

import "math"

// boundedHeap is a fixed-capacity max-heap over (distance, id) pairs, keyed
// by distance. It is the accumulator used by the VPT k-NN engine: the
// largest of the current best-k sits at the root so a new candidate can be
// rejected in O(1) and an accepted candidate replaces the root in O(log k).
//
// Grounded on the teacher's knnHeap (kdtree_gonum.go), generalized from a
// package-private []knnItem slice heap to a capacity-bounded accumulator
// that also reports tau(), the pruning radius the VPT engine needs.
type boundedHeap struct {
	cap   int
	items []heapItem
}

type heapItem struct {
	dist float64
	id   int64
}

func newBoundedHeap(capacity int) *boundedHeap {
	return &boundedHeap{cap: capacity, items: make([]heapItem, 0, capacity)}
}

// Len returns the number of candidates currently held.
func (h *boundedHeap) Len() int { return len(h.items) }

// Full reports whether the heap holds cap candidates.
func (h *boundedHeap) Full() bool { return len(h.items) >= h.cap }

// Tau returns the current pruning radius: +Inf while the heap has not yet
// accumulated cap candidates (the engine must not short-circuit before k
// candidates are found), otherwise the largest distance currently held.
func (h *boundedHeap) Tau() float64 {
	if !h.Full() {
		return posInf
	}
	return h.items[0].dist
}

// Consider inserts (dist, id) if the heap is not yet full, or replaces the
// current worst candidate if dist is strictly closer. Ties at the current
// worst are not replaced, matching a simple "closer only" acceptance rule.
func (h *boundedHeap) Consider(dist float64, id int64) {
	if h.cap <= 0 {
		return
	}
	if !h.Full() {
		h.items = append(h.items, heapItem{dist: dist, id: id})
		h.siftUp(len(h.items) - 1)
		return
	}
	if dist < h.items[0].dist {
		h.items[0] = heapItem{dist: dist, id: id}
		h.siftDown(0)
	}
}

// DrainSortedAscending empties the heap and returns its contents sorted by
// ascending distance, ties broken by ascending id for determinism.
func (h *boundedHeap) DrainSortedAscending() ([]int64, []float64) {
	n := len(h.items)
	ids := make([]int64, n)
	dists := make([]float64, n)
	items := append([]heapItem(nil), h.items...)
	sortHeapItems(items)
	for i, it := range items {
		ids[i] = it.id
		dists[i] = it.dist
	}
	h.items = h.items[:0]
	return ids, dists
}

var posInf = math.Inf(1)

func sortHeapItems(items []heapItem) {
	// Small-N insertion sort is sufficient: k is typically small relative
	// to N, and this runs once per query after the heap is drained.
	for i := 1; i < len(items); i++ {
		j := i
		for j > 0 && less(items[j], items[j-1]) {
			items[j], items[j-1] = items[j-1], items[j]
			j--
		}
	}
}

func less(a, b heapItem) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.id < b.id
}

func (h *boundedHeap) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !h.greater(i, p) {
			break
		}
		h.items[i], h.items[p] = h.items[p], h.items[i]
		i = p
	}
}

func (h *boundedHeap) siftDown(i int) {
	n := len(h.items)
	for {
		l, r := 2*i+1, 2*i+2
		largest := i
		if l < n && h.greater(l, largest) {
			largest = l
		}
		if r < n && h.greater(r, largest) {
			largest = r
		}
		if largest == i {
			return
		}
		h.items[i], h.items[largest] = h.items[largest], h.items[i]
		i = largest
	}
}

// greater reports whether items[i] should sit above items[j] in the max-heap.
func (h *boundedHeap) greater(i, j int) bool {
	return h.items[i].dist > h.items[j].dist
}
