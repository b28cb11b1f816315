package vantage

import "math"

// searchKNN returns the best k (id, distance) pairs for a single query,
// sorted ascending by distance, using triangle-inequality pruning with a
// running radius tau maintained by a bounded top-k heap (C2).
func (t *vptTree) searchKNN(queryF []float32, queryB []byte, k int) ([]int64, []float64) {
	if k <= 0 || t.root == noChild {
		return nil, nil
	}
	h := newBoundedHeap(k)
	t.descend(t.root, queryF, queryB, h)
	return h.DrainSortedAscending()
}

// search1NN is the k=1 specialization: the same descent as searchKNN over a
// bounded heap of capacity 1.
func (t *vptTree) search1NN(queryF []float32, queryB []byte) (int64, float64, bool) {
	if t.root == noChild {
		return 0, 0, false
	}
	h := newBoundedHeap(1)
	t.descend(t.root, queryF, queryB, h)
	if h.Len() == 0 {
		return 0, 0, false
	}
	ids, dists := h.DrainSortedAscending()
	return ids[0], dists[0], true
}

// descend visits node, considering every point therein against the
// bounded heap, then recurses into the near and far children in
// near-first order with pruning.
func (t *vptTree) descend(node int32, queryF []float32, queryB []byte, h *boundedHeap) {
	if node == noChild {
		return
	}
	n := &t.nodes[node]
	if n.isLeaf {
		for _, id := range n.leafIDs {
			d := t.distTo(id, queryF, queryB)
			h.Consider(d, id)
		}
		return
	}

	x := t.distTo(n.pivotID, queryF, queryB)
	h.Consider(x, n.pivotID)

	nearHandle, farHandle := n.left, n.right
	nearBounds := n.boundsLeft
	if x >= n.mu {
		nearHandle, farHandle = n.right, n.left
		nearBounds = n.boundsRight
	}

	if nearHandle != noChild {
		tau := h.Tau()
		if !boundsExcludeSubtree(nearBounds, x, tau) {
			t.descend(nearHandle, queryF, queryB, h)
		}
	}
	if farHandle != noChild {
		tau := h.Tau()
		if math.Abs(x-n.mu) <= tau {
			t.descend(farHandle, queryF, queryB, h)
		}
	}
}

// boundsExcludeSubtree reports whether a cached [min,max] distance-to-pivot
// bound proves that no point in the subtree can be within tau of a query
// that sits at distance x from the pivot. By the triangle inequality, any
// point p with d(pivot,p) in [min,max] satisfies
// d(query,p) >= max(0, min-x, x-max); if that lower bound exceeds tau, the
// whole subtree can be skipped.
func boundsExcludeSubtree(bounds [2]float64, x, tau float64) bool {
	min, max := bounds[0], bounds[1]
	if math.IsInf(min, 1) {
		// empty subtree, nothing to exclude (and nothing to visit either,
		// but the caller already checked the child handle is non-nil).
		return false
	}
	lowerBound := 0.0
	switch {
	case x < min:
		lowerBound = min - x
	case x > max:
		lowerBound = x - max
	}
	return lowerBound > tau
}
