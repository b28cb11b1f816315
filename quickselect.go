package vantage

// quickselectMedian partitions ids in place by their paired distance in
// dists (dists[i] corresponds to ids[i]) so that the element at position
// len(ids)/2 is in its sorted position, with every element before it no
// greater and every element after it no smaller — a linear-time (expected)
// selection, used by the VPT builder to find mu without a full O(n log n)
// sort. Returns the median distance.
//
// This is the Go-idiomatic analogue of the teacher's reach for sort.Slice
// for axis partitioning in buildKDRecursive (kdtree_gonum.go); here it is
// upgraded to true linear-time selection per spec.md §4.3's explicit
// requirement ("quickselect or equivalent") rather than an O(n log n) sort.
func quickselectMedian(ids []int64, dists []float64) float64 {
	n := len(ids)
	if n == 0 {
		return 0
	}
	k := n / 2
	lo, hi := 0, n-1
	for {
		if lo == hi {
			return dists[lo]
		}
		pivotIdx := partition(ids, dists, lo, hi, (lo+hi)/2)
		switch {
		case k == pivotIdx:
			return dists[k]
		case k < pivotIdx:
			hi = pivotIdx - 1
		default:
			lo = pivotIdx + 1
		}
	}
}

// partition performs a Lomuto partition of [lo, hi] around the value at
// pivotIdx, keeping ids and dists in lockstep, and returns the final
// resting index of the pivot.
func partition(ids []int64, dists []float64, lo, hi, pivotIdx int) int {
	pivot := dists[pivotIdx]
	swap(ids, dists, pivotIdx, hi)
	store := lo
	for i := lo; i < hi; i++ {
		if dists[i] < pivot {
			swap(ids, dists, i, store)
			store++
		}
	}
	swap(ids, dists, store, hi)
	return store
}

func swap(ids []int64, dists []float64, i, j int) {
	ids[i], ids[j] = ids[j], ids[i]
	dists[i], dists[j] = dists[j], dists[i]
}
