package vantage

import "math"

// vptNode is an arena-stored Vantage-Point Tree node. Per spec.md §9's
// design note, the tree is a build-once, read-many structure stored as a
// flat []vptNode arena addressed by int32 handles rather than
// pointer-linked structs: this gives good traversal locality and makes
// C7 serialization a straight arena walk instead of a pointer graph walk.
//
// A node is a leaf when isLeaf is set; otherwise it is internal and
// left/right (-1 meaning "no child") partition the subtree by distance to
// pivotID against mu. boundsLeft/boundsRight cache the [min,max] distance
// from this node's pivot observed in each child subtree, used by the k-NN
// engine to prune a "near" descent that provably cannot improve on tau.
type vptNode struct {
	isLeaf  bool
	leafIDs []int64

	pivotID int64
	mu      float64
	left    int32
	right   int32

	boundsLeft  [2]float64 // [min, max] distance from pivot over the left subtree
	boundsRight [2]float64 // [min, max] distance from pivot over the right subtree
}

const noChild int32 = -1

// vptTree is the built index body shared by every metric: the point
// storage plus the node arena. The facade (index.go) wraps this with
// validation, width dispatch, and the public API.
type vptTree struct {
	metric   Metric
	dim      int
	leafSize int

	floatPoints [][]float32 // populated for MetricL2/L1/Chebyshev
	bytePoints  [][]byte    // populated for MetricHamming
	hamming     func(a, b []byte) uint32

	nodes []vptNode
	root  int32
}

// newVPTTree constructs an empty tree shell for the given metric; Set-time
// validation and point copying happens in the facade.
func newVPTTree(metric Metric, dim, leafSize int) *vptTree {
	if leafSize < 1 {
		leafSize = 1
	}
	t := &vptTree{metric: metric, dim: dim, leafSize: leafSize, root: noChild}
	if metric == MetricHamming {
		t.hamming = hammingKernel(dim)
	}
	return t
}

// distTo computes the distance from point id's stored coordinates to the
// given query vector, dispatching on metric.
func (t *vptTree) distTo(id int64, queryF []float32, queryB []byte) float64 {
	if t.metric == MetricHamming {
		return float64(t.hamming(queryB, t.bytePoints[id]))
	}
	return floatDistance(t.metric, queryF, t.floatPoints[id])
}

// distBetween computes the distance between two stored points by id; used
// during the build when computing distances from a candidate pivot to the
// rest of its working set.
func (t *vptTree) distBetween(a, b int64) float64 {
	if t.metric == MetricHamming {
		return float64(t.hamming(t.bytePoints[a], t.bytePoints[b]))
	}
	return floatDistance(t.metric, t.floatPoints[a], t.floatPoints[b])
}

// build constructs the tree body over all currently-stored points (ids
// 0..N-1) and sets t.root. Pivot selection is the first element of each
// working set (spec.md §9's resolved open question); median selection is
// linear-time (quickselectMedian); ties at exactly mu land in the right
// subtree.
func (t *vptTree) build(n int) {
	if n == 0 {
		t.root = noChild
		return
	}
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = int64(i)
	}
	t.nodes = make([]vptNode, 0, 2*n)
	t.root = t.buildNode(ids)
}

// buildNode recursively partitions a working set of ids into a subtree and
// returns its arena handle.
func (t *vptTree) buildNode(ids []int64) int32 {
	if len(ids) <= t.leafSize {
		handle := int32(len(t.nodes))
		t.nodes = append(t.nodes, vptNode{isLeaf: true, leafIDs: append([]int64(nil), ids...), left: noChild, right: noChild})
		return handle
	}

	pivot := ids[0]
	rest := ids[1:]
	dists := make([]float64, len(rest))
	for i, id := range rest {
		dists[i] = t.distBetween(pivot, id)
	}

	// quickselectMedian permutes a working copy to find mu without a full
	// sort; the subsequent partition below is a fresh O(n) pass over the
	// original (rest, dists) pairing so the "< mu left, >= mu right" rule
	// (with ties landing right) is applied exactly, regardless of how the
	// selection step left the arrays ordered.
	selIDs := append([]int64(nil), rest...)
	selDists := append([]float64(nil), dists...)
	mu := quickselectMedian(selIDs, selDists)

	var leftIDs, rightIDs []int64
	var leftMin, leftMax, rightMin, rightMax float64
	leftMin, rightMin = math.Inf(1), math.Inf(1)
	leftMax, rightMax = math.Inf(-1), math.Inf(-1)
	for i, id := range rest {
		d := dists[i]
		if d < mu {
			leftIDs = append(leftIDs, id)
			if d < leftMin {
				leftMin = d
			}
			if d > leftMax {
				leftMax = d
			}
		} else {
			rightIDs = append(rightIDs, id)
			if d < rightMin {
				rightMin = d
			}
			if d > rightMax {
				rightMax = d
			}
		}
	}

	var leftHandle, rightHandle int32 = noChild, noChild
	if len(leftIDs) > 0 {
		leftHandle = t.buildNode(leftIDs)
	}
	if len(rightIDs) > 0 {
		rightHandle = t.buildNode(rightIDs)
	}

	handle := int32(len(t.nodes))
	t.nodes = append(t.nodes, vptNode{
		pivotID:     pivot,
		mu:          mu,
		left:        leftHandle,
		right:       rightHandle,
		boundsLeft:  [2]float64{leftMin, leftMax},
		boundsRight: [2]float64{rightMin, rightMax},
	})
	return handle
}

// empty reports whether the tree has never been populated or was
// populated with zero points.
func (t *vptTree) empty() bool {
	return t.root == noChild && len(t.floatPoints) == 0 && len(t.bytePoints) == 0
}

func (t *vptTree) size() int {
	if t.metric == MetricHamming {
		return len(t.bytePoints)
	}
	return len(t.floatPoints)
}
