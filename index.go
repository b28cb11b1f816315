package vantage

import "time"

// VPTIndex is the Vantage-Point Tree facade (C8): width-specialized
// dispatch, input validation, and batched query entry points over a single
// metric. Construct with NewVPTIndex, populate once with Set, then query
// concurrently from multiple goroutines — the index is immutable after Set
// per spec.md §5.
type VPTIndex struct {
	metric    Metric
	opts      options
	tree      *vptTree
	analytics *Analytics
}

// NewVPTIndex constructs an empty VPT index for the given metric.
func NewVPTIndex(metric Metric, opts ...Option) *VPTIndex {
	cfg := defaultOptions()
	for _, o := range opts {
		o(&cfg)
	}
	return &VPTIndex{metric: metric, opts: cfg, analytics: NewAnalytics()}
}

// Set populates the index from a point matrix. points must be [][]float32
// for MetricL2/L1/Chebyshev or [][]byte for MetricHamming; any other type,
// or a mismatch against the index's metric domain, returns ErrTypeMismatch.
// A zero-row matrix produces an empty index, not an error.
func (ix *VPTIndex) Set(points any) error {
	start := time.Now()
	var err error
	switch rows := points.(type) {
	case [][]byte:
		if ix.metric != MetricHamming {
			return ErrTypeMismatch
		}
		err = ix.setBytes(rows)
	case [][]float32:
		if ix.metric == MetricHamming {
			return ErrTypeMismatch
		}
		err = ix.setFloats(rows)
	default:
		return ErrTypeMismatch
	}
	if err == nil {
		ix.analytics.RecordBuild(time.Since(start).Nanoseconds())
	}
	return err
}

func (ix *VPTIndex) setBytes(rows [][]byte) error {
	if len(rows) == 0 {
		t := newVPTTree(ix.metric, 0, ix.opts.leafSize)
		t.bytePoints = [][]byte{}
		t.build(0)
		ix.tree = t
		return nil
	}
	dim := len(rows[0])
	if ix.opts.width != 0 && dim != ix.opts.width {
		return ErrDimensionMismatch
	}
	stored := make([][]byte, len(rows))
	for i, r := range rows {
		if len(r) != dim {
			return ErrShape
		}
		stored[i] = append([]byte(nil), r...)
	}
	t := newVPTTree(ix.metric, dim, ix.opts.leafSize)
	t.bytePoints = stored
	t.build(len(stored))
	ix.tree = t
	return nil
}

func (ix *VPTIndex) setFloats(rows [][]float32) error {
	if len(rows) == 0 {
		t := newVPTTree(ix.metric, 0, ix.opts.leafSize)
		t.floatPoints = [][]float32{}
		t.build(0)
		ix.tree = t
		return nil
	}
	dim := len(rows[0])
	if dim == 0 {
		return ErrShape
	}
	stored := make([][]float32, len(rows))
	for i, r := range rows {
		if len(r) != dim {
			return ErrShape
		}
		stored[i] = append([]float32(nil), r...)
	}
	t := newVPTTree(ix.metric, dim, ix.opts.leafSize)
	t.floatPoints = stored
	t.build(len(stored))
	ix.tree = t
	return nil
}

// Empty reports whether the index holds zero points.
func (ix *VPTIndex) Empty() bool { return ix.tree == nil || ix.tree.empty() }

// Size returns the number of indexed points.
func (ix *VPTIndex) Size() int {
	if ix.tree == nil {
		return 0
	}
	return ix.tree.size()
}

// Dim returns the built dimension, or 0 if the index is empty.
func (ix *VPTIndex) Dim() int {
	if ix.tree == nil {
		return 0
	}
	return ix.tree.dim
}

// Values returns every stored point, in original row order. The returned
// slices are copies; mutating them does not affect the index.
func (ix *VPTIndex) Values() any {
	if ix.tree == nil {
		return nil
	}
	if ix.metric == MetricHamming {
		out := make([][]byte, len(ix.tree.bytePoints))
		for i, v := range ix.tree.bytePoints {
			out[i] = append([]byte(nil), v...)
		}
		return out
	}
	out := make([][]float32, len(ix.tree.floatPoints))
	for i, v := range ix.tree.floatPoints {
		out[i] = append([]float32(nil), v...)
	}
	return out
}

// Analytics returns the index's operational statistics tracker.
func (ix *VPTIndex) Analytics() *Analytics { return ix.analytics }

// Search1NN returns the closest indexed point to each query row. It fails
// with ErrEmptyIndex if the index has never been populated or was
// populated with zero rows (spec.md §4.4's deliberate asymmetry with
// SearchKNN on an empty index).
func (ix *VPTIndex) Search1NN(queries any) ([]int64, []float64, error) {
	if ix.Empty() {
		return nil, nil, ErrEmptyIndex
	}
	qf, qb, q, err := ix.validateQueries(queries)
	if err != nil {
		return nil, nil, err
	}
	start := time.Now()
	ids := make([]int64, q)
	dists := make([]float64, q)
	runBatch(q, ix.opts.parallelism, func(row int) {
		var id int64
		var d float64
		if ix.metric == MetricHamming {
			id, d, _ = ix.tree.search1NN(nil, qb[row])
		} else {
			id, d, _ = ix.tree.search1NN(qf[row], nil)
		}
		ids[row] = id
		dists[row] = d
	})
	ix.analytics.RecordQuery(time.Since(start).Nanoseconds())
	ix.analytics.RecordSelections(ids)
	return ids, dists, nil
}

// SearchKNN returns up to k nearest indexed points for each query row,
// sorted ascending by distance. If the index is empty, every row's result
// is an empty (not nil-erroring) pair of slices. If k > N, each row's
// result has length N rather than being padded.
func (ix *VPTIndex) SearchKNN(queries any, k int) ([][]int64, [][]float64, error) {
	if k < 1 {
		return nil, nil, ErrInvalidArgument
	}
	if ix.Empty() {
		q, err := queryRowCount(queries)
		if err != nil {
			return nil, nil, err
		}
		ids := make([][]int64, q)
		dists := make([][]float64, q)
		return ids, dists, nil
	}
	qf, qb, q, err := ix.validateQueries(queries)
	if err != nil {
		return nil, nil, err
	}
	start := time.Now()
	ids := make([][]int64, q)
	dists := make([][]float64, q)
	runBatch(q, ix.opts.parallelism, func(row int) {
		if ix.metric == MetricHamming {
			ids[row], dists[row] = ix.tree.searchKNN(nil, qb[row], k)
		} else {
			ids[row], dists[row] = ix.tree.searchKNN(qf[row], nil, k)
		}
	})
	ix.analytics.RecordQuery(time.Since(start).Nanoseconds())
	for _, row := range ids {
		ix.analytics.RecordSelections(row)
	}
	return ids, dists, nil
}

// validateQueries type-asserts and shape-checks a query batch against the
// index's metric domain and built dimension.
func (ix *VPTIndex) validateQueries(queries any) (qf [][]float32, qb [][]byte, n int, err error) {
	switch rows := queries.(type) {
	case [][]byte:
		if ix.metric != MetricHamming {
			return nil, nil, 0, ErrTypeMismatch
		}
		for _, r := range rows {
			if len(r) != ix.tree.dim {
				return nil, nil, 0, ErrDimensionMismatch
			}
		}
		return nil, rows, len(rows), nil
	case [][]float32:
		if ix.metric == MetricHamming {
			return nil, nil, 0, ErrTypeMismatch
		}
		for _, r := range rows {
			if len(r) != ix.tree.dim {
				return nil, nil, 0, ErrDimensionMismatch
			}
		}
		return rows, nil, len(rows), nil
	default:
		return nil, nil, 0, ErrTypeMismatch
	}
}

// queryRowCount returns the row count of a query batch without requiring a
// built index, used by SearchKNN's empty-index fast path.
func queryRowCount(queries any) (int, error) {
	switch rows := queries.(type) {
	case [][]byte:
		return len(rows), nil
	case [][]float32:
		return len(rows), nil
	default:
		return 0, ErrTypeMismatch
	}
}

// MarshalBinary serializes the index to the C7 binary format.
func (ix *VPTIndex) MarshalBinary() ([]byte, error) {
	t := ix.tree
	if t == nil {
		t = newVPTTree(ix.metric, 0, ix.opts.leafSize)
		t.build(0)
	}
	return marshalVPT(t)
}

// UnmarshalBinary replaces the index's state with the tree encoded in data.
func (ix *VPTIndex) UnmarshalBinary(data []byte) error {
	t, err := unmarshalVPT(data)
	if err != nil {
		return err
	}
	ix.metric = t.metric
	ix.tree = t
	if ix.analytics == nil {
		ix.analytics = NewAnalytics()
	}
	return nil
}
