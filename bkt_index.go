package vantage

import "time"

// BKTIndex is the Burkhard-Keller Tree facade (C8) for Hamming threshold
// search over fixed-width byte vectors.
type BKTIndex struct {
	opts      options
	tree      *bktTree
	analytics *Analytics
}

// NewBKTIndex constructs an empty BKT index. Use WithWidth to pin the byte
// width Set accepts; the Hamming kernel is selected from the built width
// (fixed-width for 8/16/32/64 bytes, generic otherwise).
func NewBKTIndex(opts ...Option) *BKTIndex {
	cfg := defaultOptions()
	for _, o := range opts {
		o(&cfg)
	}
	return &BKTIndex{opts: cfg, analytics: NewAnalytics()}
}

// Set populates the index from a matrix of byte-vectors of fixed width D.
// A zero-row matrix produces an empty index, not an error.
func (ix *BKTIndex) Set(points [][]byte) error {
	start := time.Now()
	if len(points) == 0 {
		t := newBKTTree(0)
		t.build(nil)
		ix.tree = t
		ix.analytics.RecordBuild(time.Since(start).Nanoseconds())
		return nil
	}
	dim := len(points[0])
	if ix.opts.width != 0 && dim != ix.opts.width {
		return ErrDimensionMismatch
	}
	stored := make([][]byte, len(points))
	for i, r := range points {
		if len(r) != dim {
			return ErrShape
		}
		stored[i] = append([]byte(nil), r...)
	}
	t := newBKTTree(dim)
	t.build(stored)
	ix.tree = t
	ix.analytics.RecordBuild(time.Since(start).Nanoseconds())
	return nil
}

// Empty reports whether the index holds zero points.
func (ix *BKTIndex) Empty() bool { return ix.tree == nil || ix.tree.empty() }

// Size returns the number of unique stored points (duplicates excluded).
func (ix *BKTIndex) Size() int {
	if ix.tree == nil {
		return 0
	}
	return ix.tree.size()
}

// Dim returns the built width, or 0 if the index is empty.
func (ix *BKTIndex) Dim() int {
	if ix.tree == nil {
		return 0
	}
	return ix.tree.width
}

// Values returns every distinct stored byte-vector.
func (ix *BKTIndex) Values() [][]byte {
	if ix.tree == nil {
		return nil
	}
	vals := ix.tree.values()
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = append([]byte(nil), v...)
	}
	return out
}

// Analytics returns the index's operational statistics tracker.
func (ix *BKTIndex) Analytics() *Analytics { return ix.analytics }

// FindThreshold returns, for every query row, the ids, distances and
// values of every indexed point within Hamming distance T. Each row's
// inner slices are independent and may be empty; an empty index yields an
// empty inner list for every row with no failure.
func (ix *BKTIndex) FindThreshold(queries [][]byte, t int) ([][]int64, [][]uint32, [][][]byte, error) {
	if t < 0 {
		return nil, nil, nil, ErrInvalidArgument
	}
	if ix.Empty() {
		ids := make([][]int64, len(queries))
		dists := make([][]uint32, len(queries))
		vals := make([][][]byte, len(queries))
		return ids, dists, vals, nil
	}
	for _, q := range queries {
		if len(q) != ix.tree.width {
			return nil, nil, nil, ErrDimensionMismatch
		}
	}
	start := time.Now()
	n := len(queries)
	ids := make([][]int64, n)
	dists := make([][]uint32, n)
	vals := make([][][]byte, n)
	runBatch(n, ix.opts.parallelism, func(row int) {
		ids[row], dists[row], vals[row] = ix.tree.findThreshold(queries[row], t)
	})
	ix.analytics.RecordQuery(time.Since(start).Nanoseconds())
	for _, row := range ids {
		ix.analytics.RecordSelections(row)
	}
	return ids, dists, vals, nil
}

// MarshalBinary serializes the index to the C7 binary format.
func (ix *BKTIndex) MarshalBinary() ([]byte, error) {
	t := ix.tree
	if t == nil {
		t = newBKTTree(ix.opts.width)
		t.build(nil)
	}
	return marshalBKT(t)
}

// UnmarshalBinary replaces the index's state with the tree encoded in data.
func (ix *BKTIndex) UnmarshalBinary(data []byte) error {
	t, err := unmarshalBKT(data)
	if err != nil {
		return err
	}
	ix.tree = t
	if ix.analytics == nil {
		ix.analytics = NewAnalytics()
	}
	return nil
}
