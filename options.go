package vantage

// Option configures index construction. Mirrors the teacher's functional
// option pattern (KDOption/WithMetric/WithBackend in kdtree.go), generalized
// to the VPT/BKT facades.
type Option func(*options)

type options struct {
	width       int // required Hamming row width in bytes, 0 = any width
	leafSize    int // VPT leaf bucket size (LEAF_THRESHOLD)
	parallelism int // batch query worker count; 1 = serial
}

func defaultOptions() options {
	return options{width: 0, leafSize: 1, parallelism: 1}
}

// WithWidth pins the byte width a Hamming index accepts: Set rejects rows of
// any other width with ErrDimensionMismatch. Leave unset (0) to accept any
// width. The kernel is chosen from the built width either way: the
// fixed-width kernel when it is 8, 16, 32 or 64 bytes, otherwise the generic
// one.
func WithWidth(bytes int) Option {
	return func(o *options) { o.width = bytes }
}

// WithLeafSize overrides the VPT builder's leaf bucket threshold
// (spec.md §4.3 step 1, "implementation-chosen small constant"). Values
// less than 1 are treated as 1.
func WithLeafSize(n int) Option {
	return func(o *options) { o.leafSize = n }
}

// WithParallelism sets the number of worker goroutines used to fan a batch
// query out across independent query rows (spec.md §5 permits optional,
// transparent internal parallelism as long as results stay byte-identical
// to a serial run). n<=1 means serial execution, the default.
func WithParallelism(n int) Option {
	return func(o *options) { o.parallelism = n }
}
