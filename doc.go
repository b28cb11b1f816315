// Package vantage provides exact nearest-neighbor indexes over fixed-dimension
// vector datasets: a Vantage-Point Tree (VPT) for L2, L1, Chebyshev and
// Hamming k-NN search, and a Burkhard-Keller Tree (BKT) for Hamming radius
// (threshold) search.
//
// Both index kinds are build-once, read-many: Set populates an index exactly
// once from a point matrix, after which queries are safe for concurrent
// readers. There is no incremental insert or delete after build; rebuilding
// an index replaces its state atomically.
package vantage
