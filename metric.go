package vantage

import (
	"math"
	"math/bits"
	"runtime"

	"golang.org/x/sys/cpu"
	"gonum.org/v1/gonum/floats"
)

// runtimeIsARM64 is evaluated once at package init.
var runtimeIsARM64 = runtime.GOARCH == "arm64"

// Metric identifies the distance function an index is built over.
type Metric int

const (
	// MetricL2 is the Euclidean distance over float32 vectors.
	MetricL2 Metric = iota
	// MetricL1 is the Manhattan (taxicab) distance over float32 vectors.
	MetricL1
	// MetricChebyshev is the L-infinity (max-coordinate) distance over
	// float32 vectors.
	MetricChebyshev
	// MetricHamming is the bit-count distance over equal-length byte
	// vectors.
	MetricHamming
)

// String returns a human-readable name for the metric.
func (m Metric) String() string {
	switch m {
	case MetricL2:
		return "L2"
	case MetricL1:
		return "L1"
	case MetricChebyshev:
		return "Chebyshev"
	case MetricHamming:
		return "Hamming"
	default:
		return "unknown"
	}
}

// isFloatMetric reports whether m operates on float32 vectors.
func (m Metric) isFloatMetric() bool {
	return m == MetricL2 || m == MetricL1 || m == MetricChebyshev
}

// hasPopcount reports whether the running CPU exposes a hardware
// population-count instruction. Fixed-width Hamming kernels use it to
// decide between the unrolled fixed-width path and the generic loop
// (8-byte words, then a byte-at-a-time tail); math/bits.OnesCount64 itself is already lowered
// to the hardware instruction by the compiler when available, so this is a
// documentation/dispatch aid rather than a correctness requirement.
func hasPopcount() bool {
	if cpu.X86.HasPOPCNT {
		return true
	}
	// ARMv8's base instruction set always includes a population-count
	// instruction (CNT/VCNT); there is no separate feature flag for it.
	return runtimeIsARM64
}

// floatDistance computes the Lp-norm distance between two equal-length
// float32 vectors for the three real-valued metrics. L2 uses p=2, L1 uses
// p=1, Chebyshev is the p=+Inf limit. gonum's floats.Distance already
// accumulates in float64, which satisfies the 1e-6 relative-tolerance
// requirement against a naive double-precision reference.
func floatDistance(metric Metric, a, b []float32) float64 {
	// floats.Distance operates on []float64; converting per-call keeps the
	// kernel allocation-free for the common small-D case via a stack-local
	// buffer when D is small, and a heap buffer otherwise.
	var abuf, bbuf [64]float64
	af := abuf[:0]
	bf := bbuf[:0]
	if len(a) <= 64 {
		af, bf = abuf[:len(a)], bbuf[:len(b)]
	} else {
		af, bf = make([]float64, len(a)), make([]float64, len(b))
	}
	for i, v := range a {
		af[i] = float64(v)
	}
	for i, v := range b {
		bf[i] = float64(v)
	}
	switch metric {
	case MetricL2:
		return floats.Distance(af, bf, 2)
	case MetricL1:
		return floats.Distance(af, bf, 1)
	case MetricChebyshev:
		return floats.Distance(af, bf, math.Inf(1))
	default:
		return floats.Distance(af, bf, 2)
	}
}

// hammingDistanceGeneric computes the bit-count of a XOR b over an
// arbitrary-width byte vector. This is the variable-D fallback required by
// spec.md C1; fixed-width callers use the specializations below.
func hammingDistanceGeneric(a, b []byte) uint32 {
	var total uint32
	n := len(a)
	i := 0
	for ; i+8 <= n; i += 8 {
		x := beUint64(a[i : i+8])
		y := beUint64(b[i : i+8])
		total += uint32(bits.OnesCount64(x ^ y))
	}
	for ; i < n; i++ {
		total += uint32(bits.OnesCount8(a[i] ^ b[i]))
	}
	return total
}

// beUint64 packs 8 bytes into a uint64; byte order is irrelevant for a
// popcount, so this avoids importing encoding/binary for a single helper.
func beUint64(b []byte) uint64 {
	_ = b[7]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

// hammingDistance8 is the SIMD-width specialization for D=8 bytes.
func hammingDistance8(a, b []byte) uint32 {
	return uint32(bits.OnesCount64(beUint64(a) ^ beUint64(b)))
}

// hammingDistance16 is the SIMD-width specialization for D=16 bytes.
func hammingDistance16(a, b []byte) uint32 {
	return uint32(bits.OnesCount64(beUint64(a[0:8])^beUint64(b[0:8])) +
		bits.OnesCount64(beUint64(a[8:16])^beUint64(b[8:16])))
}

// hammingDistance32 is the SIMD-width specialization for D=32 bytes.
func hammingDistance32(a, b []byte) uint32 {
	var total int
	for i := 0; i < 32; i += 8 {
		total += bits.OnesCount64(beUint64(a[i:i+8]) ^ beUint64(b[i:i+8]))
	}
	return uint32(total)
}

// hammingDistance64 is the SIMD-width specialization for D=64 bytes.
func hammingDistance64(a, b []byte) uint32 {
	var total int
	for i := 0; i < 64; i += 8 {
		total += bits.OnesCount64(beUint64(a[i:i+8]) ^ beUint64(b[i:i+8]))
	}
	return uint32(total)
}

// hammingKernel returns the width-specialized Hamming kernel for width D,
// falling back to the generic variable-width kernel when D does not match
// one of the fixed SIMD widths, or when the running CPU lacks a hardware
// popcount instruction (in which case the unrolled specializations buy
// nothing over the generic word-then-byte loop).
func hammingKernel(d int) func(a, b []byte) uint32 {
	if !hasPopcount() {
		return hammingDistanceGeneric
	}
	switch d {
	case 8:
		return hammingDistance8
	case 16:
		return hammingDistance16
	case 32:
		return hammingDistance32
	case 64:
		return hammingDistance64
	default:
		return hammingDistanceGeneric
	}
}

// Distance computes the distance between two equal-length float32 vectors
// under the given real-valued metric. It returns ErrTypeMismatch if metric
// is MetricHamming (use HammingDistance instead) and ErrDimensionMismatch
// if a and b differ in length.
func Distance(metric Metric, a, b []float32) (float64, error) {
	if metric == MetricHamming {
		return 0, ErrTypeMismatch
	}
	if !metric.isFloatMetric() {
		return 0, ErrInvalidArgument
	}
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	return floatDistance(metric, a, b), nil
}

// HammingDistance computes the bit-count distance between two equal-length
// byte vectors, dispatching to a fixed-width kernel when the shared length
// is 8, 16, 32 or 64 bytes.
func HammingDistance(a, b []byte) (uint32, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	return hammingKernel(len(a))(a, b), nil
}
