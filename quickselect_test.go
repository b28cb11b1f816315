package vantage

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuickselectMedianMatchesSortedMidpoint(t *testing.T) {
	dists := []float64{9, 1, 5, 3, 7, 2, 8, 4, 6}
	ids := make([]int64, len(dists))
	for i := range ids {
		ids[i] = int64(i)
	}
	sorted := append([]float64(nil), dists...)
	sort.Float64s(sorted)
	want := sorted[len(sorted)/2]

	got := quickselectMedian(ids, dists)
	assert.Equal(t, want, got)
}

func TestQuickselectMedianPreservesIDDistPairing(t *testing.T) {
	ids := []int64{10, 20, 30, 40, 50}
	dists := []float64{5, 1, 4, 2, 3}
	pairs := make(map[int64]float64, len(ids))
	for i, id := range ids {
		pairs[id] = dists[i]
	}

	quickselectMedian(ids, dists)

	for i, id := range ids {
		assert.Equal(t, pairs[id], dists[i], "id %d lost its paired distance", id)
	}
}

func TestQuickselectMedianSingleAndEmpty(t *testing.T) {
	assert.Equal(t, 0.0, quickselectMedian(nil, nil))

	ids := []int64{1}
	dists := []float64{42}
	assert.Equal(t, 42.0, quickselectMedian(ids, dists))
}

func TestQuickselectMedianRandomized(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		n := r.Intn(50) + 1
		dists := make([]float64, n)
		ids := make([]int64, n)
		for i := range dists {
			dists[i] = float64(r.Intn(1000))
			ids[i] = int64(i)
		}
		sorted := append([]float64(nil), dists...)
		sort.Float64s(sorted)
		want := sorted[n/2]
		got := quickselectMedian(ids, dists)
		assert.Equal(t, want, got)
	}
}
