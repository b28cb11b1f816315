package vantage

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bruteForceThreshold(points [][]byte, query []byte, tthresh int) ([]int64, []uint32) {
	var ids []int64
	var dists []uint32
	for i, p := range points {
		d, _ := HammingDistance(query, p)
		if int(d) <= tthresh {
			ids = append(ids, int64(i))
			dists = append(dists, d)
		}
	}
	return ids, dists
}

func sortParallel(ids []int64, dists []uint32) {
	idx := make([]int, len(ids))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return ids[idx[a]] < ids[idx[b]] })
	sortedIDs := make([]int64, len(ids))
	sortedDists := make([]uint32, len(ids))
	for i, j := range idx {
		sortedIDs[i] = ids[j]
		sortedDists[i] = dists[j]
	}
	copy(ids, sortedIDs)
	copy(dists, sortedDists)
}

func TestBKTFindThresholdMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(21))
	points := make([][]byte, 150)
	for i := range points {
		buf := make([]byte, 8)
		r.Read(buf)
		points[i] = buf
	}
	ix := NewBKTIndex(WithWidth(8))
	require.NoError(t, ix.Set(points))

	query := make([]byte, 8)
	r.Read(query)

	for _, tthresh := range []int{0, 3, 8, 20} {
		gotIDs, gotDists, _, err := ix.FindThreshold([][]byte{query}, tthresh)
		require.NoError(t, err)
		wantIDs, wantDists := bruteForceThreshold(points, query, tthresh)

		got := append([]int64(nil), gotIDs[0]...)
		gotD := append([]uint32(nil), gotDists[0]...)
		sortParallel(got, gotD)
		sortParallel(wantIDs, wantDists)

		assert.Equal(t, wantIDs, got, "threshold %d", tthresh)
		assert.Equal(t, wantDists, gotD, "threshold %d", tthresh)
	}
}

func TestBKTFindThresholdIncludesDuplicates(t *testing.T) {
	points := [][]byte{
		{0x00, 0x00},
		{0x00, 0x00}, // exact duplicate of point 0
		{0xFF, 0x00},
	}
	ix := NewBKTIndex(WithWidth(2))
	require.NoError(t, ix.Set(points))

	ids, dists, values, err := ix.FindThreshold([][]byte{{0x00, 0x00}}, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{0, 1}, ids[0])
	assert.Equal(t, []uint32{0, 0}, dists[0])
	for _, v := range values[0] {
		assert.Equal(t, []byte{0x00, 0x00}, v)
	}
}

func TestBKTFindThresholdOnEmptyIndexReturnsEmptyNoError(t *testing.T) {
	ix := NewBKTIndex()
	require.NoError(t, ix.Set([][]byte{}))
	ids, dists, values, err := ix.FindThreshold([][]byte{{1, 2}}, 2)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Empty(t, ids[0])
	assert.Empty(t, dists[0])
	assert.Empty(t, values[0])
}

func TestBKTFindThresholdRejectsNegativeT(t *testing.T) {
	ix := NewBKTIndex()
	require.NoError(t, ix.Set([][]byte{{1, 2}}))
	_, _, _, err := ix.FindThreshold([][]byte{{1, 2}}, -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBKTSetRejectsDimensionMismatchWithWidth(t *testing.T) {
	ix := NewBKTIndex(WithWidth(8))
	err := ix.Set([][]byte{{1, 2}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestBKTSetRejectsRaggedRows(t *testing.T) {
	ix := NewBKTIndex()
	err := ix.Set([][]byte{{1, 2}, {1, 2, 3}})
	assert.ErrorIs(t, err, ErrShape)
}

func TestBKTSizeDeduplicatesExactMatches(t *testing.T) {
	points := [][]byte{{1, 2}, {1, 2}, {3, 4}}
	ix := NewBKTIndex()
	require.NoError(t, ix.Set(points))
	assert.Equal(t, 2, ix.Size())
}

func TestBKTMarshalUnmarshalRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	points := make([][]byte, 80)
	for i := range points {
		buf := make([]byte, 16)
		r.Read(buf)
		points[i] = buf
	}
	ix := NewBKTIndex(WithWidth(16))
	require.NoError(t, ix.Set(points))

	data, err := ix.MarshalBinary()
	require.NoError(t, err)

	ix2 := NewBKTIndex()
	require.NoError(t, ix2.UnmarshalBinary(data))
	assert.Equal(t, ix.Size(), ix2.Size())

	query := points[0]
	ids1, dists1, _, err := ix.FindThreshold([][]byte{query}, 5)
	require.NoError(t, err)
	ids2, dists2, _, err := ix2.FindThreshold([][]byte{query}, 5)
	require.NoError(t, err)

	got1, gd1 := append([]int64(nil), ids1[0]...), append([]uint32(nil), dists1[0]...)
	got2, gd2 := append([]int64(nil), ids2[0]...), append([]uint32(nil), dists2[0]...)
	sortParallel(got1, gd1)
	sortParallel(got2, gd2)
	assert.Equal(t, got1, got2)
	assert.Equal(t, gd1, gd2)
}

func TestBKTUnmarshalRejectsCorruptInput(t *testing.T) {
	ix := NewBKTIndex()
	err := ix.UnmarshalBinary([]byte{9, 9, 9})
	assert.ErrorIs(t, err, ErrCorruptInput)
}

func TestBKTValuesDimAndEmpty(t *testing.T) {
	ix := NewBKTIndex()
	assert.True(t, ix.Empty())
	assert.Equal(t, 0, ix.Dim())
	assert.Nil(t, ix.Values())

	points := [][]byte{{1, 2, 3}, {4, 5, 6}}
	require.NoError(t, ix.Set(points))
	assert.False(t, ix.Empty())
	assert.Equal(t, 3, ix.Dim())
	assert.ElementsMatch(t, points, ix.Values())
}

func TestBKTAnalyticsRecordsBuildAndQuery(t *testing.T) {
	ix := NewBKTIndex()
	require.NoError(t, ix.Set([][]byte{{1, 2}, {3, 4}}))
	_, _, _, err := ix.FindThreshold([][]byte{{1, 2}}, 1)
	require.NoError(t, err)

	snap := ix.Analytics().Snapshot()
	assert.EqualValues(t, 1, snap.BuildCount)
	assert.EqualValues(t, 1, snap.QueryCount)
}
