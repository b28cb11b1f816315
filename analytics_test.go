package vantage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyticsRecordQueryTracksMinMaxAvg(t *testing.T) {
	a := NewAnalytics()
	a.RecordQuery(100)
	a.RecordQuery(50)
	a.RecordQuery(200)

	snap := a.Snapshot()
	assert.EqualValues(t, 3, snap.QueryCount)
	assert.EqualValues(t, 50, snap.MinQueryTimeNs)
	assert.EqualValues(t, 200, snap.MaxQueryTimeNs)
	assert.EqualValues(t, 200, snap.LastQueryTime)
	assert.EqualValues(t, (100+50+200)/3, snap.AvgQueryTimeNs)
}

func TestAnalyticsSnapshotBeforeAnyQueryHasZeroMin(t *testing.T) {
	a := NewAnalytics()
	snap := a.Snapshot()
	assert.EqualValues(t, 0, snap.QueryCount)
	assert.EqualValues(t, 0, snap.MinQueryTimeNs)
	assert.EqualValues(t, 0, snap.AvgQueryTimeNs)
}

func TestAnalyticsRecordBuild(t *testing.T) {
	a := NewAnalytics()
	a.RecordBuild(42)
	a.RecordBuild(99)
	snap := a.Snapshot()
	assert.EqualValues(t, 2, snap.BuildCount)
	assert.EqualValues(t, 99, snap.LastBuildTime)
}

func TestAnalyticsTopSelected(t *testing.T) {
	a := NewAnalytics()
	a.RecordSelections([]int64{1, 2, 2, 3, 3, 3})

	top := a.TopSelected(2)
	assert.Len(t, top, 2)
	assert.Equal(t, IDFrequency{ID: 3, Count: 3}, top[0])
	assert.Equal(t, IDFrequency{ID: 2, Count: 2}, top[1])
}

func TestAnalyticsTopSelectedNegativeNReturnsAll(t *testing.T) {
	a := NewAnalytics()
	a.RecordSelections([]int64{1, 2, 3})
	assert.Len(t, a.TopSelected(-1), 3)
}
