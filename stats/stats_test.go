package stats

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatencyRecorderSnapshot(t *testing.T) {
	r := NewLatencyRecorder(100)
	for i := 1; i <= 100; i++ {
		r.Record(OpOrder, time.Duration(i)*time.Millisecond)
	}
	r.Record("", time.Second)
	r.Record(OpEnumerate, -time.Second)

	assert.Equal(t, []string{OpEnumerate, OpOrder}, r.Names())

	snap := r.Snapshot(false)
	require.Len(t, snap, 2)
	s := snap[OpOrder]
	assert.Equal(t, uint64(100), s.Count)
	assert.Equal(t, 1*time.Millisecond, s.Min)
	assert.Equal(t, 50*time.Millisecond, s.P50)
	assert.Equal(t, 95*time.Millisecond, s.P95)
	assert.Equal(t, 100*time.Millisecond, s.Max)
	assert.Equal(t, 50500*time.Microsecond, s.Mean)
	assert.Equal(t, time.Duration(0), snap[OpEnumerate].Max)

	r.Snapshot(true)
	assert.Empty(t, r.Snapshot(false))
	assert.Empty(t, r.Names())
}

func TestLatencyRecorderWraps(t *testing.T) {
	r := NewLatencyRecorder(4)
	for i := 1; i <= 10; i++ {
		r.Record(OpEnumerate, time.Duration(i))
	}
	s := r.Snapshot(false)[OpEnumerate]
	assert.Equal(t, uint64(10), s.Count)
	// the window holds 7..10; min, max and mean cover every sample
	assert.Equal(t, time.Duration(8), s.P50)
	assert.Equal(t, time.Duration(9), s.P95)
	assert.Equal(t, time.Duration(1), s.Min)
	assert.Equal(t, time.Duration(10), s.Max)
	assert.Equal(t, time.Duration(5), s.Mean)
}

func TestNilStatsIsSafe(t *testing.T) {
	var s *Stats
	var rec Recorder = s
	rec.RecordOp(OpOrder, 3)
	rec.Observe(OpOrder, time.Millisecond)
	assert.Nil(t, s.OpCounts())
	assert.Nil(t, s.Latencies(false))
	assert.Nil(t, s.LatencyNames())

	var r *LatencyRecorder
	r.Record("x", time.Second)
	assert.Nil(t, r.Snapshot(true))
	assert.Nil(t, r.Names())
}

func TestStatsCounts(t *testing.T) {
	s := NewStats()
	s.RecordOp(OpScalarMult, 10)
	s.RecordOp(OpScalarMult, 5)
	s.RecordOp(OpOrder, 1)
	s.RecordOp(OpCacheHit, 0)

	assert.Equal(t, map[string]uint64{OpScalarMult: 15, OpOrder: 1}, s.OpCounts())
	assert.Equal(t, []string{OpOrder, OpScalarMult}, s.Ops())

	s.Observe(OpEnumerate, 2*time.Millisecond)
	lat := s.Latencies(false)
	require.Contains(t, lat, OpEnumerate)
	assert.GreaterOrEqual(t, lat[OpEnumerate].Max, time.Millisecond)
	assert.Equal(t, []string{OpEnumerate}, s.LatencyNames())
}

func TestStatsForwardsToPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	s := NewStats().WithMetrics(m)
	s.RecordOp(OpScalarMult, 7)
	s.RecordOp(OpScalarMult, 3)
	s.Observe(OpOrder, 2*time.Millisecond)

	assert.Equal(t, float64(10), testutil.ToFloat64(m.Operations.WithLabelValues(OpScalarMult)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Durations))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "duplicate registration")
}
