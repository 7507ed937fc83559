package bench

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStatsZeroSuccess(t *testing.T) {
	// A definition with zero successful iterations reports all derived
	// statistics as zero so the summary row can always render.
	hist := NewLatencyHistogram(0)
	stats := ComputeStats("dead", hist, 0, 10, 0, 0, time.Second)

	assert.Equal(t, 10, stats.Failures)
	assert.Zero(t, stats.Success)
	assert.Zero(t, stats.Throughput)
	assert.Zero(t, stats.QPS)
	assert.Zero(t, stats.AvgResults)
	assert.Zero(t, stats.LatencyP50)
	assert.Zero(t, stats.LatencyP99)
}

func TestComputeStatsDerivation(t *testing.T) {
	hist := NewLatencyHistogram(4)
	for _, d := range []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		30 * time.Millisecond,
		40 * time.Millisecond,
	} {
		hist.Record(d)
	}
	stats := ComputeStats("q", hist, 4, 1, 0, 8, 100*time.Millisecond)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 25*time.Millisecond, stats.LatencyAvg)
	assert.Equal(t, 10*time.Millisecond, stats.LatencyMin)
	assert.Equal(t, 40*time.Millisecond, stats.LatencyMax)
	assert.Equal(t, 20*time.Millisecond, stats.LatencyP50)
	assert.Equal(t, 40*time.Millisecond, stats.LatencyP99)
	assert.InDelta(t, 1000.0/25.0, stats.Throughput, 0.001)
	assert.InDelta(t, 2.0, stats.AvgResults, 0.001)
	assert.InDelta(t, 40.0, stats.QPS, 0.001)
}

func TestPercentileExactCount(t *testing.T) {
	sorted := make([]time.Duration, 100)
	for i := range sorted {
		sorted[i] = time.Duration(i+1) * time.Millisecond
	}
	assert.Equal(t, 50*time.Millisecond, pct(sorted, 50))
	assert.Equal(t, 95*time.Millisecond, pct(sorted, 95))
	assert.Equal(t, 99*time.Millisecond, pct(sorted, 99))
	assert.Equal(t, time.Millisecond, pct(sorted[:1], 50))
}

func TestHistogramConcurrentRecord(t *testing.T) {
	hist := NewLatencyHistogram(0)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				hist.Record(time.Millisecond)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 8000, hist.Count())
}

func TestMedianStatsPicksByP50(t *testing.T) {
	runs := []QueryStats{
		{LatencyP50: 30 * time.Millisecond},
		{LatencyP50: 10 * time.Millisecond},
		{LatencyP50: 20 * time.Millisecond},
	}
	assert.Equal(t, 20*time.Millisecond, MedianStats(runs).LatencyP50)
}

func TestSteadyState(t *testing.T) {
	steady, _ := SteadyState([]QueryStats{{QPS: 100}, {QPS: 102}, {QPS: 98}}, 0.05)
	assert.True(t, steady)

	steady, dev := SteadyState([]QueryStats{{QPS: 100}, {QPS: 200}}, 0.05)
	assert.False(t, steady)
	require.Greater(t, dev, 0.05)
}
