package bench

import (
	"math"
	"sort"
	"time"
)

// ComputeStats derives the per-definition report row from the recorded
// histogram and the runner's counters. With zero successful samples
// every derived value stays zero so the summary table can always render
// the row.
func ComputeStats(name string, hist *LatencyHistogram, success, failures, empty, resultTotal int, wall time.Duration) QueryStats {
	stats := QueryStats{
		Name:     name,
		Total:    success + failures,
		Success:  success,
		Failures: failures,
		Empty:    empty,
		Duration: wall,
	}

	sorted := hist.Snapshot()
	if len(sorted) == 0 {
		return stats
	}

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}

	stats.LatencyAvg = sum / time.Duration(len(sorted))
	stats.LatencyMin = sorted[0]
	stats.LatencyMax = sorted[len(sorted)-1]
	stats.LatencyP50 = pct(sorted, 50)
	stats.LatencyP75 = pct(sorted, 75)
	stats.LatencyP90 = pct(sorted, 90)
	stats.LatencyP95 = pct(sorted, 95)
	stats.LatencyP99 = pct(sorted, 99)
	stats.AvgResults = float64(resultTotal) / float64(len(sorted))

	meanMs := float64(stats.LatencyAvg) / float64(time.Millisecond)
	if meanMs > 0 {
		stats.Throughput = 1000 / meanMs
	}
	if wall > 0 {
		stats.QPS = float64(len(sorted)) / wall.Seconds()
	}

	return stats
}

// MedianStats picks the median run by p50 latency from multiple runs of
// the same definition.
func MedianStats(runs []QueryStats) QueryStats {
	if len(runs) == 1 {
		return runs[0]
	}
	sorted := make([]QueryStats, len(runs))
	copy(sorted, runs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LatencyP50 < sorted[j].LatencyP50 })
	return sorted[len(sorted)/2]
}

// SteadyState checks if throughput variance across runs is within
// tolerance.
func SteadyState(runs []QueryStats, tolerance float64) (bool, float64) {
	if len(runs) < 2 {
		return true, 0
	}
	var sum float64
	for _, r := range runs {
		sum += r.QPS
	}
	mean := sum / float64(len(runs))
	if mean == 0 {
		return false, 0
	}

	var maxDev float64
	for _, r := range runs {
		dev := math.Abs(r.QPS-mean) / mean
		if dev > maxDev {
			maxDev = dev
		}
	}
	return maxDev <= tolerance, maxDev
}

// pct returns the exact-count percentile of a sorted sample set.
func pct(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
