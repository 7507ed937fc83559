package bench

import (
	"sort"
	"sync"
	"time"
)

// LatencyHistogram is an append-only, thread-safe recorder of duration
// samples. Workers call Record concurrently; percentiles are computed
// from a sorted snapshot after the workers join, so no sample is ever
// lost or torn.
type LatencyHistogram struct {
	mu      sync.Mutex
	samples []time.Duration
}

// NewLatencyHistogram returns an empty histogram sized for n samples.
func NewLatencyHistogram(n int) *LatencyHistogram {
	return &LatencyHistogram{samples: make([]time.Duration, 0, n)}
}

// Record appends one sample.
func (h *LatencyHistogram) Record(d time.Duration) {
	h.mu.Lock()
	h.samples = append(h.samples, d)
	h.mu.Unlock()
}

// Count returns the number of recorded samples.
func (h *LatencyHistogram) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.samples)
}

// Snapshot returns a sorted copy of the samples.
func (h *LatencyHistogram) Snapshot() []time.Duration {
	h.mu.Lock()
	out := make([]time.Duration, len(h.samples))
	copy(out, h.samples)
	h.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
