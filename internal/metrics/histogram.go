package metrics

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Window keeps the most recent duration samples in milliseconds and
// summarizes them for the health endpoint.
type Window struct {
	samples []float64
	maxSize int
	mu      sync.Mutex
}

// NewWindow creates a window holding at most maxSize samples.
func NewWindow(maxSize int) *Window {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &Window{samples: make([]float64, 0, maxSize), maxSize: maxSize}
}

// Record adds a sample, dropping the oldest fifth when the window is full.
func (w *Window) Record(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.samples = append(w.samples, float64(d.Microseconds())/1000.0)
	if len(w.samples) > w.maxSize {
		w.samples = append(w.samples[:0], w.samples[w.maxSize/5:]...)
	}
}

// LatencyStats summarizes a window in milliseconds.
type LatencyStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean_ms"`
	P50   float64 `json:"p50_ms"`
	P95   float64 `json:"p95_ms"`
	P99   float64 `json:"p99_ms"`
	Max   float64 `json:"max_ms"`
}

// Stats returns the current summary. An empty window yields zeros.
func (w *Window) Stats() LatencyStats {
	w.mu.Lock()
	sorted := make([]float64, len(w.samples))
	copy(sorted, w.samples)
	w.mu.Unlock()

	if len(sorted) == 0 {
		return LatencyStats{}
	}
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return LatencyStats{
		Count: len(sorted),
		Mean:  sum / float64(len(sorted)),
		P50:   percentile(sorted, 50),
		P95:   percentile(sorted, 95),
		P99:   percentile(sorted, 99),
		Max:   sorted[len(sorted)-1],
	}
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []float64, p float64) float64 {
	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	fraction := index - float64(lower)
	return sorted[lower]*(1-fraction) + sorted[upper]*fraction
}
