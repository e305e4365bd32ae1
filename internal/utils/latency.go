package utils

import (
	"sort"
	"sync"
	"time"
)

// LatencyTracker keeps a sliding window of request durations so callers
// can log tail latency, such as the prediction p95, without carrying a
// full histogram.
type LatencyTracker struct {
	mu      sync.RWMutex
	window  []time.Duration
	maxSize int
}

// NewLatencyTracker creates a tracker holding at most maxSize samples.
func NewLatencyTracker(maxSize int) *LatencyTracker {
	if maxSize <= 0 {
		maxSize = 512
	}
	return &LatencyTracker{maxSize: maxSize}
}

// Observe records one duration, evicting the oldest sample when the
// window is full.
func (l *LatencyTracker) Observe(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.window = append(l.window, d)
	if len(l.window) > l.maxSize {
		copy(l.window[0:], l.window[1:])
		l.window = l.window[:l.maxSize]
	}
}

// Percentile returns the duration at percentile p in [0,100] over the
// current window, or zero when nothing has been observed.
func (l *LatencyTracker) Percentile(p float64) time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.window) == 0 {
		return 0
	}
	if p <= 0 {
		return l.fastest()
	}
	if p >= 100 {
		return l.slowest()
	}

	sorted := append([]time.Duration(nil), l.window...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	index := int((p / 100.0) * float64(len(sorted)-1))
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

// Count returns the number of samples currently in the window.
func (l *LatencyTracker) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.window)
}

func (l *LatencyTracker) fastest() time.Duration {
	if len(l.window) == 0 {
		return 0
	}
	best := l.window[0]
	for _, s := range l.window[1:] {
		if s < best {
			best = s
		}
	}
	return best
}

func (l *LatencyTracker) slowest() time.Duration {
	if len(l.window) == 0 {
		return 0
	}
	worst := l.window[0]
	for _, s := range l.window[1:] {
		if s > worst {
			worst = s
		}
	}
	return worst
}
