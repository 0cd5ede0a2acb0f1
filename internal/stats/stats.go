// Package stats aggregates extraction activity: lifetime counters plus a
// rolling window of per-document latencies.
package stats

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
}

// WindowSnapshot aggregates the latency samples still inside the window.
type WindowSnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// Snapshot is a point-in-time aggregate of extraction activity.
type Snapshot struct {
	Documents int64          `json:"documents"`
	Pages     int64          `json:"pages"`
	Lines     int64          `json:"lines"`
	Headings  int64          `json:"headings"`
	Failures  int64          `json:"failures"`
	Latency   WindowSnapshot `json:"latency"`
}

// Tracker records extraction outcomes. Counters cover the process
// lifetime; the latency window only holds recent samples.
type Tracker struct {
	mu        sync.Mutex
	samples   []sample
	maxAge    time.Duration
	documents int64
	pages     int64
	lines     int64
	headings  int64
	failures  int64
}

func NewTracker(maxAge time.Duration) *Tracker {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Tracker{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

// RecordExtraction notes one successful extraction and its latency.
func (t *Tracker) RecordExtraction(durationMs int64, pages, lines, headings int) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.documents++
	t.pages += int64(pages)
	t.lines += int64(lines)
	t.headings += int64(headings)

	t.pruneLocked(now)
	t.samples = append(t.samples, sample{
		timestamp:  now,
		durationMs: durationMs,
	})
}

// RecordFailure notes one failed extraction.
func (t *Tracker) RecordFailure() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures++
}

func (t *Tracker) Snapshot() Snapshot {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	snap := Snapshot{
		Documents: t.documents,
		Pages:     t.pages,
		Lines:     t.lines,
		Headings:  t.headings,
		Failures:  t.failures,
	}

	t.pruneLocked(now)
	if len(t.samples) == 0 {
		return snap
	}

	values := make([]int64, 0, len(t.samples))
	var sum int64
	for _, sm := range t.samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	snap.Latency = WindowSnapshot{
		Count: len(values),
		MinMs: values[0],
		MaxMs: values[len(values)-1],
		AvgMs: float64(sum) / float64(len(values)),
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
		P99Ms: percentile(values, 99),
	}
	return snap
}

func (t *Tracker) pruneLocked(now time.Time) {
	cutoff := now.Add(-t.maxAge)
	writeIdx := 0
	for _, sm := range t.samples {
		if !sm.timestamp.Before(cutoff) {
			t.samples[writeIdx] = sm
			writeIdx++
		}
	}
	t.samples = t.samples[:writeIdx]
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
