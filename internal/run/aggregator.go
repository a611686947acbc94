package run

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Percentile ranks used by snapshots.
const (
	p95Rank = 95.0
	p99Rank = 99.0
)

// Aggregator is the thread-safe accumulator of operation outcomes. Workers
// only append; snapshots take a consistent copy under the same mutex and do
// the heavy computation outside the critical section.
type Aggregator struct {
	mu sync.Mutex

	start time.Time
	end   time.Time // zero until Freeze; pins elapsed at drain start

	total   int64
	success int64
	failure int64

	// samples holds every latency observation in milliseconds.
	samples []float64

	// recent is a ring of the latest observations backing the live report.
	recent      []float64
	recentNext  int
	recentCount int

	failures map[FailureClass]int64
}

// NewAggregator creates an aggregator with its clock anchored at start.
func NewAggregator(start time.Time, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		start:    start,
		recent:   make([]float64, defaultRecentWindow),
		failures: make(map[FailureClass]int64),
	}

	// Apply all options
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Record appends one operation outcome. Safe for arbitrarily many
// concurrent callers.
func (a *Aggregator) Record(o Outcome) {
	ms := float64(o.Elapsed) / float64(time.Millisecond)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	if o.Success {
		a.success++
	} else {
		a.failure++
		a.failures[o.Class]++
	}

	a.samples = append(a.samples, ms)

	a.recent[a.recentNext] = ms
	a.recentNext = (a.recentNext + 1) % len(a.recent)
	if a.recentCount < len(a.recent) {
		a.recentCount++
	}
}

// Freeze pins the elapsed clock at the moment DRAINING starts so that
// throughput excludes drain time. Only the first call takes effect.
func (a *Aggregator) Freeze(at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.end.IsZero() {
		a.end = at
	}
}

// Snapshot returns statistics consistent at a single point in time.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	total, success, failure := a.total, a.success, a.failure

	var elapsed time.Duration
	if a.end.IsZero() {
		elapsed = time.Since(a.start)
	} else {
		elapsed = a.end.Sub(a.start)
	}

	samples := make([]float64, len(a.samples))
	copy(samples, a.samples)

	recent := make([]float64, a.recentCount)
	copy(recent, a.recent[:a.recentCount])

	failures := make(map[FailureClass]int64, len(a.failures))
	for class, count := range a.failures {
		failures[class] = count
	}
	a.mu.Unlock()

	// Sorting and statistics happen outside the lock so producers are
	// never blocked on snapshot computation.
	snap := Snapshot{
		Total:    total,
		Success:  success,
		Failure:  failure,
		Elapsed:  elapsed,
		Failures: failures,
	}

	if elapsed > 0 {
		snap.Throughput = float64(total) / elapsed.Seconds()
	}

	if len(samples) > 0 {
		sort.Float64s(samples)
		snap.MeanMS = mean(samples)
		snap.MinMS = samples[0]
		snap.MaxMS = samples[len(samples)-1]
		snap.P95MS = percentile(samples, p95Rank)
		snap.P99MS = percentile(samples, p99Rank)
	}

	if len(recent) > 0 {
		sort.Float64s(recent)
		snap.RecentMeanMS = mean(recent)
		snap.RecentP95MS = percentile(recent, p95Rank)
	}

	return snap
}

// Snapshot is a point-in-time statistical summary of the run so far.
type Snapshot struct {
	Total   int64
	Success int64
	Failure int64

	// Elapsed is wall time since run start, pinned at drain start once frozen.
	Elapsed time.Duration

	// Throughput is completed operations per elapsed second.
	Throughput float64

	// Full-run latency distribution in milliseconds.
	MeanMS float64
	MinMS  float64
	MaxMS  float64
	P95MS  float64
	P99MS  float64

	// Recent-window latency backing the live report line.
	RecentMeanMS float64
	RecentP95MS  float64

	Failures map[FailureClass]int64
}

// SuccessRate returns the success percentage, zero for an empty snapshot.
func (s Snapshot) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Success) / float64(s.Total) * 100
}

// percentile returns the nearest-rank percentile of a sorted sample set:
// the value at index ceil(p/100*N)-1. Deterministic for a fixed sample set.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}

	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}

// mean returns the arithmetic mean of a non-empty sample set.
func mean(samples []float64) float64 {
	var sum float64
	for _, v := range samples {
		sum += v
	}
	return sum / float64(len(samples))
}
