package run

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/fleetbench/internal/adapters/store"
	"github.com/okian/fleetbench/pkg/logger"
	"github.com/okian/fleetbench/pkg/metrics"
)

// Coordinator drives one bench run through RUNNING, DRAINING and DONE.
// Shared resources (pool, provisioned table) are established by the caller
// during SETUP and handed in as a Store.
type Coordinator struct {
	store          store.Store
	workers        int
	duration       time.Duration
	reportInterval time.Duration
	grace          time.Duration
	logger         logger.Logger
}

// New creates a coordinator with configuration options.
func New(st store.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:          st,
		workers:        defaultWorkerCount,
		duration:       defaultDuration,
		reportInterval: defaultReportInterval,
		grace:          defaultGracePeriod,
		logger:         logger.Get().Named("coordinator"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run executes the bench and returns the final snapshot. A worker missing
// the drain grace period is reported as an anomaly, not an error.
func (c *Coordinator) Run(ctx context.Context) (Snapshot, error) {
	// Degenerate runs complete immediately with a zero report.
	if c.workers == 0 || c.duration == 0 {
		now := time.Now()
		agg := NewAggregator(now)
		agg.Freeze(now)
		snap := agg.Snapshot()
		reportFinal(ctx, c.logger, snap, 0)
		return snap, nil
	}

	c.logger.Info(ctx, "starting bench run",
		logger.Int("workers", c.workers),
		logger.Duration("duration", c.duration),
		logger.Duration("reportInterval", c.reportInterval))

	metrics.UpdateWorkerCount(c.workers)

	start := time.Now()
	agg := NewAggregator(start)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// stop ends worker loops at their next iteration boundary without
	// touching the context their in-flight statements run against.
	stop := make(chan struct{})

	// RUNNING: launch exactly c.workers worker loops.
	var wg sync.WaitGroup
	var active int32
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		atomic.AddInt32(&active, 1)
		w := NewWorker(i, c.store, agg)
		go func() {
			defer wg.Done()
			defer atomic.AddInt32(&active, -1)
			w.Run(runCtx, stop)
		}()
	}

	// Periodic live reporter.
	reporterDone := make(chan struct{})
	go func() {
		defer close(reporterDone)
		ticker := time.NewTicker(c.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-runCtx.Done():
				return
			case <-ticker.C:
				snap := agg.Snapshot()
				reportLive(ctx, c.logger, snap)
				metrics.UpdateThroughput(snap.Throughput)
			}
		}
	}()

	// Block until the deadline fires or the caller cancels.
	select {
	case <-time.After(c.duration):
	case <-ctx.Done():
	}

	// DRAINING: pin the throughput clock and signal stop. In-flight
	// iterations keep their context and run to completion; only workers
	// still going after the grace period get their operations aborted.
	agg.Freeze(time.Now())
	close(stop)

	stragglers := c.waitForWorkers(&wg, &active)
	if stragglers > 0 {
		cancel()
	}
	<-reporterDone

	// DONE: final snapshot and report.
	snap := agg.Snapshot()
	metrics.UpdateThroughput(snap.Throughput)
	reportFinal(ctx, c.logger, snap, stragglers)

	return snap, nil
}

// waitForWorkers waits for all workers to observe cancellation, bounded by
// the grace period. Returns the number of workers still running when the
// grace period expired, zero on a clean drain.
func (c *Coordinator) waitForWorkers(wg *sync.WaitGroup, active *int32) int {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return 0
	case <-time.After(c.grace):
		return int(atomic.LoadInt32(active))
	}
}
