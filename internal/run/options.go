package run

import (
	"time"

	"github.com/okian/fleetbench/pkg/logger"
)

// AggregatorOption applies a configuration option to the Aggregator.
type AggregatorOption func(*Aggregator)

// WithRecentWindow sets the size of the recent-sample ring backing the
// live report line.
func WithRecentWindow(size int) AggregatorOption {
	return func(a *Aggregator) {
		if size > 0 {
			a.recent = make([]float64, size)
		}
	}
}

// Option applies a configuration option to the Coordinator.
type Option func(*Coordinator)

// WithWorkerCount sets the number of concurrent workers.
func WithWorkerCount(count int) Option {
	return func(c *Coordinator) {
		if count >= 0 {
			c.workers = count
		}
	}
}

// WithDuration bounds the RUNNING phase.
func WithDuration(d time.Duration) Option {
	return func(c *Coordinator) {
		if d >= 0 {
			c.duration = d
		}
	}
}

// WithReportInterval sets the live report cadence.
func WithReportInterval(interval time.Duration) Option {
	return func(c *Coordinator) {
		if interval > 0 {
			c.reportInterval = interval
		}
	}
}

// WithGracePeriod bounds the DRAINING wait for workers.
func WithGracePeriod(grace time.Duration) Option {
	return func(c *Coordinator) {
		if grace > 0 {
			c.grace = grace
		}
	}
}

// WithLogger sets a custom logger for the coordinator.
func WithLogger(logger logger.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}
