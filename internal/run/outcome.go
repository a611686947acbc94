// Package run implements the concurrent workload engine: workers, the
// metrics aggregator and the run coordinator.
package run

import "time"

// FailureClass buckets iteration failures for reporting.
type FailureClass string

// Failure classes.
const (
	// FailureConnection covers pool exhaustion, network and auth failures.
	FailureConnection FailureClass = "connection"
	// FailureData covers missing keys, decode failures and constraint violations.
	FailureData FailureClass = "data"
)

// Outcome is the timed result of one worker iteration. Produced by a Worker
// immediately after completing (or failing) one read-modify-write cycle and
// consumed by the Aggregator; never persisted beyond the run.
type Outcome struct {
	WorkerID int
	Start    time.Time
	Elapsed  time.Duration
	Success  bool
	Class    FailureClass // empty on success
}
