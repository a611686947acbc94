package run

import "errors"

// Sentinel kinds for coordination anomalies.
var (
	ErrDrainTimeout = errors.New("workers failed to drain within grace period")
)
