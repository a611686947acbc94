package run

import "time"

// Default run configuration constants.
const (
	defaultWorkerCount    = 10
	defaultDuration       = 60 * time.Second
	defaultReportInterval = 10 * time.Second
	defaultGracePeriod    = 10 * time.Second
	defaultRecentWindow   = 100
)
