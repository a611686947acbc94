package telemetry

import "errors"

// Sentinel kinds for telemetry errors.
var (
	ErrCorruptPayload = errors.New("corrupt telemetry payload")
)
