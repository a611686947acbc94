package store

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound   = errors.New("vehicle not found")
	ErrNoVehicles = errors.New("no vehicles in table")
)
