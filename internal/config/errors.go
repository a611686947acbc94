package config

import "errors"

// Sentinel kinds for configuration errors.
var (
	ErrInvalidWorkers  = errors.New("workers must not be negative")
	ErrInvalidPoolSize = errors.New("pool_size must be positive")
	ErrInvalidDuration = errors.New("duration_s must not be negative")
	ErrInvalidTable    = errors.New("table must be a valid SQL identifier")
)
