package store

import (
	"github.com/okian/fleetbench/pkg/logger"
)

// Option applies a configuration option to the Postgres store.
type Option func(*Postgres)

// WithTable sets the target table name.
func WithTable(table string) Option {
	return func(s *Postgres) {
		if table != "" {
			s.table = table
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(logger logger.Logger) Option {
	return func(s *Postgres) {
		if logger != nil {
			s.logger = logger
		}
	}
}
