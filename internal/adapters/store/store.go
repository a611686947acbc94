// Package store abstracts vehicle persistence behind a narrow fetch/persist contract.
//
// The bench core only ever talks to the Store interface; the concrete
// Postgres implementation lives behind it so the worker loop can be
// exercised against an in-memory double in tests.
package store

import (
	"context"

	"github.com/okian/fleetbench/internal/domain/vehicle"
)

// Store is the persistence contract used by the workload engine.
type Store interface {
	// RandomVIN selects a random target key from the table.
	// Returns ErrNoVehicles when the table is empty.
	RandomVIN(ctx context.Context) (string, error)

	// Fetch reads one record by VIN. Returns ErrNotFound for a missing key.
	Fetch(ctx context.Context, vin string) (*vehicle.Record, error)

	// Persist writes back a mutated record, advancing its updated timestamp.
	// Returns ErrNotFound when the VIN no longer exists.
	Persist(ctx context.Context, rec *vehicle.Record) error

	// Count reports the number of records in the table.
	Count(ctx context.Context) (int64, error)
}
