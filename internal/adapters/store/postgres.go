package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/fleetbench/internal/domain/vehicle"
	"github.com/okian/fleetbench/pkg/logger"
)

// Postgres implements Store on top of a shared pgx connection pool.
// Every method acquires a connection from the pool for the duration of a
// single statement and releases it on all exit paths.
type Postgres struct {
	pool   *pgxpool.Pool
	table  string
	logger logger.Logger
}

// NewPostgres creates a Postgres store bound to the given pool.
func NewPostgres(pool *pgxpool.Pool, opts ...Option) *Postgres {
	s := &Postgres{
		pool:   pool,
		table:  "vehicles",
		logger: logger.Get().Named("store"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// RandomVIN selects a random target key server-side.
func (s *Postgres) RandomVIN(ctx context.Context) (string, error) {
	var vin string
	query := fmt.Sprintf("SELECT vin FROM %s ORDER BY RANDOM() LIMIT 1", s.table)
	if err := s.pool.QueryRow(ctx, query).Scan(&vin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNoVehicles
		}
		return "", fmt.Errorf("select random vin: %w", err)
	}
	return vin, nil
}

// Fetch reads one record by VIN.
func (s *Postgres) Fetch(ctx context.Context, vin string) (*vehicle.Record, error) {
	query := fmt.Sprintf(`
		SELECT vin, brand, country, created_at, updated_at, entries_compressed, is_fleet_vehicle
		FROM %s WHERE vin = $1`, s.table)

	var rec vehicle.Record
	err := s.pool.QueryRow(ctx, query, vin).Scan(
		&rec.VIN,
		&rec.Brand,
		&rec.Country,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&rec.Payload,
		&rec.Fleet,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("fetch %s: %w", vin, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch %s: %w", vin, err)
	}

	return &rec, nil
}

// Persist writes back the mutated payload and advances the updated timestamp.
func (s *Postgres) Persist(ctx context.Context, rec *vehicle.Record) error {
	query := fmt.Sprintf(
		"UPDATE %s SET entries_compressed = $1, updated_at = NOW() WHERE vin = $2", s.table)

	tag, err := s.pool.Exec(ctx, query, rec.Payload, rec.VIN)
	if err != nil {
		return fmt.Errorf("persist %s: %w", rec.VIN, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("persist %s: %w", rec.VIN, ErrNotFound)
	}

	return nil
}

// Count reports the number of records in the table.
func (s *Postgres) Count(ctx context.Context) (int64, error) {
	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table)
	if err := s.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// Pool exposes the underlying pool for stats reporting.
func (s *Postgres) Pool() *pgxpool.Pool {
	return s.pool
}
