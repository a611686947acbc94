package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/okian/fleetbench/internal/domain/telemetry"
	"github.com/okian/fleetbench/internal/domain/vehicle"
	"github.com/okian/fleetbench/pkg/logger"
)

// Seeding constants.
const (
	seedBatchSize = 1000
	// minExistingRecords is the row count below which an existing table is topped up.
	minExistingRecords = 1000
	// seedLogEvery controls seeding progress log cadence, in batches.
	seedLogEvery = 100
)

// Provision creates and populates the target table. Invoked once before the
// RUNNING phase; any failure here aborts the run.
func (s *Postgres) Provision(ctx context.Context, initialRecords int, recreate bool) error {
	exists, err := s.tableExists(ctx)
	if err != nil {
		return err
	}

	if exists && recreate {
		s.logger.Info(ctx, "dropping existing table", logger.String("table", s.table))
		if _, err := s.pool.Exec(ctx, fmt.Sprintf("DROP TABLE %s", s.table)); err != nil {
			return fmt.Errorf("drop table %s: %w", s.table, err)
		}
		exists = false
	}

	if !exists {
		if err := s.createTable(ctx); err != nil {
			return err
		}
		return s.seed(ctx, initialRecords)
	}

	count, err := s.Count(ctx)
	if err != nil {
		return err
	}
	if count < minExistingRecords {
		s.logger.Info(ctx, "topping up test data", logger.Int64("current", count))
		return s.seed(ctx, initialRecords)
	}

	s.logger.Info(ctx, "table ready", logger.String("table", s.table), logger.Int64("records", count))
	return nil
}

// tableExists checks the information schema for the target table.
func (s *Postgres) tableExists(ctx context.Context) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)",
		s.table,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check table existence: %w", err)
	}
	return exists, nil
}

// createTable creates the vehicles table and its secondary indexes.
func (s *Postgres) createTable(ctx context.Context) error {
	s.logger.Info(ctx, "creating table", logger.String("table", s.table))

	ddl := fmt.Sprintf(`
		CREATE TABLE %s (
			vin VARCHAR(17) PRIMARY KEY,
			brand VARCHAR(50) NOT NULL,
			country CHAR(2) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			entries_compressed BYTEA NOT NULL,
			is_fleet_vehicle BOOLEAN DEFAULT false
		)`, s.table)
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}

	for _, column := range []string{"brand", "country"} {
		idx := fmt.Sprintf("CREATE INDEX idx_%s_%s ON %s(%s)", s.table, column, s.table, column)
		if _, err := s.pool.Exec(ctx, idx); err != nil {
			return fmt.Errorf("create index on %s: %w", column, err)
		}
	}

	return nil
}

// seed inserts generated vehicle records in batches until the table holds
// the target count. Conflicting VINs are skipped, never overwritten.
func (s *Postgres) seed(ctx context.Context, target int) error {
	current, err := s.Count(ctx)
	if err != nil {
		return err
	}

	needed := target - int(current)
	if needed <= 0 {
		return nil
	}

	s.logger.Info(ctx, "generating vehicle records", logger.Int("count", needed))

	insert := fmt.Sprintf(`
		INSERT INTO %s (vin, brand, country, entries_compressed, is_fleet_vehicle, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (vin) DO NOTHING`, s.table)

	batches := 0
	for offset := 0; offset < needed; offset += seedBatchSize {
		size := seedBatchSize
		if remaining := needed - offset; remaining < size {
			size = remaining
		}

		records, err := generateSeedRecords(int(current)+offset, size, time.Now())
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, rec := range records {
			batch.Queue(insert, rec.VIN, rec.Brand, rec.Country, rec.Payload, rec.Fleet)
		}
		if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("seed batch at offset %d: %w", offset, err)
		}

		batches++
		if batches%seedLogEvery == 0 {
			s.logger.Info(ctx, "seeding progress", logger.Int("inserted", offset+size), logger.Int("target", needed))
		}
	}

	total, err := s.Count(ctx)
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "table populated", logger.Int64("records", total))

	return nil
}

// generateSeedRecords builds one batch of vehicle records with fresh
// telemetry payloads. Pure except for randomness; no database access.
func generateSeedRecords(startIndex, n int, now time.Time) ([]vehicle.Record, error) {
	records := make([]vehicle.Record, n)
	for i := range records {
		payload, err := telemetry.Encode(telemetry.New(now))
		if err != nil {
			return nil, fmt.Errorf("generate seed payload: %w", err)
		}

		records[i] = vehicle.Record{
			VIN:       vehicle.GenerateVIN(startIndex + i),
			Brand:     vehicle.RandomBrand(),
			Country:   vehicle.RandomCountry(),
			CreatedAt: now,
			UpdatedAt: now,
			Payload:   payload,
			Fleet:     vehicle.RandomFleetFlag(),
		}
	}
	return records, nil
}
