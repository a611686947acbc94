package store

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool tuning constants.
const (
	minConnsDivisor   = 4
	maxConnLifetime   = 1 * time.Hour
	maxConnIdleTime   = 5 * time.Minute
	healthCheckPeriod = 1 * time.Minute
)

// ConnConfig holds the database target, credentials and pool sizing.
type ConnConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	PoolSize int
}

// Connect builds the shared connection pool and verifies connectivity.
// SETUP-time failures here are fatal for the run.
func Connect(ctx context.Context, cc ConnConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(buildDSN(cc))
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	poolConfig.MaxConns = int32(cc.PoolSize)
	poolConfig.MinConns = int32(cc.PoolSize / minConnsDivisor)
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "fleetbench"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// buildDSN assembles a postgres URL, escaping credentials.
func buildDSN(cc ConnConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cc.User, cc.Password),
		Host:   cc.Host + ":" + strconv.Itoa(cc.Port),
		Path:   "/" + cc.Database,
	}

	q := url.Values{}
	if cc.SSLMode != "" {
		q.Set("sslmode", cc.SSLMode)
	}
	u.RawQuery = q.Encode()

	return u.String()
}
