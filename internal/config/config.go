// Package config defines the bench run configuration and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - All values are fixed at SETUP time; nothing mutates a Config after Load.
// - External errors must be wrapped via this package's error helpers.
package config

// Default run parameter constants.
const (
	defaultWorkers        = 10
	defaultDurationS      = 60
	defaultPoolSize       = 50
	defaultInitialRecords = 10_000_000
	defaultReportS        = 10
	defaultGraceS         = 10
	defaultPort           = 5432
)

// Connection holds database connection parameters.
type Connection struct {
	// Host is the database server hostname.
	Host string `koanf:"host"`

	// Port is the database server port.
	Port int `koanf:"port"`

	// Database is the database name.
	Database string `koanf:"database"`

	// User is the database username.
	User string `koanf:"user"`

	// Password is the database password.
	Password string `koanf:"password"`

	// SSLMode selects the libpq-style sslmode (disable, require, verify-full, ...).
	SSLMode string `koanf:"ssl_mode"`
}

// Config contains the full run configuration. Immutable after Load.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Workers sets the number of concurrent read-modify-write workers.
	Workers int `koanf:"workers"`

	// DurationS bounds the RUNNING phase in seconds.
	DurationS int `koanf:"duration_s"`

	// PoolSize caps concurrent database connections.
	PoolSize int `koanf:"pool_size"`

	// Table is the target table name.
	Table string `koanf:"table"`

	// InitialRecords is the number of vehicle rows to seed before RUNNING.
	InitialRecords int `koanf:"initial_records"`

	// Recreate drops and recreates the table during provisioning.
	Recreate bool `koanf:"recreate"`

	// ReportIntervalS sets the live report cadence in seconds.
	ReportIntervalS int `koanf:"report_interval_s"`

	// GraceS bounds the DRAINING wait for workers in seconds.
	GraceS int `koanf:"grace_s"`

	// MetricsAddr exposes a Prometheus /metrics listener when non-empty, e.g. ":9091".
	MetricsAddr string `koanf:"metrics_addr"`

	// Connection holds the database target and credentials.
	Connection Connection `koanf:"connection"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Workers:         defaultWorkers,
		DurationS:       defaultDurationS,
		PoolSize:        defaultPoolSize,
		Table:           "vehicles",
		InitialRecords:  defaultInitialRecords,
		Recreate:        false,
		ReportIntervalS: defaultReportS,
		GraceS:          defaultGraceS,
		Connection: Connection{
			Port:     defaultPort,
			Database: "postgres",
			User:     "postgres",
			SSLMode:  "require",
		},
	}
}
