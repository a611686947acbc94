package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/fleetbench/internal/adapters/store"
	"github.com/okian/fleetbench/internal/config"
	"github.com/okian/fleetbench/internal/run"
	"github.com/okian/fleetbench/pkg/logger"
	"github.com/okian/fleetbench/pkg/metrics"
)

// Metrics listener timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
	poolStatsInterval = 5 * time.Second
)

func main() {
	flags := registerFlags(flag.CommandLine, config.New())
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env), then let flags win.
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	flags.overlay(flag.CommandLine, cfg)

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	runID := uuid.NewString()
	log.Info(ctx, "starting benchmark run",
		logger.String("run_id", runID),
		logger.Int("workers", cfg.Workers),
		logger.Int("duration_s", cfg.DurationS),
		logger.Int("pool_size", cfg.PoolSize),
		logger.String("table", cfg.Table))

	if err := execute(ctx, cfg, log); err != nil {
		log.Error(ctx, "run failed", logger.String("run_id", runID), logger.Error(err))
		os.Exit(1)
	}
}

// execute performs SETUP (connect, provision), runs the benchmark, and tears
// everything down. Split out of main so defers fire before os.Exit.
func execute(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	pool, err := store.Connect(ctx, store.ConnConfig{
		Host:     cfg.Connection.Host,
		Port:     cfg.Connection.Port,
		Database: cfg.Connection.Database,
		User:     cfg.Connection.User,
		Password: cfg.Connection.Password,
		SSLMode:  cfg.Connection.SSLMode,
		PoolSize: cfg.PoolSize,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	st := store.NewPostgres(pool, store.WithTable(cfg.Table), store.WithLogger(log))

	if err := st.Provision(ctx, cfg.InitialRecords, cfg.Recreate); err != nil {
		return err
	}

	// Optional Prometheus listener. The run does not depend on it; a dead
	// listener only costs the scrape endpoint.
	if cfg.MetricsAddr != "" {
		srv := startMetricsServer(ctx, cfg.MetricsAddr, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// Mirror pool utilization into gauges for the scrape endpoint.
	statsDone := make(chan struct{})
	defer close(statsDone)
	go publishPoolStats(pool, statsDone)

	coordinator := run.New(st,
		run.WithWorkerCount(cfg.Workers),
		run.WithDuration(time.Duration(cfg.DurationS)*time.Second),
		run.WithReportInterval(time.Duration(cfg.ReportIntervalS)*time.Second),
		run.WithGracePeriod(time.Duration(cfg.GraceS)*time.Second),
		run.WithLogger(log),
	)

	_, err = coordinator.Run(ctx)
	return err
}

// cliFlags holds the parsed command-line values. Defaults come from
// config.New() so -help shows the real settings; only flags the user passed
// are overlaid onto the loaded config.
type cliFlags struct {
	host           *string
	port           *int
	database       *string
	user           *string
	password       *string
	sslMode        *string
	workers        *int
	duration       *int
	poolSize       *int
	table          *string
	initialRecords *int
	recreate       *bool
	reportInterval *int
	metricsAddr    *string
	logLevel       *string
}

// registerFlags defines all flags on fs with defaults taken from d.
func registerFlags(fs *flag.FlagSet, d *config.Config) *cliFlags {
	return &cliFlags{
		host:           fs.String("host", d.Connection.Host, "database server hostname"),
		port:           fs.Int("port", d.Connection.Port, "database server port"),
		database:       fs.String("database", d.Connection.Database, "database name"),
		user:           fs.String("user", d.Connection.User, "database username"),
		password:       fs.String("password", d.Connection.Password, "database password"),
		sslMode:        fs.String("ssl-mode", d.Connection.SSLMode, "sslmode (disable, require, verify-full, ...)"),
		workers:        fs.Int("workers", d.Workers, "number of concurrent workers"),
		duration:       fs.Int("duration", d.DurationS, "run duration in seconds"),
		poolSize:       fs.Int("pool-size", d.PoolSize, "maximum database connections"),
		table:          fs.String("table", d.Table, "target table name"),
		initialRecords: fs.Int("initial-records", d.InitialRecords, "rows to seed before the run"),
		recreate:       fs.Bool("recreate", d.Recreate, "drop and recreate the table before seeding"),
		reportInterval: fs.Int("report-interval", d.ReportIntervalS, "live report cadence in seconds"),
		metricsAddr:    fs.String("metrics-addr", d.MetricsAddr, "Prometheus /metrics listen address, e.g. :9091"),
		logLevel:       fs.String("log-level", d.LogLevel, "log verbosity: debug, info, warn, error"),
	}
}

// overlay applies only the flags explicitly set on the command line to cfg,
// leaving file- and env-sourced values intact for the rest.
func (f *cliFlags) overlay(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "host":
			cfg.Connection.Host = *f.host
		case "port":
			cfg.Connection.Port = *f.port
		case "database":
			cfg.Connection.Database = *f.database
		case "user":
			cfg.Connection.User = *f.user
		case "password":
			cfg.Connection.Password = *f.password
		case "ssl-mode":
			cfg.Connection.SSLMode = *f.sslMode
		case "workers":
			cfg.Workers = *f.workers
		case "duration":
			cfg.DurationS = *f.duration
		case "pool-size":
			cfg.PoolSize = *f.poolSize
		case "table":
			cfg.Table = *f.table
		case "initial-records":
			cfg.InitialRecords = *f.initialRecords
		case "recreate":
			cfg.Recreate = *f.recreate
		case "report-interval":
			cfg.ReportIntervalS = *f.reportInterval
		case "metrics-addr":
			cfg.MetricsAddr = *f.metricsAddr
		case "log-level":
			cfg.LogLevel = *f.logLevel
		}
	})
}

// startMetricsServer serves the Prometheus registry on addr in the background.
func startMetricsServer(ctx context.Context, addr string, log logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "metrics listener starting", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(ctx, "metrics listener stopped", logger.Error(err))
		}
	}()

	return srv
}

// publishPoolStats periodically copies pgx pool counters into the gauges.
func publishPoolStats(pool *pgxpool.Pool, done <-chan struct{}) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			stat := pool.Stat()
			metrics.UpdatePoolStats(stat.AcquiredConns(), stat.IdleConns(), stat.TotalConns())
		}
	}
}
