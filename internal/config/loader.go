package config

import (
	"context"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// tableNamePattern restricts table names to plain SQL identifiers since the
// table name is interpolated into DDL and queries.
var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if FLEETBENCH_CONFIG is set
//  3. env (prefix FLEETBENCH_)
//
// Context is accepted first to satisfy the project-wide convention; it is
// reserved for future loaders and is currently unused.
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("FLEETBENCH_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: FLEETBENCH_WORKERS, FLEETBENCH_POOL_SIZE, ...
	// Flat keys preserve underscores to match koanf tags on the struct;
	// FLEETBENCH_CONN_* maps into the nested connection block, e.g.
	// FLEETBENCH_CONN_HOST -> connection.host.
	envProvider := env.Provider("FLEETBENCH_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "fleetbench_")
		if rest, ok := strings.CutPrefix(s, "conn_"); ok {
			return "connection." + rest
		}
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks run parameter bounds before SETUP proceeds.
func (c *Config) validate() error {
	if c.Workers < 0 {
		return ErrInvalidWorkers
	}
	if c.PoolSize <= 0 {
		return ErrInvalidPoolSize
	}
	if c.DurationS < 0 {
		return ErrInvalidDuration
	}
	if !tableNamePattern.MatchString(c.Table) {
		return ErrInvalidTable
	}
	return nil
}
