package main

import (
	"flag"
	"io"
	"strconv"
	"testing"

	"github.com/okian/fleetbench/internal/config"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("fleetbench", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestRegisterFlagsShowsRealDefaults(t *testing.T) {
	fs := newFlagSet()
	defaults := config.New()
	registerFlags(fs, defaults)

	cases := []struct {
		name string
		want string
	}{
		{"workers", strconv.Itoa(defaults.Workers)},
		{"duration", strconv.Itoa(defaults.DurationS)},
		{"pool-size", strconv.Itoa(defaults.PoolSize)},
		{"table", defaults.Table},
		{"initial-records", strconv.Itoa(defaults.InitialRecords)},
		{"port", strconv.Itoa(defaults.Connection.Port)},
		{"database", defaults.Connection.Database},
		{"user", defaults.Connection.User},
		{"ssl-mode", defaults.Connection.SSLMode},
		{"log-level", defaults.LogLevel},
	}

	for _, tc := range cases {
		fl := fs.Lookup(tc.name)
		if fl == nil {
			t.Fatalf("flag %q not registered", tc.name)
		}
		if fl.DefValue != tc.want {
			t.Errorf("flag %q default = %q, want %q", tc.name, fl.DefValue, tc.want)
		}
	}
}

func TestOverlayAppliesOnlyPassedFlags(t *testing.T) {
	fs := newFlagSet()
	flags := registerFlags(fs, config.New())

	if err := fs.Parse([]string{"-workers", "5", "-host", "db.internal", "-recreate"}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	// The loaded config carries values from file/env that flags must not
	// clobber unless explicitly passed.
	cfg := config.New()
	cfg.PoolSize = 25
	cfg.Connection.Database = "telemetry"

	flags.overlay(fs, cfg)

	if cfg.Workers != 5 {
		t.Errorf("workers = %d, want 5", cfg.Workers)
	}
	if cfg.Connection.Host != "db.internal" {
		t.Errorf("host = %q, want db.internal", cfg.Connection.Host)
	}
	if !cfg.Recreate {
		t.Error("recreate flag not applied")
	}

	if cfg.PoolSize != 25 {
		t.Errorf("pool size clobbered to %d, want 25", cfg.PoolSize)
	}
	if cfg.Connection.Database != "telemetry" {
		t.Errorf("database clobbered to %q, want telemetry", cfg.Connection.Database)
	}
	if cfg.DurationS != config.New().DurationS {
		t.Errorf("duration changed without being passed: %d", cfg.DurationS)
	}
}
