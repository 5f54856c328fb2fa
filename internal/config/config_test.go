package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[session]
tick_rate = "16ms"
debug = true

[spawn]
origin_x = 1.5
origin_z = -2

[store]
backend = "redis"
redis_addr = "cache:6379"
op_timeout = "5ms"

[sync]
workers = 8
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Session.TickRate.Duration != 16*time.Millisecond || !cfg.Session.Debug {
		t.Errorf("session = %+v", cfg.Session)
	}
	if cfg.Spawn.OriginX != 1.5 || cfg.Spawn.OriginZ != -2 {
		t.Errorf("spawn = %+v", cfg.Spawn)
	}
	if cfg.Store.Backend != "redis" || cfg.Store.OpTimeout.Duration != 5*time.Millisecond {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Store.KeyPrefix != "guestsync:" {
		t.Errorf("default key prefix lost: %q", cfg.Store.KeyPrefix)
	}
	if cfg.Sync.Workers != 8 || cfg.Sync.ErrorLogEvery != 100 {
		t.Errorf("sync = %+v", cfg.Sync)
	}
	if cfg.Session.StartTime == 0 {
		t.Error("start time not stamped")
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want string
	}{
		{"zero tick", "[session]\ntick_rate = \"0s\"", "tick_rate"},
		{"bad duration", "[session]\ntick_rate = \"soon\"", "parse"},
		{"unknown backend", "[store]\nbackend = \"etcd\"", "store.backend"},
		{"redis without addr", "[store]\nbackend = \"redis\"\nredis_addr = \"\"", "redis_addr"},
		{"negative workers", "[sync]\nworkers = -1", "sync.workers"},
		{"persist without dsn", "[persist]\nenabled = true\ndsn = \"\"", "persist.dsn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guestsync.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"json\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "info" {
		t.Errorf("logging = %+v", cfg.Logging)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("missing file accepted")
	}
}
