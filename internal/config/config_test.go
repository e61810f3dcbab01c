package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "BOT_VARIANT", "POLICY_FILE", "BENCH_DB", "DEV_AUTH", "DB_MAX_CONNS", "MIGRATION_FILE", "MATCH_TTL"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8009" {
		t.Errorf("Port: got %q, want 8009", cfg.Port)
	}
	if cfg.BotVariant != "aggro" {
		t.Errorf("BotVariant: got %q, want aggro", cfg.BotVariant)
	}
	if cfg.PolicyFile != "" || cfg.BenchDB != "" {
		t.Errorf("optional paths should be empty: %+v", cfg)
	}
	if !cfg.DevAuth {
		t.Error("DevAuth should default to true")
	}
	if cfg.DBMaxConns != 25 || cfg.MigrationFile != "" {
		t.Errorf("db defaults: max conns %d, migration %q", cfg.DBMaxConns, cfg.MigrationFile)
	}
}

func TestLoadMatchTTL(t *testing.T) {
	t.Setenv("MATCH_TTL", "90m")
	if got := Load().MatchTTL; got != 90*time.Minute {
		t.Errorf("MatchTTL: got %s, want 1h30m", got)
	}
	t.Setenv("MATCH_TTL", "forever")
	if got := Load().MatchTTL; got != 24*time.Hour {
		t.Errorf("MatchTTL fallback: got %s, want 24h", got)
	}
}

func TestLoadDBMaxConns(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"40", 40},
		{"0", 25},
		{"-3", 25},
		{"lots", 25},
	}
	for _, tt := range tests {
		t.Setenv("DB_MAX_CONNS", tt.raw)
		if got := Load().DBMaxConns; got != tt.want {
			t.Errorf("DB_MAX_CONNS=%q: got %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("BOT_VARIANT", "discerning")
	t.Setenv("POLICY_FILE", "/etc/luxbot/policies.yaml")
	t.Setenv("DEV_AUTH", "false")

	cfg := Load()
	if cfg.Port != "9000" || cfg.BotVariant != "discerning" {
		t.Errorf("got %+v", cfg)
	}
	if cfg.PolicyFile != "/etc/luxbot/policies.yaml" {
		t.Errorf("PolicyFile: got %q", cfg.PolicyFile)
	}
	if cfg.DevAuth {
		t.Error("DevAuth should be false")
	}
}
