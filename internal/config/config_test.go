package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Location == nil || cfg.Location.String() != cfg.Timezone {
		t.Errorf("location = %v, timezone = %s", cfg.Location, cfg.Timezone)
	}
	if cfg.Stats.CacheTTL <= 0 {
		t.Errorf("stats cache ttl should default to a positive value")
	}
	if cfg.JWT.Secret == "" {
		t.Errorf("development should fall back to a secret")
	}
	if want := "postgres://" + cfg.Database.User + ":secret@"; len(cfg.Database.URL) < len(want) || cfg.Database.URL[:len(want)] != want {
		t.Errorf("database url = %s", cfg.Database.URL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Asia/Kolkata")
	t.Setenv("STATS_CACHE_TTL", "90")
	t.Setenv("SYNC_INTERVAL_SECONDS", "2m")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Location.String() != "Asia/Kolkata" {
		t.Errorf("location = %s", cfg.Location)
	}
	if cfg.Stats.CacheTTL != 90*time.Second {
		t.Errorf("cache ttl = %s, want 90s", cfg.Stats.CacheTTL)
	}
	if cfg.Buffer.SyncInterval != 2*time.Minute {
		t.Errorf("sync interval = %s, want 2m", cfg.Buffer.SyncInterval)
	}
	if cfg.Migrations.Enabled {
		t.Errorf("migrations should be disabled")
	}
	if got, want := cfg.Address(), cfg.HTTP.Host+":9090"; got != want {
		t.Errorf("address = %s, want %s", got, want)
	}
}

func TestLoadRejects(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown timezone")
	}

	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing secret in production")
	}
}
