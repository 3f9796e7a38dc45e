package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SNAPSHOT_SOURCES", " revenue_daily, ,order_types ")
	t.Setenv("CACHE_TTL_SECONDS", "not-a-number")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %s, want 9090", cfg.Port)
	}
	if cfg.CacheTTL != 60*time.Second {
		t.Errorf("CacheTTL = %v, want fallback 60s", cfg.CacheTTL)
	}
	if len(cfg.SnapshotSources) != 2 || cfg.SnapshotSources[0] != "revenue_daily" || cfg.SnapshotSources[1] != "order_types" {
		t.Errorf("SnapshotSources = %v", cfg.SnapshotSources)
	}
	if cfg.IsProduction() {
		t.Errorf("expected development environment by default")
	}
}
