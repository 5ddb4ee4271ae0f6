package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestManagerCreatesAndUpdates(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	path := filepath.Join(dir, "config.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	cfg := mgr.Get()
	cfg.ResultsDir = filepath.Join(dir, "results")
	cfg.MaxDebateRounds = 3

	data, _ := json.Marshal(cfg)
	if err := mgr.UpdateFromJSON(string(data)); err != nil {
		t.Fatalf("UpdateFromJSON: %v", err)
	}

	updated := mgr.Get()
	if updated.MaxDebateRounds != 3 {
		t.Fatalf("expected 3 debate rounds, got %d", updated.MaxDebateRounds)
	}
}

func TestManagerRejectsInvalidUpdate(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	cfg := mgr.Get()
	cfg.MaxRecurLimit = 3
	if err := mgr.Update(cfg); err == nil {
		t.Fatal("expected validation error for max_recur_limit < 10")
	}
}

func TestManagerWatchReloads(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan Config, 1)
	if err := mgr.Watch(ctx, func(cfg Config) {
		reloaded <- cfg
	}); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	cfg := mgr.Get()
	cfg.MaxDebateRounds = 2
	data, _ := json.MarshalIndent(cfg, "", "  ")
	if err := os.WriteFile(mgr.Path(), data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	select {
	case got := <-reloaded:
		if got.MaxDebateRounds != 2 {
			t.Fatalf("reloaded config has %d debate rounds, want 2", got.MaxDebateRounds)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config watch did not fire")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if DefaultConfig().DataVendors[CategoryCoreStock] != "yfinance" {
		t.Fatal("unexpected core stock default vendor")
	}
}
