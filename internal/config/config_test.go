package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "session:\n  team_name: TraderOne\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("expected info level default, got %q", cfg.Log.Level)
	}
	if cfg.Session.ReconnectDelay != 3*time.Second {
		t.Fatalf("expected reconnect delay default, got %v", cfg.Session.ReconnectDelay)
	}
	if cfg.Session.SecretEnv != "EXCHANGE_SECRET" {
		t.Fatalf("expected secret env default, got %q", cfg.Session.SecretEnv)
	}
	if cfg.Venue.TickSize != 100 || cfg.Venue.PositionLimit != 100 || cfg.Venue.LotSize != 10 {
		t.Fatalf("unexpected venue defaults: %+v", cfg.Venue)
	}
	if cfg.Venue.TopLevels != 5 {
		t.Fatalf("expected 5 top levels, got %d", cfg.Venue.TopLevels)
	}
	if cfg.Venue.MinimumBid != 1 || cfg.Venue.MaximumAsk != 1<<31-1 {
		t.Fatalf("unexpected price bounds: %+v", cfg.Venue)
	}
	if cfg.Strategy.SkewTicks != 0 {
		t.Fatalf("expected zero skew default, got %f", cfg.Strategy.SkewTicks)
	}
	if cfg.Journal.Path != "data/events.db" {
		t.Fatalf("expected journal path default, got %q", cfg.Journal.Path)
	}
}

func TestLoadRequiresTeamName(t *testing.T) {
	path := writeConfig(t, "log:\n  level: debug\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for missing team name")
	}
}

func TestLoadRejectsBadBounds(t *testing.T) {
	path := writeConfig(t, "session:\n  team_name: TraderOne\nvenue:\n  minimum_bid: 500\n  maximum_ask: 400\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for inverted bid/ask bounds")
	}
}

func TestLoadRequiresRecordDSN(t *testing.T) {
	path := writeConfig(t, "session:\n  team_name: TraderOne\nrecord:\n  enabled: true\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for enabled recorder without dsn")
	}
}

func TestHedgePriceRounding(t *testing.T) {
	v := VenueConfig{TickSize: 100, MinimumBid: 1, MaximumAsk: 1<<31 - 1}
	if got := v.MinBidNearestTick(); got != 100 {
		t.Fatalf("expected min bid nearest tick 100, got %d", got)
	}
	if got := v.MaxAskNearestTick(); got != 2147483600 {
		t.Fatalf("expected max ask nearest tick 2147483600, got %d", got)
	}
}

func TestLoadMissingPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
