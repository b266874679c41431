package main

import (
	"testing"
	"time"

	"pkt.systems/intelhub/internal/appconfig"
	"pkt.systems/intelhub/schema"
)

func TestToServiceConfig(t *testing.T) {
	cfg := appconfig.Config{
		StateDir: "/tmp/state",
		Poll:     appconfig.PollConfig{IntervalSeconds: 15},
		Tabs: []appconfig.Tab{
			{Key: "worldmonitor", Label: "World Monitor", URL: "http://localhost:4173", Mode: "probed"},
			{Key: "notes", Label: "Notes", Mode: "integrated"},
		},
	}
	got := toServiceConfig(cfg)
	if got.PollInterval != 15*time.Second {
		t.Fatalf("expected 15s interval, got %v", got.PollInterval)
	}
	if got.StateDir != "/tmp/state" {
		t.Fatalf("unexpected state dir %q", got.StateDir)
	}
	if len(got.Tabs) != 2 {
		t.Fatalf("expected 2 tabs, got %d", len(got.Tabs))
	}
	if got.Tabs[0].Mode != schema.TabModeProbed || got.Tabs[1].Mode != schema.TabModeIntegrated {
		t.Fatalf("modes not mapped: %+v", got.Tabs)
	}
}
