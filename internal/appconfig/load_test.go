package appconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ConfigVersion != CurrentConfigVersion {
		t.Fatalf("expected version %d, got %d", CurrentConfigVersion, cfg.ConfigVersion)
	}
	if len(cfg.Tabs) != 2 {
		t.Fatalf("expected default tabs, got %d", len(cfg.Tabs))
	}
	if cfg.Poll.IntervalSeconds != 15 {
		t.Fatalf("expected 15s poll interval, got %d", cfg.Poll.IntervalSeconds)
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `config_version: 1
state_dir: /tmp/intelhub-test
poll:
  interval_seconds: 5
http:
  addr: ":8099"
tabs:
  - key: worldmonitor
    label: World Monitor
    url: http://monitor:3000
    mode: probed
  - key: deltaintel
    label: Delta Intel
    mode: integrated
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":8099" {
		t.Fatalf("expected :8099, got %q", cfg.HTTP.Addr)
	}
	if cfg.Poll.IntervalSeconds != 5 {
		t.Fatalf("expected 5, got %d", cfg.Poll.IntervalSeconds)
	}
	if len(cfg.Tabs) != 2 || cfg.Tabs[1].Mode != "integrated" {
		t.Fatalf("unexpected tabs: %+v", cfg.Tabs)
	}
}

func TestLoadRejectsVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("config_version: 99\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected version mismatch error")
	}
}

func TestLoadExpandsEnvInTabURLs(t *testing.T) {
	t.Setenv("MONITOR_HOST", "monitor.example")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `config_version: 1
tabs:
  - key: worldmonitor
    url: http://${MONITOR_HOST}:3000
    mode: probed
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Tabs[0].URL != "http://monitor.example:3000" {
		t.Fatalf("expected expanded url, got %q", cfg.Tabs[0].URL)
	}
}

func TestLoadRejectsBadBaseURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `config_version: 1
http:
  base_url: not-a-url
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "base_url") {
		t.Fatalf("expected base_url error, got %v", err)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	written, err := WriteDefault(path, false)
	if err != nil {
		t.Fatalf("write default: %v", err)
	}
	if written != path {
		t.Fatalf("expected %q, got %q", path, written)
	}
	if _, err := WriteDefault(path, false); err == nil {
		t.Fatalf("expected error for existing config")
	}
	if _, err := WriteDefault(path, true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load written default: %v", err)
	}
	if len(cfg.Tabs) != 2 {
		t.Fatalf("expected default tabs in written config, got %d", len(cfg.Tabs))
	}
}
