package schema

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ServiceConfig defines the fixed tab set and service behavior.
type ServiceConfig struct {
	Tabs         []TabSpec
	StateDir     string
	PollInterval time.Duration
}

// DefaultPollInterval is the repeating probe interval.
const DefaultPollInterval = 15 * time.Second

// Default tab URLs, overridable from the environment before config defaults
// are materialized.
const (
	DefaultWorldMonitorURL = "http://localhost:4173"
	DefaultDeltaIntelURL   = "http://localhost:8090"
)

// DefaultTabs returns the built-in tab set with URLs resolved from the
// environment, falling back to localhost defaults.
func DefaultTabs() []TabSpec {
	return []TabSpec{
		{
			Key:   "worldmonitor",
			Label: "World Monitor",
			URL:   envOr("INTELHUB_WORLDMONITOR_URL", DefaultWorldMonitorURL),
			Mode:  TabModeProbed,
		},
		{
			Key:   "deltaintel",
			Label: "Delta Intel",
			URL:   envOr("INTELHUB_DELTAINTEL_URL", DefaultDeltaIntelURL),
			Mode:  TabModeProbed,
		},
	}
}

// NormalizeServiceConfig applies defaults and validates the config.
func NormalizeServiceConfig(cfg ServiceConfig) (ServiceConfig, error) {
	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ServiceConfig{}, err
		}
		cfg.StateDir = filepath.Join(home, ".intelhub", "state")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if len(cfg.Tabs) == 0 {
		cfg.Tabs = DefaultTabs()
	}
	seen := make(map[TabKey]bool, len(cfg.Tabs))
	for i, tab := range cfg.Tabs {
		key := TabKey(strings.TrimSpace(string(tab.Key)))
		if key == "" {
			return ServiceConfig{}, fmt.Errorf("tab %d: key is required", i)
		}
		if seen[key] {
			return ServiceConfig{}, fmt.Errorf("tab %q: duplicate key", key)
		}
		seen[key] = true
		if tab.Mode == "" {
			tab.Mode = TabModeProbed
		}
		if tab.Mode != TabModeProbed && tab.Mode != TabModeIntegrated {
			return ServiceConfig{}, fmt.Errorf("tab %q: unsupported mode %q", key, tab.Mode)
		}
		if tab.Probed() {
			target := strings.TrimSpace(tab.URL)
			if target == "" {
				return ServiceConfig{}, fmt.Errorf("tab %q: url is required for probed tabs", key)
			}
			parsed, err := url.Parse(target)
			if err != nil || parsed.Scheme == "" || parsed.Host == "" {
				return ServiceConfig{}, fmt.Errorf("tab %q: url must include scheme and host", key)
			}
			tab.URL = target
		}
		if strings.TrimSpace(string(tab.Label)) == "" {
			tab.Label = TabLabel(key)
		}
		tab.Key = key
		cfg.Tabs[i] = tab
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
