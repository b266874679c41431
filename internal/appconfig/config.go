package appconfig

import (
	"os"
	"path/filepath"

	"pkt.systems/intelhub/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int        `mapstructure:"config_version" yaml:"config_version"`
	StateDir      string     `mapstructure:"state_dir" yaml:"state_dir"`
	Tabs          []Tab      `mapstructure:"tabs" yaml:"tabs"`
	Poll          PollConfig `mapstructure:"poll" yaml:"poll"`
	HTTP          HTTPConfig `mapstructure:"http" yaml:"http"`
	SSH           SSHConfig  `mapstructure:"ssh" yaml:"ssh"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// Tab configures one monitored tab.
type Tab struct {
	Key   string `mapstructure:"key" yaml:"key"`
	Label string `mapstructure:"label" yaml:"label"`
	URL   string `mapstructure:"url" yaml:"url"`
	Mode  string `mapstructure:"mode" yaml:"mode"`
}

// PollConfig controls the repeating probe cycle.
type PollConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds" yaml:"interval_seconds"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
	BasePath string `mapstructure:"base_path" yaml:"base_path"`
}

// SSHConfig configures the read-only SSH status console.
type SSHConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr        string `mapstructure:"addr" yaml:"addr"`
	HostKeyPath string `mapstructure:"host_key_path" yaml:"host_key_path"`
}

// DefaultConfig returns a config with sensible defaults. Tab URLs resolve
// from the environment with localhost fallbacks.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	tabs := make([]Tab, 0, 2)
	for _, spec := range schema.DefaultTabs() {
		tabs = append(tabs, Tab{
			Key:   string(spec.Key),
			Label: string(spec.Label),
			URL:   spec.URL,
			Mode:  string(spec.Mode),
		})
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		StateDir:      filepath.Join(home, ".intelhub", "state"),
		Tabs:          tabs,
		Poll: PollConfig{
			IntervalSeconds: int(schema.DefaultPollInterval.Seconds()),
		},
		HTTP: HTTPConfig{
			Addr:     ":27500",
			BaseURL:  "",
			BasePath: "",
		},
		SSH: SSHConfig{
			Enabled:     false,
			Addr:        ":27522",
			HostKeyPath: filepath.Join(home, ".intelhub", "ssh_host_key"),
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".intelhub", "config.yaml"), nil
}
