package app

import (
	"fmt"
	"os"
	"time"

	"campaignd/internal/registry"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so knobs can be written as "30s" or
// "2m" in the daemon configuration file.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config is the daemon configuration, loaded from config.yaml. Every
// field has a default, so an empty file (or no file at all) yields a
// runnable daemon.
type Config struct {
	// ListenAddr is the bind address for the sync feed HTTP server.
	ListenAddr string `yaml:"listenAddr"`

	// ManifestPath locates the tool server manifest.
	ManifestPath string `yaml:"manifestPath"`

	// WatchManifest enables hot reload of the manifest: edits swap in a
	// fresh registry generation without restarting the daemon.
	WatchManifest bool `yaml:"watchManifest"`

	// Debug lowers the log level to debug.
	Debug bool `yaml:"debug"`

	Registry RegistryConfig `yaml:"registry"`
}

// RegistryConfig carries the registry tunables. Zero values fall back
// to the registry defaults.
type RegistryConfig struct {
	StartTimeout     Duration `yaml:"startTimeout"`
	InvokeTimeout    Duration `yaml:"invokeTimeout"`
	ShutdownGrace    Duration `yaml:"shutdownGrace"`
	HealthInterval   Duration `yaml:"healthInterval"`
	FailureThreshold int      `yaml:"failureThreshold"`
}

// Options converts the YAML knobs into registry options.
func (c RegistryConfig) Options() registry.Options {
	return registry.Options{
		StartTimeout:     time.Duration(c.StartTimeout),
		InvokeTimeout:    time.Duration(c.InvokeTimeout),
		ShutdownGrace:    time.Duration(c.ShutdownGrace),
		HealthInterval:   time.Duration(c.HealthInterval),
		FailureThreshold: c.FailureThreshold,
	}
}

// DefaultConfig returns the configuration used when no config file is
// given.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:    "127.0.0.1:8090",
		ManifestPath:  "manifest.yaml",
		WatchManifest: true,
	}
}

// LoadConfig reads the daemon configuration from path, applying
// defaults for everything left unset. An empty path returns the
// defaults unchanged.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if cfg.ListenAddr == "" {
		return nil, fmt.Errorf("config file %s: listenAddr must not be empty", path)
	}
	if cfg.ManifestPath == "" {
		return nil, fmt.Errorf("config file %s: manifestPath must not be empty", path)
	}
	return cfg, nil
}
