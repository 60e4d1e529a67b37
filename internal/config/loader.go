package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified"; the manager and serve command apply defaults.
type Config struct {
	Addr          string `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir     string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	MemoryLimitMB int    `json:"memory_limit_mb" yaml:"memory_limit_mb" toml:"memory_limit_mb"`
	MaxPoolSize   int    `json:"max_pool_size" yaml:"max_pool_size" toml:"max_pool_size"`
	// ContextTTLSeconds is how long an idle inference context survives.
	ContextTTLSeconds int `json:"context_ttl_seconds" yaml:"context_ttl_seconds" toml:"context_ttl_seconds"`
	// SweepIntervalSeconds is the background cleanup period.
	SweepIntervalSeconds int `json:"sweep_interval_seconds" yaml:"sweep_interval_seconds" toml:"sweep_interval_seconds"`
	// DrainTimeoutSeconds bounds how long an unload waits for in-flight work.
	DrainTimeoutSeconds int      `json:"drain_timeout_seconds" yaml:"drain_timeout_seconds" toml:"drain_timeout_seconds"`
	BatchWorkers        int      `json:"batch_workers" yaml:"batch_workers" toml:"batch_workers"`
	LogLevel            string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	CORSOrigins         []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	// Preload lists model files to load at startup. Bare filenames are
	// resolved against ModelsDir.
	Preload []string `json:"preload" yaml:"preload" toml:"preload"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
