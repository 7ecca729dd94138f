package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the harness.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Interpreter     string `json:"interpreter" yaml:"interpreter" toml:"interpreter"`
	NotebooksDir    string `json:"notebooks_dir" yaml:"notebooks_dir" toml:"notebooks_dir"`
	ServerBin       string `json:"server_bin" yaml:"server_bin" toml:"server_bin"`
	ModelRepository string `json:"model_repository" yaml:"model_repository" toml:"model_repository"`
	Host            string `json:"host" yaml:"host" toml:"host"`
	Port            int    `json:"port" yaml:"port" toml:"port"`
	Devices         []int  `json:"devices" yaml:"devices" toml:"devices"`
	ReadyAttempts   int    `json:"ready_attempts" yaml:"ready_attempts" toml:"ready_attempts"`
	ReadyIntervalMS int    `json:"ready_interval_ms" yaml:"ready_interval_ms" toml:"ready_interval_ms"`
	LogLevel        string `json:"log_level" yaml:"log_level" toml:"log_level"`
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

// ApplyDefaults fills unspecified fields from NBHARNESS_* env vars, then from
// package defaults.
func ApplyDefaults(cfg Config) Config {
	if cfg.Interpreter == "" {
		cfg.Interpreter = envStr("NBHARNESS_INTERPRETER", "python3")
	}
	if cfg.NotebooksDir == "" {
		cfg.NotebooksDir = envStr("NBHARNESS_NOTEBOOKS_DIR", "examples")
	}
	if cfg.ServerBin == "" {
		cfg.ServerBin = envStr("NBHARNESS_SERVER_BIN", "")
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = envInt("NBHARNESS_SERVER_PORT", 8000)
	}
	if cfg.ReadyAttempts == 0 {
		cfg.ReadyAttempts = 60
	}
	if cfg.ReadyIntervalMS == 0 {
		cfg.ReadyIntervalMS = 1000
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = envStr("NBHARNESS_LOG_LEVEL", "info")
	}
	return cfg
}

// ReadyInterval returns the poll interval as a duration.
func (c Config) ReadyInterval() time.Duration {
	return time.Duration(c.ReadyIntervalMS) * time.Millisecond
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return def
}
