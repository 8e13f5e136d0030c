// Package config loads runtime settings for the MLCanvas tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config defines runtime settings for the build server and CLI.
type Config struct {
	// ListenAddr is the build server bind address.
	ListenAddr string `yaml:"listenAddr"`

	// LogLevel is one of debug, info, warn, error, fatal.
	LogLevel string `yaml:"logLevel"`

	// OutputDir is where the CLI writes generated scripts. Empty means
	// next to the snapshot file.
	OutputDir string `yaml:"outputDir"`

	// AllowedOrigins restricts server CORS. Empty allows any origin.
	AllowedOrigins []string `yaml:"allowedOrigins"`

	// StrictSnapshots rejects snapshots with unknown fields or
	// unrecognized node types instead of keeping such nodes inert.
	StrictSnapshots bool `yaml:"strictSnapshots"`
}

// Load reads configuration from a YAML file and applies environment
// overrides. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ListenAddr: ":8787",
		LogLevel:   "info",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if addr := os.Getenv("MLCANVAS_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if level := os.Getenv("MLCANVAS_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if dir := os.Getenv("MLCANVAS_OUTPUT_DIR"); dir != "" {
		cfg.OutputDir = dir
	}
	if origins := os.Getenv("MLCANVAS_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}

	return cfg, nil
}

// DefaultPath returns the default location of the CLI config file.
func DefaultPath() string {
	if path := os.Getenv("MLCANVAS_CONFIG"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mlcanvas", "config.yaml")
}
