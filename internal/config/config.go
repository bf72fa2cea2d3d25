// Package config loads webhunt configuration from environment variables
// and an optional YAML file. CLI flags are merged last by the caller and
// take precedence.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Defaults for analysis tuning.
const (
	DefaultMinRequests = 50
	DefaultTopN        = 10
	DefaultWorkers     = 4
)

// Config holds all webhunt configuration.
type Config struct {
	Analysis    AnalysisConfig
	Output      OutputConfig
	Performance PerformanceConfig
	LogLevel    string
	Quiet       bool
}

// AnalysisConfig holds analyzer tuning parameters.
type AnalysisConfig struct {
	MinRequests int // minimum requests before an address is scored
	TopN        int // number of top addresses to report
}

// OutputConfig holds report destination settings.
type OutputConfig struct {
	Formats   []string // "md", "json", "html"
	Directory string
}

// PerformanceConfig holds file-reading parallelism settings.
type PerformanceConfig struct {
	Workers int
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	return Config{
		Analysis: AnalysisConfig{
			MinRequests: getenvInt("WEBHUNT_MIN_REQUESTS", DefaultMinRequests),
			TopN:        getenvInt("WEBHUNT_TOP_IPS", DefaultTopN),
		},
		Output: OutputConfig{
			Formats:   []string{"md"},
			Directory: getenv("WEBHUNT_OUTPUT_DIR", "."),
		},
		Performance: PerformanceConfig{
			Workers: getenvInt("WEBHUNT_WORKERS", DefaultWorkers),
		},
		LogLevel: getenv("WEBHUNT_LOG_LEVEL", "info"),
	}
}

// fileConfig mirrors the YAML config file layout.
type fileConfig struct {
	Analysis struct {
		MinRequests *int `yaml:"min_requests"`
		TopIPs      *int `yaml:"top_ips"`
	} `yaml:"analysis"`
	Output struct {
		Formats   []string `yaml:"formats"`
		Directory *string  `yaml:"directory"`
	} `yaml:"output"`
	Performance struct {
		Workers *int `yaml:"workers"`
	} `yaml:"performance"`
}

// FromFile loads the environment defaults and overlays values from a YAML
// config file. Absent keys keep their defaults.
func FromFile(path string) (Config, error) {
	cfg := Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config read: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("config parse: %w", err)
	}

	if fc.Analysis.MinRequests != nil {
		cfg.Analysis.MinRequests = *fc.Analysis.MinRequests
	}
	if fc.Analysis.TopIPs != nil {
		cfg.Analysis.TopN = *fc.Analysis.TopIPs
	}
	if len(fc.Output.Formats) > 0 {
		cfg.Output.Formats = fc.Output.Formats
	}
	if fc.Output.Directory != nil {
		cfg.Output.Directory = *fc.Output.Directory
	}
	if fc.Performance.Workers != nil {
		cfg.Performance.Workers = *fc.Performance.Workers
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
