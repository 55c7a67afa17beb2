// Package config holds file-based defaults for portsweep runs. Values here
// seed the CLI flags; flags always win when set explicitly.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mkarlsen/portsweep/internal/errors"
)

// Config represents the complete application configuration.
type Config struct {
	// Scan defaults
	Scan ScanConfig `yaml:"scan" json:"scan"`

	// Output defaults
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ScanConfig holds scan-related defaults.
type ScanConfig struct {
	// First and last port of the default range
	StartPort int `yaml:"start_port" json:"start_port"`
	EndPort   int `yaml:"end_port" json:"end_port"`

	// Per-connect timeout
	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout"`

	// Secondary banner-read timeout
	BannerTimeout time.Duration `yaml:"banner_timeout" json:"banner_timeout"`

	// Number of concurrent probe workers
	Workers int `yaml:"workers" json:"workers"`

	// Attempt a banner grab on open ports
	Banner bool `yaml:"banner" json:"banner"`
}

// OutputConfig holds output sink defaults.
type OutputConfig struct {
	// Directory the result files are written into ("" = current directory)
	Dir string `yaml:"dir" json:"dir"`

	// Base filename; the run timestamp and extension are appended
	Base string `yaml:"base" json:"base"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level" json:"level"`

	// Log format (text, json)
	Format string `yaml:"format" json:"format"`

	// Log output (stdout, stderr, file path)
	Output string `yaml:"output" json:"output"`
}

// Default returns a configuration with sensible defaults. The scan defaults
// mirror the classic quick sweep: first 1024 ports, half-second connects.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			StartPort:      1,
			EndPort:        1024,
			ConnectTimeout: 500 * time.Millisecond,
			BannerTimeout:  800 * time.Millisecond,
			Workers:        100,
			Banner:         false,
		},
		Output: OutputConfig{
			Dir:  "",
			Base: "results",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load loads configuration from a file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration, "failed to parse config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the loaded values. Range clamping happens in the engine;
// only values no clamp can repair are rejected here.
func (c *Config) Validate() error {
	if c.Scan.ConnectTimeout <= 0 {
		return errors.ErrConfigInvalid("scan.connect_timeout", c.Scan.ConnectTimeout)
	}
	if c.Scan.BannerTimeout <= 0 {
		return errors.ErrConfigInvalid("scan.banner_timeout", c.Scan.BannerTimeout)
	}
	if c.Scan.Workers < 1 {
		return errors.ErrConfigInvalid("scan.workers", c.Scan.Workers)
	}
	if c.Output.Base == "" {
		return errors.ErrConfigInvalid("output.base", c.Output.Base)
	}
	return nil
}
