package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultThreshold  = 127
	DefaultPadding    = 0.03
	DefaultIterations = 30
)

type Config struct {
	InputDir   string  `yaml:"input"`
	OutputDir  string  `yaml:"output"`
	Workers    int     `yaml:"workers"`
	Threshold  int     `yaml:"threshold"`
	Padding    float64 `yaml:"padding"`
	Iterations int     `yaml:"iterations"`
	ReportPath string  `yaml:"report"`
	LogMode    string  `yaml:"log_mode"`
	Quiet      bool    `yaml:"quiet"`

	BuildVersion string `yaml:"-"`
	ShowVersion  bool   `yaml:"-"`
}

// Default returns the settings used when neither a config file nor a flag
// overrides them.
func Default(workers int) *Config {
	return &Config{
		Workers:    workers,
		Threshold:  DefaultThreshold,
		Padding:    DefaultPadding,
		Iterations: DefaultIterations,
		LogMode:    "dev",
	}
}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the
// file keep their current values.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.InputDir == "" {
		errs = append(errs, errors.New("--input is required"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("--output is required"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("-j must be at least 1, got %d", c.Workers))
	}
	if c.Threshold < 0 || c.Threshold > 255 {
		errs = append(errs, fmt.Errorf("threshold must be in [0,255], got %d", c.Threshold))
	}
	if c.Padding < 0 || c.Padding > 1 {
		errs = append(errs, fmt.Errorf("padding must be in [0,1], got %g", c.Padding))
	}
	if c.Iterations < 1 {
		errs = append(errs, fmt.Errorf("iterations must be at least 1, got %d", c.Iterations))
	}
	switch c.LogMode {
	case "dev", "release":
	default:
		errs = append(errs, fmt.Errorf("unknown log mode %q", c.LogMode))
	}
	return errors.Join(errs...)
}
