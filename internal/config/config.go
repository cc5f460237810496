package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/boilersim/internal/boiler"
	"github.com/san-kum/boilersim/internal/sim"
)

const (
	DefaultDuration = 3600.0
	DefaultLogLevel = "info"

	EnvLogLevel     = "BOILERSIM_LOG_LEVEL"
	EnvTickInterval = "BOILERSIM_TICK_INTERVAL"
)

type Config struct {
	Parameters      boiler.Parameters `yaml:"parameters"`
	Setpoints       boiler.Setpoints  `yaml:"setpoints"`
	Initial         InitialState      `yaml:"initial"`
	VolumeReference string            `yaml:"volume_reference"`
	Pacing          sim.Pacing        `yaml:"pacing"`
	Duration        float64           `yaml:"duration"`
	LogLevel        string            `yaml:"log_level"`
}

type InitialState struct {
	Level       float64 `yaml:"level"`
	Temperature float64 `yaml:"temperature"`
}

func DefaultConfig() *Config {
	return &Config{
		Parameters:      boiler.DefaultParameters(),
		Setpoints:       boiler.DefaultSetpoints(),
		VolumeReference: boiler.NewTemperature.String(),
		Pacing:          sim.DefaultPacing(),
		Duration:        DefaultDuration,
		LogLevel:        DefaultLogLevel,
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto reads path over cfg. Keys missing from the file keep the values
// already in cfg, so a preset can be refined by a file.
func LoadInto(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides the log level and tick interval from the environment.
// A malformed tick interval is reported and leaves the config unchanged.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvTickInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTickInterval, err)
		}
		cfg.Pacing.TickInterval = d
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.Parameters.Validate(); err != nil {
		return err
	}
	if err := c.Setpoints.Validate(); err != nil {
		return err
	}
	if err := c.Pacing.Validate(); err != nil {
		return err
	}
	if _, err := c.volumeReference(); err != nil {
		return err
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %g", c.Duration)
	}
	return nil
}

func (c *Config) volumeReference() (boiler.VolumeReference, error) {
	switch strings.ToLower(c.VolumeReference) {
	case "", boiler.NewTemperature.String():
		return boiler.NewTemperature, nil
	case boiler.CurrentTemperature.String():
		return boiler.CurrentTemperature, nil
	default:
		return 0, fmt.Errorf("unknown volume reference %q (valid: new, current)", c.VolumeReference)
	}
}

// EngineOptions translates the initial state and model choices into engine
// options.
func (c *Config) EngineOptions() ([]boiler.Option, error) {
	ref, err := c.volumeReference()
	if err != nil {
		return nil, err
	}
	return []boiler.Option{
		boiler.WithInitialLevel(c.Initial.Level),
		boiler.WithInitialTemperature(c.Initial.Temperature),
		boiler.WithVolumeReference(ref),
	}, nil
}

// Dt is the simulated seconds per physics tick.
func (c *Config) Dt() float64 {
	return c.Pacing.SimulatedStep(c.Parameters.TimeStep)
}

// RunConfig is the batch-run equivalent of this config.
func (c *Config) RunConfig() sim.Config {
	return sim.Config{Dt: c.Dt(), Duration: c.Duration}
}
