package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"whaleopt/woa"
)

// Config is the YAML configuration for a tuning or benchmark run.
type Config struct {
	Optimizer OptimizerConfig `yaml:"optimizer" validate:"required"`
	Data      DataConfig      `yaml:"data,omitempty"`
}

type OptimizerConfig struct {
	Agents  int `yaml:"agents" validate:"gt=0"`
	MaxIter int `yaml:"max_iter" validate:"gt=0"`

	// Chaos selects the diversification policy: replace, subset, or blend.
	Chaos      string  `yaml:"chaos" validate:"omitempty,oneof=replace subset blend"`
	ChaosRate  float64 `yaml:"chaos_rate" validate:"gte=0,lte=1"`
	ChaosBlend float64 `yaml:"chaos_blend" validate:"gte=0,lte=1"`

	Seed    int64 `yaml:"seed"`
	Workers int   `yaml:"workers" validate:"gte=0"`
	Elites  int   `yaml:"elites" validate:"gte=0"`
}

type DataConfig struct {
	// Path to the transaction CSV; when empty a synthetic dataset of Rows
	// transactions is generated.
	Path      string  `yaml:"path,omitempty"`
	Rows      int     `yaml:"rows" validate:"gte=0"`
	TestFrac  float64 `yaml:"test_frac" validate:"gte=0,lt=1"`
	Threshold float64 `yaml:"threshold" validate:"gte=0,lte=1"`
}

func DefaultConfig() *Config {
	return &Config{
		Optimizer: OptimizerConfig{
			Agents:     30,
			MaxIter:    200,
			Chaos:      "replace",
			ChaosRate:  woa.DefaultChaosRate,
			ChaosBlend: woa.DefaultChaosBlend,
			Seed:       1,
			Elites:     5,
		},
		Data: DataConfig{
			Rows:      1000,
			TestFrac:  0.25,
			Threshold: 0.5,
		},
	}
}

// LoadConfig reads a YAML config file over the defaults and validates it.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func (c *Config) ChaosMode() (woa.ChaosMode, error) {
	switch c.Optimizer.Chaos {
	case "", "replace":
		return woa.ChaosReplaceAll, nil
	case "subset":
		return woa.ChaosPerturbSubset, nil
	case "blend":
		return woa.ChaosBlendAdditive, nil
	}
	return 0, fmt.Errorf("unknown chaos mode %q", c.Optimizer.Chaos)
}
