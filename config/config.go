package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config drives one analysis run.
type Config struct {
	InputPath string `yaml:"input_path"`
	OutputDir string `yaml:"output_dir"`

	Seed       uint64 `yaml:"seed"`
	Replicates int    `yaml:"replicates"`

	// Percentiles to report, as probabilities in (0, 1).
	Percentiles []float64 `yaml:"percentiles"`

	// ConfidenceLevel for bootstrap and asymptotic intervals.
	ConfidenceLevel float64 `yaml:"confidence_level"`

	// Variants of the dataset to analyse: "full", "fever", "foreign".
	Variants []string `yaml:"variants"`

	// Families to fit: "lognormal" first, then auxiliaries.
	Families []string `yaml:"families"`

	MCMC MCMCConfig `yaml:"mcmc"`
}

// MCMCConfig configures the optional Metropolis run.
type MCMCConfig struct {
	Enabled    bool      `yaml:"enabled"`
	Iterations int       `yaml:"iterations"`
	BurnIn     int       `yaml:"burn_in"`
	Thin       int       `yaml:"thin"`
	StepSizes  []float64 `yaml:"step_sizes"`
}

func Default() *Config {
	return &Config{
		InputPath:       "data/incubation.csv",
		OutputDir:       "out",
		Seed:            42,
		Replicates:      1000,
		Percentiles:     []float64{0.05, 0.25, 0.5, 0.75, 0.95},
		ConfidenceLevel: 0.95,
		Variants:        []string{"full", "fever", "foreign"},
		Families:        []string{"lognormal", "weibull"},
		MCMC: MCMCConfig{
			Enabled:    false,
			Iterations: 20000,
			BurnIn:     5000,
			Thin:       10,
			StepSizes:  []float64{0.05, 0.05},
		},
	}
}

// Load reads a YAML config file, filling unset fields with defaults.
// A missing path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Replicates < 0 {
		return fmt.Errorf("replicates must be >= 0, got %d", c.Replicates)
	}
	if c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1 {
		return fmt.Errorf("confidence_level must be in (0, 1), got %v", c.ConfidenceLevel)
	}
	for _, p := range c.Percentiles {
		if p <= 0 || p >= 1 {
			return fmt.Errorf("percentile must be in (0, 1), got %v", p)
		}
	}
	return nil
}
