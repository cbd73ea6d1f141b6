package main

import (
	"os"
	"path/filepath"

	"github.com/go-faster/yaml"

	"github.com/go-faster/promqlcheck/internal/promql/promqlcheck"
)

const (
	defaultConfigName = "promqlcheck.yml"
	configEnv         = "PROMQLCHECK_CONFIG"
)

// Config is the promqlcheck config.
type Config struct {
	Checker promqlcheck.Config `yaml:",inline"`
	Lint    LintConfig         `yaml:"lint"`
}

// LintConfig configures rule file linting.
type LintConfig struct {
	// Concurrency limits number of files linted in parallel.
	Concurrency int `yaml:"concurrency"`
}

func loadConfig(name string) (cfg Config, _ error) {
	if name == "" {
		// Environment variable has higher precedence than default path.
		name = os.Getenv(configEnv)
	}
	if name == "" {
		name = defaultConfigName
		if _, err := os.Stat(name); err != nil {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(filepath.Clean(name))
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
