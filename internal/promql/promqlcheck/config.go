package promqlcheck

import (
	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// Config is a YAML configuration of Checker.
type Config struct {
	// Functions extends or overrides the Prometheus function table.
	Functions             []Function `yaml:"functions"`
	ExperimentalFunctions bool       `yaml:"experimental_functions"`
	DedupeMatchingLabels  bool       `yaml:"dedupe_matching_labels"`
}

// Options returns Checker options from config.
func (cfg Config) Options(lg *zap.Logger) (Options, error) {
	table := PrometheusFunctions()
	if len(cfg.Functions) > 0 {
		var err error
		table, err = table.With(cfg.Functions...)
		if err != nil {
			return Options{}, errors.Wrap(err, "build function table")
		}
	}
	return Options{
		Functions:             table,
		ExperimentalFunctions: cfg.ExperimentalFunctions,
		DedupeMatchingLabels:  cfg.DedupeMatchingLabels,
		Logger:                lg,
	}, nil
}
