package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/lifeexp/pipeline"
	"github.com/YuminosukeSato/lifeexp/pkg/errors"
)

// runConfig holds the file paths and hyperparameters of a training run.
// Values come from defaults, then the YAML config file, then flags, each
// layer overriding the previous one.
type runConfig struct {
	Train  string `yaml:"train"`
	Test   string `yaml:"test"`
	Output string `yaml:"output"`

	Seed            int64   `yaml:"seed"`
	HeldOutFraction float64 `yaml:"held_out_fraction"`
	Iterations      int     `yaml:"iterations"`
	LearningRate    float64 `yaml:"learning_rate"`
	MaxDepth        int     `yaml:"max_depth"`
	EarlyStopping   int     `yaml:"early_stopping"`
}

func defaultRunConfig() runConfig {
	p := pipeline.DefaultConfig()
	return runConfig{
		Train:           "train.csv",
		Test:            "test.csv",
		Output:          ".",
		Seed:            p.Seed,
		HeldOutFraction: p.HeldOutFraction,
		Iterations:      p.NumIterations,
		LearningRate:    p.LearningRate,
		MaxDepth:        p.MaxDepth,
		EarlyStopping:   p.EarlyStopping,
	}
}

// loadRunConfig overlays a YAML config file on the defaults. An empty path
// returns the defaults untouched.
func loadRunConfig(path string) (runConfig, error) {
	cfg := defaultRunConfig()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config %s", path)
	}
	return cfg, nil
}

// pipelineConfig converts the run configuration into pipeline parameters.
func (c runConfig) pipelineConfig() pipeline.Config {
	return pipeline.Config{
		Seed:            c.Seed,
		HeldOutFraction: c.HeldOutFraction,
		NumIterations:   c.Iterations,
		LearningRate:    c.LearningRate,
		MaxDepth:        c.MaxDepth,
		EarlyStopping:   c.EarlyStopping,
	}
}
