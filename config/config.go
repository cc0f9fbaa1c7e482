// Package config defines the YAML configuration for tuning runs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultIterations     = 30
	DefaultInitialSamples = 10
	DefaultNumCandidates  = 50
	DefaultFolds          = 5
	DefaultSamples        = 300
	DefaultFeatures       = 8
	DefaultClasses        = 3
)

// Config describes one tuning run: where the data comes from, the search
// space bounds for the classifier's hyperparameters, the optimizer budget,
// and the cross-validation setup.
type Config struct {
	Dataset   DatasetConfig   `yaml:"dataset"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Space     SpaceConfig     `yaml:"space"`
	CV        CVConfig        `yaml:"cv"`
}

// DatasetConfig selects the dataset. With Path set, a CSV file is loaded;
// otherwise a deterministic synthetic dataset is generated.
type DatasetConfig struct {
	Path     string `yaml:"path"`
	LabelCol int    `yaml:"label_col"`
	Samples  int    `yaml:"samples"`
	Features int    `yaml:"features"`
	Classes  int    `yaml:"classes"`
	Seed     int64  `yaml:"seed"`
}

// OptimizerConfig sets the optimization budget and strategy.
type OptimizerConfig struct {
	Iterations     int     `yaml:"iterations"`
	InitialSamples int     `yaml:"initial_samples"`
	NumCandidates  int     `yaml:"num_candidates"`
	Acquisition    string  `yaml:"acquisition"` // ucb, ei, pi, thompson
	Beta           float64 `yaml:"beta"`
	Xi             float64 `yaml:"xi"`
	Seed           int64   `yaml:"seed"`
}

// SpaceConfig bounds the classifier hyperparameters being searched.
type SpaceConfig struct {
	LearningRateMin    float64 `yaml:"learning_rate_min"`
	LearningRateMax    float64 `yaml:"learning_rate_max"`
	MaxDepthMin        int     `yaml:"max_depth_min"`
	MaxDepthMax        int     `yaml:"max_depth_max"`
	NEstimatorsMin     int     `yaml:"n_estimators_min"`
	NEstimatorsMax     int     `yaml:"n_estimators_max"`
	SubsampleMin       float64 `yaml:"subsample_min"`
	SubsampleMax       float64 `yaml:"subsample_max"`
	MinSamplesSplitMin int     `yaml:"min_samples_split_min"`
	MinSamplesSplitMax int     `yaml:"min_samples_split_max"`
}

// CVConfig sets the cross-validation scheme used by the objective.
type CVConfig struct {
	Folds      int   `yaml:"folds"`
	Workers    int   `yaml:"workers"`
	Stratified bool  `yaml:"stratified"`
	Seed       int64 `yaml:"seed"`
}

// Default returns a runnable configuration: synthetic dataset, UCB
// acquisition, stratified 5-fold CV, and sensible bounds for every tuned
// hyperparameter.
func Default() *Config {
	return &Config{
		Dataset: DatasetConfig{
			LabelCol: -1,
			Samples:  DefaultSamples,
			Features: DefaultFeatures,
			Classes:  DefaultClasses,
			Seed:     1,
		},
		Optimizer: OptimizerConfig{
			Iterations:     DefaultIterations,
			InitialSamples: DefaultInitialSamples,
			NumCandidates:  DefaultNumCandidates,
			Acquisition:    "ucb",
			Beta:           2.0,
			Xi:             0.01,
		},
		Space: SpaceConfig{
			LearningRateMin:    0.01,
			LearningRateMax:    1.0,
			MaxDepthMin:        1,
			MaxDepthMax:        8,
			NEstimatorsMin:     20,
			NEstimatorsMax:     150,
			SubsampleMin:       0.5,
			SubsampleMax:       1.0,
			MinSamplesSplitMin: 2,
			MinSamplesSplitMax: 30,
		},
		CV: CVConfig{
			Folds:      DefaultFolds,
			Workers:    2,
			Stratified: true,
			Seed:       1,
		},
	}
}

// Load reads a YAML file over the defaults, so partial files work.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate rejects configurations the tuner cannot run.
func (c *Config) Validate() error {
	if c.Dataset.Path == "" {
		if c.Dataset.Samples < 10 {
			return fmt.Errorf("config: dataset.samples must be at least 10")
		}

		if c.Dataset.Features < 1 {
			return fmt.Errorf("config: dataset.features must be at least 1")
		}

		if c.Dataset.Classes < 2 {
			return fmt.Errorf("config: dataset.classes must be at least 2")
		}
	}

	if c.Optimizer.InitialSamples < 1 {
		return fmt.Errorf("config: optimizer.initial_samples must be at least 1")
	}

	if c.Optimizer.Iterations < 0 {
		return fmt.Errorf("config: optimizer.iterations must not be negative")
	}

	switch c.Optimizer.Acquisition {
	case "ucb", "ei", "pi", "thompson":
	default:
		return fmt.Errorf("config: unknown acquisition %q", c.Optimizer.Acquisition)
	}

	if c.Space.LearningRateMin <= 0 || c.Space.LearningRateMin > c.Space.LearningRateMax {
		return fmt.Errorf("config: invalid learning rate bounds")
	}

	if c.Space.MaxDepthMin < 1 || c.Space.MaxDepthMin > c.Space.MaxDepthMax {
		return fmt.Errorf("config: invalid max depth bounds")
	}

	if c.Space.NEstimatorsMin < 1 || c.Space.NEstimatorsMin > c.Space.NEstimatorsMax {
		return fmt.Errorf("config: invalid n_estimators bounds")
	}

	if c.Space.SubsampleMin <= 0 || c.Space.SubsampleMax > 1 || c.Space.SubsampleMin > c.Space.SubsampleMax {
		return fmt.Errorf("config: invalid subsample bounds")
	}

	if c.Space.MinSamplesSplitMin < 2 || c.Space.MinSamplesSplitMin > c.Space.MinSamplesSplitMax {
		return fmt.Errorf("config: invalid min_samples_split bounds")
	}

	if c.CV.Folds < 2 {
		return fmt.Errorf("config: cv.folds must be at least 2")
	}

	return nil
}
