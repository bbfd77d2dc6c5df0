// Package config loads and validates run configuration for the reservoir
// release optimizer.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"resop/pkg/reservoir"
)

// Config holds everything a run needs: the reservoir description, the forcing
// series (inline or from a file), the objective pair, and optimizer settings.
type Config struct {
	Reservoir  ReservoirConfig `yaml:"reservoir"`
	Series     SeriesConfig    `yaml:"series"`
	Objectives []string        `yaml:"objectives"`
	Optimizer  OptimizerConfig `yaml:"optimizer"`
}

// ReservoirConfig holds the scalar reservoir parameters.
type ReservoirConfig struct {
	InitialStorage float64 `yaml:"initial_storage"`
	Capacity       float64 `yaml:"capacity"`
	MinStorage     float64 `yaml:"min_storage"`
	EnvFlow        float64 `yaml:"env_flow"`
	ReleaseMax     float64 `yaml:"release_max"`
}

// SeriesConfig names a data file or carries the series inline. A non-empty
// Path wins over inline values.
type SeriesConfig struct {
	Path        string    `yaml:"path"`
	Sheet       string    `yaml:"sheet"`
	Inflow      []float64 `yaml:"inflow"`
	Evaporation []float64 `yaml:"evaporation"`
	Demand      []float64 `yaml:"demand"`
}

// OptimizerConfig holds NSGA-II parameters.
type OptimizerConfig struct {
	PopulationSize       int     `yaml:"population_size"`
	Generations          int     `yaml:"generations"`
	CrossoverProbability float64 `yaml:"crossover_probability"`
	MutationProbability  float64 `yaml:"mutation_probability"`
	TournamentSize       int     `yaml:"tournament_size"`
	ParallelEval         bool    `yaml:"parallel_eval"`
	Seed                 uint64  `yaml:"seed"`
}

// Default returns the configuration used when a field is absent from the file.
func Default() *Config {
	return &Config{
		Objectives: []string{
			reservoir.ObjectiveSquaredDeficit,
			reservoir.ObjectiveMinStorageViolation,
		},
		Optimizer: OptimizerConfig{
			PopulationSize:       100,
			Generations:          250,
			CrossoverProbability: 0.8,
			MutationProbability:  0.1,
			TournamentSize:       2,
			ParallelEval:         true,
			Seed:                 1,
		},
	}
}

// Load reads a YAML configuration file, merging it over the defaults. Fields
// absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports configuration errors. Series lengths are checked later,
// once file-based series have been loaded.
func (c *Config) Validate() error {
	if c.Reservoir.Capacity <= 0 {
		return fmt.Errorf("reservoir.capacity must be positive, got %v", c.Reservoir.Capacity)
	}
	if c.Reservoir.InitialStorage < 0 {
		return fmt.Errorf("reservoir.initial_storage must be non-negative, got %v", c.Reservoir.InitialStorage)
	}
	if c.Reservoir.MinStorage < 0 {
		return fmt.Errorf("reservoir.min_storage must be non-negative, got %v", c.Reservoir.MinStorage)
	}
	if c.Reservoir.EnvFlow < 0 {
		return fmt.Errorf("reservoir.env_flow must be non-negative, got %v", c.Reservoir.EnvFlow)
	}
	if c.Reservoir.ReleaseMax <= 0 {
		return fmt.Errorf("reservoir.release_max must be positive, got %v", c.Reservoir.ReleaseMax)
	}
	if len(c.Objectives) != 2 {
		return fmt.Errorf("objectives must name exactly 2 objectives, got %d", len(c.Objectives))
	}
	if c.Optimizer.PopulationSize < 2 {
		return fmt.Errorf("optimizer.population_size must be at least 2, got %d", c.Optimizer.PopulationSize)
	}
	if c.Optimizer.Generations < 0 {
		return fmt.Errorf("optimizer.generations must be non-negative, got %d", c.Optimizer.Generations)
	}
	if c.Optimizer.CrossoverProbability < 0 || c.Optimizer.CrossoverProbability > 1 {
		return fmt.Errorf("optimizer.crossover_probability must be in [0,1], got %v", c.Optimizer.CrossoverProbability)
	}
	if c.Optimizer.MutationProbability < 0 || c.Optimizer.MutationProbability > 1 {
		return fmt.Errorf("optimizer.mutation_probability must be in [0,1], got %v", c.Optimizer.MutationProbability)
	}
	if c.Series.Path == "" && len(c.Series.Inflow) == 0 {
		return fmt.Errorf("series.path or inline series required")
	}
	return nil
}

// BuildSystem assembles a validated reservoir.System, loading file-based
// series when configured.
func (c *Config) BuildSystem() (*reservoir.System, error) {
	series := reservoir.Series{
		Inflow:      c.Series.Inflow,
		Evaporation: c.Series.Evaporation,
		Demand:      c.Series.Demand,
	}
	if c.Series.Path != "" {
		loaded, err := reservoir.LoadSeries(c.Series.Path, c.Series.Sheet)
		if err != nil {
			return nil, err
		}
		series = loaded
	}

	sys := &reservoir.System{
		InitialStorage: c.Reservoir.InitialStorage,
		Capacity:       c.Reservoir.Capacity,
		MinStorage:     c.Reservoir.MinStorage,
		EnvFlow:        c.Reservoir.EnvFlow,
		Inflow:         series.Inflow,
		Evaporation:    series.Evaporation,
		Demand:         series.Demand,
	}
	if err := sys.Validate(); err != nil {
		return nil, err
	}
	return sys, nil
}
