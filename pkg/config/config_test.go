package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resop/pkg/reservoir"
)

const validYAML = `
reservoir:
  initial_storage: 80
  capacity: 150
  min_storage: 20
  env_flow: 2
  release_max: 30
series:
  inflow: [15, 17, 19, 11, 9, 4, 3, 8]
  evaporation: [1, 1, 2, 2, 2, 2, 2, 3]
  demand: [13, 13, 17, 18, 20, 22, 25, 26]
optimizer:
  population_size: 40
  generations: 50
  seed: 7
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMergesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, 40, cfg.Optimizer.PopulationSize)
	assert.Equal(t, 50, cfg.Optimizer.Generations)
	assert.Equal(t, uint64(7), cfg.Optimizer.Seed)

	// Fields absent from the file keep their defaults.
	assert.Equal(t, 0.8, cfg.Optimizer.CrossoverProbability)
	assert.Equal(t, 0.1, cfg.Optimizer.MutationProbability)
	assert.Equal(t, []string{
		reservoir.ObjectiveSquaredDeficit,
		reservoir.ObjectiveMinStorageViolation,
	}, cfg.Objectives)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"zero capacity":         func(c *Config) { c.Reservoir.Capacity = 0 },
		"negative min storage":  func(c *Config) { c.Reservoir.MinStorage = -1 },
		"zero release max":      func(c *Config) { c.Reservoir.ReleaseMax = 0 },
		"one objective":         func(c *Config) { c.Objectives = c.Objectives[:1] },
		"tiny population":       func(c *Config) { c.Optimizer.PopulationSize = 1 },
		"negative generations":  func(c *Config) { c.Optimizer.Generations = -5 },
		"bad crossover":         func(c *Config) { c.Optimizer.CrossoverProbability = 2 },
		"bad mutation":          func(c *Config) { c.Optimizer.MutationProbability = -0.5 },
		"no series":             func(c *Config) { c.Series = SeriesConfig{} },
	}

	for name, mutate := range cases {
		cfg, err := Load(writeConfig(t, validYAML))
		require.NoError(t, err, name)
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestBuildSystemInline(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	sys, err := cfg.BuildSystem()
	require.NoError(t, err)

	assert.Equal(t, 8, sys.Horizon())
	assert.Equal(t, 80.0, sys.InitialStorage)
	assert.Equal(t, 150.0, sys.Capacity)
	assert.Equal(t, []float64{13, 13, 17, 18, 20, 22, 25, 26}, sys.Demand)
}

func TestBuildSystemFromCSV(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "weeks.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"week,inflow,evaporation,demand\n0,15,1,13\n1,17,1,13\n"), 0o644))

	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)
	cfg.Series = SeriesConfig{Path: csvPath}

	sys, err := cfg.BuildSystem()
	require.NoError(t, err)
	assert.Equal(t, 2, sys.Horizon())
	assert.Equal(t, []float64{15, 17}, sys.Inflow)
}

func TestBuildSystemMismatchedSeries(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)
	cfg.Series.Demand = cfg.Series.Demand[:3]

	_, err = cfg.BuildSystem()
	assert.Error(t, err)
}
