package reservoir

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eightWeekSystem is the worked scenario: an 8-week horizon with demand
// rising as inflow falls, so the reservoir drains over the planning period.
func eightWeekSystem() *System {
	return &System{
		InitialStorage: 80,
		Capacity:       150,
		MinStorage:     20,
		EnvFlow:        2,
		Inflow:         []float64{15, 17, 19, 11, 9, 4, 3, 8},
		Evaporation:    []float64{1, 1, 2, 2, 2, 2, 2, 3},
		Demand:         []float64{13, 13, 17, 18, 20, 22, 25, 26},
	}
}

func TestSimulateDemandSchedule(t *testing.T) {
	sys := eightWeekSystem()
	require.NoError(t, sys.Validate())

	// Release exactly the demand every week.
	tr := sys.Simulate(sys.Demand)

	wantStorage := []float64{80, 79, 80, 78, 67, 52, 30, 4, 0}
	assert.Equal(t, wantStorage, tr.Storage)

	// Weeks 0-6 hold enough water: supply meets demand, env flow is served in
	// full. Week 7 has only 7 units left after the environmental release.
	for w := 0; w < 7; w++ {
		assert.Equal(t, sys.Demand[w], tr.Supply[w], "week %d", w)
		assert.Equal(t, 2.0, tr.EnvFlow[w], "week %d", w)
	}
	assert.Equal(t, 7.0, tr.Supply[7])
	assert.Equal(t, 2.0, tr.EnvFlow[7])

	for w, s := range tr.Spill {
		assert.Zero(t, s, "week %d", w)
	}

	assert.InDelta(t, 1.0/8.0, Reliability(tr.Supply, sys.Demand), 1e-12)
	assert.InDelta(t, 19.0*19.0/8.0, SquaredDeficit(tr.Supply, sys.Demand), 1e-12)
	assert.InDelta(t, (16.0+20.0)/8.0, MinStorageViolation(tr.Storage, sys.MinStorage), 1e-12)
}

func TestSimulatePhysicalBounds(t *testing.T) {
	sys := eightWeekSystem()
	rng := rand.New(rand.NewPCG(11, 11))

	for trial := 0; trial < 200; trial++ {
		release := make([]float64, sys.Horizon())
		for i := range release {
			release[i] = rng.Float64() * 60
		}
		tr := sys.Simulate(release)

		for i, s := range tr.Storage {
			assert.GreaterOrEqual(t, s, 0.0, "storage[%d]", i)
			assert.LessOrEqual(t, s, sys.Capacity, "storage[%d]", i)
		}
		for i := range tr.Supply {
			assert.GreaterOrEqual(t, tr.Supply[i], 0.0)
			assert.LessOrEqual(t, tr.Supply[i], release[i], "realized supply can never exceed the request")
			assert.GreaterOrEqual(t, tr.EnvFlow[i], 0.0)
			assert.GreaterOrEqual(t, tr.Spill[i], 0.0)
		}
	}
}

func TestSimulateZeroRelease(t *testing.T) {
	sys := eightWeekSystem()
	tr := sys.Simulate(make([]float64, sys.Horizon()))

	for i, s := range tr.Supply {
		assert.Zero(t, s, "week %d", i)
	}
	for i, s := range tr.Storage {
		assert.GreaterOrEqual(t, s, 0.0, "storage[%d]", i)
		assert.LessOrEqual(t, s, sys.Capacity, "storage[%d]", i)
	}
}

func TestSimulateSpillsAboveCapacity(t *testing.T) {
	sys := &System{
		InitialStorage: 100,
		Capacity:       100,
		EnvFlow:        2,
		Inflow:         []float64{50},
		Evaporation:    []float64{0},
		Demand:         []float64{0},
	}
	tr := sys.Simulate([]float64{0})

	assert.Equal(t, 48.0, tr.Spill[0])
	assert.Equal(t, 100.0, tr.Storage[1])
}

func TestSimulateDryReservoir(t *testing.T) {
	sys := &System{
		InitialStorage: 0,
		Capacity:       100,
		EnvFlow:        2,
		Inflow:         []float64{1, 0},
		Evaporation:    []float64{5, 0},
		Demand:         []float64{10, 10},
	}
	tr := sys.Simulate([]float64{10, 10})

	// Week 0 has negative available water: nothing can be released.
	assert.Zero(t, tr.EnvFlow[0])
	assert.Zero(t, tr.Supply[0])
	assert.Zero(t, tr.Spill[0])
	assert.Zero(t, tr.Storage[1])
	assert.Zero(t, tr.Storage[2])
}

func TestSystemValidate(t *testing.T) {
	cases := map[string]func(*System){
		"empty series":            func(s *System) { s.Inflow = nil },
		"length mismatch":         func(s *System) { s.Demand = s.Demand[:3] },
		"zero capacity":           func(s *System) { s.Capacity = 0 },
		"initial above capacity":  func(s *System) { s.InitialStorage = 500 },
		"negative min storage":    func(s *System) { s.MinStorage = -1 },
		"negative env flow":       func(s *System) { s.EnvFlow = -2 },
		"negative inflow value":   func(s *System) { s.Inflow[2] = -1 },
		"negative demand value":   func(s *System) { s.Demand[0] = -1 },
		"negative evap value":     func(s *System) { s.Evaporation[5] = -0.5 },
	}
	for name, mutate := range cases {
		sys := eightWeekSystem()
		mutate(sys)
		assert.Error(t, sys.Validate(), name)
	}

	assert.NoError(t, eightWeekSystem().Validate())
}
