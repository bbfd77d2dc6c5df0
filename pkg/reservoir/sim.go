// Package reservoir implements a weekly mass-balance model of a single
// water-supply reservoir and the objective functions used to score candidate
// release schedules against it.
package reservoir

import (
	"fmt"
	"math"
)

// System holds the physical description of the reservoir together with its
// fixed forcing series. All volumes share one unit; the series share one
// weekly time step.
type System struct {
	InitialStorage float64
	Capacity       float64
	MinStorage     float64
	EnvFlow        float64

	Inflow      []float64
	Evaporation []float64
	Demand      []float64
}

// Trajectory is the realized behavior of the reservoir under one release
// schedule. Storage has one more entry than the other series: Storage[0] is
// the initial storage and Storage[t+1] the state after week t.
type Trajectory struct {
	Storage []float64
	EnvFlow []float64
	Spill   []float64
	Supply  []float64
}

// Horizon returns the number of weekly steps T.
func (s *System) Horizon() int {
	return len(s.Inflow)
}

// Validate reports configuration errors in the system description.
func (s *System) Validate() error {
	t := len(s.Inflow)
	if t == 0 {
		return fmt.Errorf("inflow series is empty")
	}
	if len(s.Evaporation) != t || len(s.Demand) != t {
		return fmt.Errorf("series lengths differ: inflow=%d evaporation=%d demand=%d",
			t, len(s.Evaporation), len(s.Demand))
	}
	if s.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %v", s.Capacity)
	}
	if s.InitialStorage < 0 || s.InitialStorage > s.Capacity {
		return fmt.Errorf("initial storage %v outside [0, %v]", s.InitialStorage, s.Capacity)
	}
	if s.MinStorage < 0 {
		return fmt.Errorf("minimum storage threshold must be non-negative, got %v", s.MinStorage)
	}
	if s.EnvFlow < 0 {
		return fmt.Errorf("environmental flow must be non-negative, got %v", s.EnvFlow)
	}
	for i, series := range [][]float64{s.Inflow, s.Evaporation, s.Demand} {
		name := [...]string{"inflow", "evaporation", "demand"}[i]
		for t, v := range series {
			if v < 0 {
				return fmt.Errorf("%s[%d] is negative: %v", name, t, v)
			}
		}
	}
	return nil
}

// Simulate runs the weekly water balance for one candidate release schedule.
// Each step serves, in priority order, the environmental flow, then the
// requested supply, then spills whatever exceeds capacity. The order is the
// operating policy of the reservoir; reordering it changes the physics being
// modeled and is not a valid refactor. The simulator never errors: when water
// runs short it saturates releases at zero instead.
func (s *System) Simulate(release []float64) Trajectory {
	t := s.Horizon()
	tr := Trajectory{
		Storage: make([]float64, t+1),
		EnvFlow: make([]float64, t),
		Spill:   make([]float64, t),
		Supply:  make([]float64, t),
	}
	tr.Storage[0] = s.InitialStorage

	for i := 0; i < t; i++ {
		available := tr.Storage[i] + s.Inflow[i] - s.Evaporation[i]

		// Environmental compensation is served first, as far as water allows.
		tr.EnvFlow[i] = math.Min(s.EnvFlow, math.Max(available, 0))
		remaining := available - tr.EnvFlow[i]

		tr.Supply[i] = math.Min(math.Max(release[i], 0), math.Max(remaining, 0))
		remaining -= tr.Supply[i]

		tr.Spill[i] = math.Max(remaining-s.Capacity, 0)

		// Evaporation can leave a negative remainder when the reservoir is
		// nearly dry; the surface cannot lose water it does not hold, so
		// storage floors at zero.
		tr.Storage[i+1] = math.Max(remaining-tr.Spill[i], 0)
	}

	return tr
}
