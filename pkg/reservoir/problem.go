package reservoir

import (
	"fmt"
	"math/rand/v2"

	"resop/pkg/multiobjective/framework"
)

// Objective names selectable for a run. Every run optimizes exactly two.
const (
	ObjectiveReliability         = "reliability"
	ObjectiveSquaredDeficit      = "squared_deficit"
	ObjectiveMinStorageViolation = "min_storage_violation"
)

const ProblemName = "ReservoirRelease"

// Problem adapts the reservoir system to the multi-objective framework.
// Genes are raw release volumes in [0, releaseMax], one per week; the
// demand-scaled encoding some earlier formulations used searches a different
// space and is deliberately not supported.
type Problem struct {
	sys        *System
	releaseMax float64
	objectives []framework.ObjectiveFunc
	names      []string
}

var _ framework.Problem = &Problem{}

// NewProblem builds a Problem over a validated system. objectives names two of
// the selectable objective functions.
func NewProblem(sys *System, releaseMax float64, objectives []string) (*Problem, error) {
	if err := sys.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reservoir system: %w", err)
	}
	if releaseMax <= 0 {
		return nil, fmt.Errorf("release upper bound must be positive, got %v", releaseMax)
	}
	if len(objectives) != 2 {
		return nil, fmt.Errorf("exactly 2 objectives required, got %d", len(objectives))
	}

	p := &Problem{
		sys:        sys,
		releaseMax: releaseMax,
		names:      objectives,
	}
	for _, name := range objectives {
		fn, err := p.objectiveByName(name)
		if err != nil {
			return nil, err
		}
		p.objectives = append(p.objectives, fn)
	}
	return p, nil
}

func (p *Problem) objectiveByName(name string) (framework.ObjectiveFunc, error) {
	switch name {
	case ObjectiveReliability:
		return func(sol framework.Solution) float64 {
			tr := p.simulate(sol)
			return Reliability(tr.Supply, p.sys.Demand)
		}, nil
	case ObjectiveSquaredDeficit:
		return func(sol framework.Solution) float64 {
			tr := p.simulate(sol)
			return SquaredDeficit(tr.Supply, p.sys.Demand)
		}, nil
	case ObjectiveMinStorageViolation:
		return func(sol framework.Solution) float64 {
			tr := p.simulate(sol)
			return MinStorageViolation(tr.Storage, p.sys.MinStorage)
		}, nil
	default:
		return nil, fmt.Errorf("unknown objective %q", name)
	}
}

func (p *Problem) simulate(sol framework.Solution) Trajectory {
	return p.sys.Simulate(sol.(*Schedule).Releases)
}

// System returns the underlying reservoir description.
func (p *Problem) System() *System {
	return p.sys
}

// ObjectiveNames returns the configured objective names in evaluation order.
func (p *Problem) ObjectiveNames() []string {
	return p.names
}

func (p *Problem) Name() string {
	return ProblemName
}

func (p *Problem) ObjectiveFuncs() []framework.ObjectiveFunc {
	return p.objectives
}

// Feasibility is enforced inside the simulator, which saturates releases at
// the physically available water, so the search space itself is unconstrained.
func (p *Problem) Constraints() []framework.Constraint {
	return nil
}

func (p *Problem) Bounds() []framework.Bounds {
	b := make([]framework.Bounds, p.sys.Horizon())
	for i := range b {
		b[i] = framework.Bounds{L: 0, H: p.releaseMax}
	}
	return b
}

// Initialize creates an initial random population of schedules.
func (p *Problem) Initialize(popSize int, rng *rand.Rand) []framework.Solution {
	population := make([]framework.Solution, popSize)
	for i := range population {
		population[i] = NewRandomSchedule(p.sys.Horizon(), p.releaseMax, rng)
	}
	return population
}

// TrueParetoFront is unknown for real reservoir systems.
func (p *Problem) TrueParetoFront(int) []framework.ObjectiveSpacePoint {
	return nil
}
