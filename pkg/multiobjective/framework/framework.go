package framework

import (
	"math"
	"math/rand/v2"
)

// Problem describes the contract a specific multi-objective problem needs to implement.
type Problem interface {
	Name() string

	ObjectiveFuncs() []ObjectiveFunc
	Constraints() []Constraint
	Bounds() []Bounds
	Initialize(int, *rand.Rand) []Solution

	// TrueParetoFront is optional due to the difficulty of finding the true front
	// in some types of problems. When there isn't a way to find the true front,
	// just return nil.
	TrueParetoFront(int) []ObjectiveSpacePoint
}

// Solution is a point in the decision space. All randomized operators draw from
// the supplied source so that runs are reproducible from a single seed.
type Solution interface {
	Clone() Solution
	Crossover(other Solution, rate float64, rng *rand.Rand) (Solution, Solution)
	Mutate(rate float64, rng *rand.Rand)
}

// ObjectiveFunc defines the interface for objective functions
type ObjectiveFunc func(Solution) float64

// ObjectiveSpacePoint represents an N-dimensional point in the objective space.
// As an example, for a problem with 2 objective functions f1 and f2, a point
// in the objective space could be [f1(x'), f2(x')], for the input of x'.
type ObjectiveSpacePoint []float64

// Constraint returns true if the constraint is satisfied and false otherwise.
type Constraint func(Solution) bool

// Bounds is the inclusive [L, H] range of a single decision variable.
type Bounds struct {
	L float64
	H float64
}

// RealSolution represents a solution with real-valued variables.
type RealSolution struct {
	Variables []float64
	Bounds    []Bounds
}

func NewRealSolution(vars []float64, b []Bounds) *RealSolution {
	return &RealSolution{
		Variables: vars,
		Bounds:    b,
	}
}

func (sol *RealSolution) Clone() Solution {
	vars := make([]float64, len(sol.Variables))
	copy(vars, sol.Variables)
	return &RealSolution{
		Variables: vars,
		Bounds:    sol.Bounds,
	}
}

// Crossover performs SBX (Simulated Binary Crossover)
func (sol *RealSolution) Crossover(other Solution, rate float64, rng *rand.Rand) (Solution, Solution) {
	o := other.(*RealSolution)
	child1 := sol.Clone().(*RealSolution)
	child2 := o.Clone().(*RealSolution)

	if rng.Float64() < rate {
		for i := range sol.Variables {
			beta := 0.0
			if rng.Float64() <= 0.5 {
				beta = math.Pow(2*rng.Float64(), 1.0/3.0)
			} else {
				beta = math.Pow(1.0/(2*(1.0-rng.Float64())), 1.0/3.0)
			}

			child1.Variables[i] = 0.5 * ((1+beta)*sol.Variables[i] + (1-beta)*o.Variables[i])
			child2.Variables[i] = 0.5 * ((1-beta)*sol.Variables[i] + (1+beta)*o.Variables[i])

			// Bound checking
			child1.Variables[i] = math.Max(sol.Bounds[i].L, math.Min(sol.Bounds[i].H, child1.Variables[i]))
			child2.Variables[i] = math.Max(sol.Bounds[i].L, math.Min(sol.Bounds[i].H, child2.Variables[i]))
		}
	}

	return child1, child2
}

// Mutate performs polynomial mutation
func (sol *RealSolution) Mutate(rate float64, rng *rand.Rand) {
	for i := range sol.Variables {
		if rng.Float64() < rate {
			delta := 0.0
			if rng.Float64() <= 0.5 {
				delta = math.Pow(2*rng.Float64(), 1.0/3.0) - 1
			} else {
				delta = 1 - math.Pow(2*(1-rng.Float64()), 1.0/3.0)
			}

			sol.Variables[i] += delta * (sol.Bounds[i].H - sol.Bounds[i].L)
			sol.Variables[i] = math.Max(sol.Bounds[i].L, math.Min(sol.Bounds[i].H, sol.Variables[i]))
		}
	}
}
