package reservoir

import (
	"math"
	"math/rand/v2"

	"resop/pkg/multiobjective/framework"
)

// Schedule is a candidate release schedule: one requested release volume per
// week, each bounded to [0, Max]. It is the decision vector the optimizer
// manipulates.
type Schedule struct {
	Releases []float64
	Max      float64
}

var _ framework.Solution = &Schedule{}

// NewRandomSchedule draws a schedule uniformly at random within the release
// bounds.
func NewRandomSchedule(horizon int, max float64, rng *rand.Rand) *Schedule {
	releases := make([]float64, horizon)
	for t := range releases {
		releases[t] = rng.Float64() * max
	}
	return &Schedule{Releases: releases, Max: max}
}

func (s *Schedule) Clone() framework.Solution {
	releases := make([]float64, len(s.Releases))
	copy(releases, s.Releases)
	return &Schedule{Releases: releases, Max: s.Max}
}

// Crossover performs single-point crossover: child 1 takes this schedule's
// weeks before the cut and the other parent's weeks from the cut on; child 2
// is the complementary splice.
func (s *Schedule) Crossover(other framework.Solution, rate float64, rng *rand.Rand) (framework.Solution, framework.Solution) {
	o := other.(*Schedule)
	child1 := s.Clone().(*Schedule)
	child2 := o.Clone().(*Schedule)

	if len(s.Releases) > 1 && rng.Float64() < rate {
		point := 1 + rng.IntN(len(s.Releases)-1)
		for t := point; t < len(s.Releases); t++ {
			child1.Releases[t], child2.Releases[t] = child2.Releases[t], child1.Releases[t]
		}
	}

	return child1, child2
}

// Mutate independently resamples each week's release uniformly within bounds
// with the given per-gene probability.
func (s *Schedule) Mutate(rate float64, rng *rand.Rand) {
	for t := range s.Releases {
		if rng.Float64() < rate {
			s.Releases[t] = rng.Float64() * s.Max
		}
	}
}

// Clamp forces every release back into [0, Max]. Variation operators keep the
// bounds themselves, but external callers constructing schedules by hand may
// not.
func (s *Schedule) Clamp() {
	for t := range s.Releases {
		s.Releases[t] = math.Max(0, math.Min(s.Max, s.Releases[t]))
	}
}
