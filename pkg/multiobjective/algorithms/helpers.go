package algorithms

import (
	"resop/pkg/multiobjective/framework"
)

// Normalizer handles objective value normalization
type Normalizer struct {
	min []float64
	max []float64
}

// NewNormalizer creates a normalizer for the given per-objective ranges
func NewNormalizer(min []float64, max []float64) *Normalizer {
	return &Normalizer{
		min: min,
		max: max,
	}
}

// NormalizerForFront derives the per-objective ranges from a front.
func NormalizerForFront(front []*NSGAIISolution) *Normalizer {
	if len(front) == 0 {
		return NewNormalizer(nil, nil)
	}
	n := len(front[0].Value)
	min := make([]float64, n)
	max := make([]float64, n)
	copy(min, front[0].Value)
	copy(max, front[0].Value)
	for _, sol := range front[1:] {
		for i, v := range sol.Value {
			if v < min[i] {
				min[i] = v
			}
			if v > max[i] {
				max[i] = v
			}
		}
	}
	return NewNormalizer(min, max)
}

// Normalize returns normalized objective values in [0,1]
func (n *Normalizer) Normalize(values []float64) []float64 {
	normalized := make([]float64, len(values))
	for i, val := range values {
		// Avoid division by zero
		if n.max[i] == n.min[i] {
			normalized[i] = 0
		} else {
			normalized[i] = (val - n.min[i]) / (n.max[i] - n.min[i])
		}
	}
	return normalized
}

// ParetoFront extracts the first non-dominated front from a population as
// objective-space points.
func ParetoFront(population []*NSGAIISolution) []framework.ObjectiveSpacePoint {
	front := FirstFront(population)
	points := make([]framework.ObjectiveSpacePoint, len(front))
	for i, sol := range front {
		points[i] = sol.Value
	}
	return points
}

// FirstFront returns the non-dominated members of a population.
func FirstFront(population []*NSGAIISolution) []*NSGAIISolution {
	if len(population) == 0 {
		return nil
	}
	fronts := NonDominatedSort(population)
	if len(fronts) == 0 {
		return nil
	}
	return fronts[0]
}
