package reservoir

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Reliability is the fraction of weeks in which realized supply falls short of
// demand. 0 means demand was met every week; 1 means it was never met.
// Lower is better.
func Reliability(supply, demand []float64) float64 {
	if len(supply) == 0 {
		return 0
	}
	failures := 0
	for t := range supply {
		if supply[t] < demand[t] {
			failures++
		}
	}
	return float64(failures) / float64(len(supply))
}

// SquaredDeficit is the mean squared weekly shortfall. Squaring weights a few
// severe failures more heavily than many mild ones.
func SquaredDeficit(supply, demand []float64) float64 {
	if len(supply) == 0 {
		return 0
	}
	deficits := make([]float64, len(supply))
	for t := range supply {
		d := math.Max(demand[t]-supply[t], 0)
		deficits[t] = d * d
	}
	return stat.Mean(deficits, nil)
}

// MinStorageViolation is the mean shortfall of storage below the quality
// threshold, over the post-decision states Storage[1..T]. The initial storage
// is fixed input, not a consequence of the schedule, so it is excluded.
func MinStorageViolation(storage []float64, minStorage float64) float64 {
	if len(storage) <= 1 {
		return 0
	}
	violations := make([]float64, len(storage)-1)
	for t := 1; t < len(storage); t++ {
		violations[t-1] = math.Max(minStorage-storage[t], 0)
	}
	return stat.Mean(violations, nil)
}
