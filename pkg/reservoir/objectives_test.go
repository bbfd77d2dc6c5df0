package reservoir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReliability(t *testing.T) {
	demand := []float64{10, 10, 10, 10}

	assert.Zero(t, Reliability([]float64{10, 10, 10, 10}, demand), "meeting demand exactly is not a failure")
	assert.Zero(t, Reliability([]float64{12, 11, 10, 15}, demand))
	assert.Equal(t, 1.0, Reliability([]float64{0, 0, 0, 0}, demand))
	assert.Equal(t, 0.25, Reliability([]float64{10, 9.99, 10, 10}, demand))
	assert.Zero(t, Reliability(nil, nil))
}

func TestSquaredDeficit(t *testing.T) {
	demand := []float64{10, 10, 10, 10}

	assert.Zero(t, SquaredDeficit([]float64{10, 11, 12, 10}, demand), "surplus never counts as deficit")
	// Shortfalls of 2 and 4: (4 + 16) / 4
	assert.InDelta(t, 5.0, SquaredDeficit([]float64{8, 10, 6, 10}, demand), 1e-12)
	assert.GreaterOrEqual(t, SquaredDeficit([]float64{0, 0, 0, 0}, demand), 0.0)
}

func TestMinStorageViolation(t *testing.T) {
	// Initial storage is excluded: only post-decision states count.
	storage := []float64{0, 30, 25, 10, 20}

	assert.Zero(t, MinStorageViolation(storage, 10))
	// Threshold 20: violations 0, 0, 10, 0 over the four post-decision states.
	assert.InDelta(t, 2.5, MinStorageViolation(storage, 20), 1e-12)
	assert.Zero(t, MinStorageViolation([]float64{5}, 20), "no post-decision states")
}
