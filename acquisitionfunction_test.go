package gbtune

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUCB(t *testing.T) {
	params := AcquisitionParams{Beta: 2.0}

	// mean - beta*sqrt(variance) = 1 - 2*2 = -3.
	assert.InDelta(t, -3.0, UCB(1.0, 4.0, params), 1e-12)

	// Zero variance reduces to the mean.
	assert.InDelta(t, 1.0, UCB(1.0, 0.0, params), 1e-12)

	// Higher uncertainty scores as more promising (lower).
	assert.Less(t, UCB(1.0, 4.0, params), UCB(1.0, 1.0, params))
}

func TestProbabilityOfImprovement(t *testing.T) {
	params := AcquisitionParams{BestSoFar: 1.0, Xi: 0.0}

	// A point predicted well below the best has low PI score (promising).
	below := ProbabilityOfImprovement(0.0, 1.0, params)
	above := ProbabilityOfImprovement(2.0, 1.0, params)

	assert.Less(t, below, 0.5)
	assert.Greater(t, above, 0.5)
	assert.Less(t, below, above)
}

func TestExpectedImprovement(t *testing.T) {
	params := AcquisitionParams{BestSoFar: 1.0, Xi: 0.01}

	below := ExpectedImprovement(0.0, 1.0, params)
	above := ExpectedImprovement(2.0, 1.0, params)

	assert.False(t, math.IsNaN(below))
	assert.False(t, math.IsNaN(above))
	assert.Less(t, below, above)
}

func TestThompsonSampling(t *testing.T) {
	params := AcquisitionParams{
		RandomState: rand.New(rand.NewSource(1)),
	}

	v := ThompsonSampling(1.0, 4.0, params)
	assert.False(t, math.IsNaN(v))

	// Zero variance collapses to the mean regardless of the draw.
	assert.InDelta(t, 1.0, ThompsonSampling(1.0, 0.0, params), 1e-12)
}
