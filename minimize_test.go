package gbtune

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Bowl-shaped objective with its minimum inside the search box.
func bowl(p Params) (float64, error) {
	x := p.Float("x")
	y := p.Float("y")

	return (x-0.3)*(x-0.3) + (y-0.7)*(y-0.7), nil
}

func TestMinimizeBowl(t *testing.T) {
	config := DefaultConfig()
	config.InitialSamples = 8
	config.Iterations = 20
	config.NumCandidates = 30
	config.Seed = 42

	space := Space{
		NewReal("x", 0, 1),
		NewReal("y", 0, 1),
	}

	res, err := Minimize(context.Background(), config, bowl, space)
	assert.NoError(t, err)
	assert.NotNil(t, res)

	// One history entry per evaluation, best value consistent with it.
	assert.Len(t, res.FunHistory, config.InitialSamples+config.Iterations)
	assert.Len(t, res.XHistory, config.InitialSamples+config.Iterations)

	low := math.MaxFloat64
	for _, v := range res.FunHistory {
		if v < low {
			low = v
		}
	}

	assert.Equal(t, low, res.Fun)

	// Best point stays inside the box.
	assert.GreaterOrEqual(t, res.X.Float("x"), 0.0)
	assert.LessOrEqual(t, res.X.Float("x"), 1.0)
	assert.GreaterOrEqual(t, res.X.Float("y"), 0.0)
	assert.LessOrEqual(t, res.X.Float("y"), 1.0)
}

func TestMinimizeUnitBoxAllAcquisitions(t *testing.T) {
	// Continuous dimensions already spanning [0,1]: observations crowd the
	// surrogate model's input space, so predictions must stay finite for
	// every strategy.
	space := Space{
		NewReal("x", 0, 1),
		NewReal("y", 0, 1),
		NewReal("z", 0, 1),
	}

	acquisitions := map[string]AcquisitionFunc{
		"ucb":      UCB,
		"pi":       ProbabilityOfImprovement,
		"ei":       ExpectedImprovement,
		"thompson": ThompsonSampling,
	}

	for name, acq := range acquisitions {
		t.Run(name, func(t *testing.T) {
			config := DefaultConfig()
			config.InitialSamples = 8
			config.Iterations = 15
			config.NumCandidates = 20
			config.Seed = 11
			config.AcquisitionFunc = acq

			res, err := Minimize(context.Background(), config, bowl, space)
			assert.NoError(t, err)
			assert.Len(t, res.FunHistory, 23)

			assert.False(t, math.IsNaN(res.Fun))
			for _, v := range res.FunHistory {
				assert.False(t, math.IsNaN(v))
			}
		})
	}
}

func TestMinimizeDeterministicWithSeed(t *testing.T) {
	config := DefaultConfig()
	config.InitialSamples = 5
	config.Iterations = 10
	config.NumCandidates = 15
	config.Seed = 7

	space := Space{
		NewReal("x", -2, 2),
	}

	objective := func(p Params) (float64, error) {
		x := p.Float("x")

		return x * x, nil
	}

	first, err := Minimize(context.Background(), config, objective, space)
	assert.NoError(t, err)

	second, err := Minimize(context.Background(), config, objective, space)
	assert.NoError(t, err)

	assert.Equal(t, first.Fun, second.Fun)
	assert.Equal(t, first.FunHistory, second.FunHistory)
}

func TestMinimizeMixedSpace(t *testing.T) {
	config := DefaultConfig()
	config.InitialSamples = 5
	config.Iterations = 10
	config.Seed = 1

	space := Space{
		NewLogReal("learning_rate", 0.01, 1.0),
		NewInteger("max_depth", 1, 8),
		NewCategorical("criterion", "gini", "entropy"),
	}

	res, err := Minimize(context.Background(), config, func(p Params) (float64, error) {
		lr := p.Float("learning_rate")
		depth := p.Int("max_depth")

		assert.GreaterOrEqual(t, lr, 0.01)
		assert.LessOrEqual(t, lr, 1.0)
		assert.GreaterOrEqual(t, depth, 1)
		assert.LessOrEqual(t, depth, 8)
		assert.Contains(t, []string{"gini", "entropy"}, p.Category("criterion"))

		return lr * float64(depth), nil
	}, space)

	assert.NoError(t, err)
	assert.Len(t, res.FunHistory, 15)
}

func TestMinimizeProgressChannel(t *testing.T) {
	config := DefaultConfig()
	config.InitialSamples = 3
	config.Iterations = 5
	config.Seed = 3

	progressChan := make(chan ProgressUpdate, config.InitialSamples+config.Iterations)
	config.ProgressChan = progressChan

	space := Space{
		NewReal("x", 0, 1),
	}

	_, err := Minimize(context.Background(), config, func(p Params) (float64, error) {
		return p.Float("x"), nil
	}, space)
	assert.NoError(t, err)

	close(progressChan)

	var sampling, optimizing int

	for update := range progressChan {
		switch update.Phase {
		case PhaseInitialSampling:
			sampling++
		case PhaseOptimization:
			optimizing++
		}

		assert.Len(t, update.Current, 1)
	}

	assert.Equal(t, config.InitialSamples, sampling)
	assert.Equal(t, config.Iterations, optimizing)
}

func TestMinimizeObjectiveErrorsArePenalized(t *testing.T) {
	config := DefaultConfig()
	config.InitialSamples = 4
	config.Iterations = 4
	config.Seed = 9

	space := Space{
		NewReal("x", 0, 1),
	}

	res, err := Minimize(context.Background(), config, func(p Params) (float64, error) {
		return 0, errors.New("boom")
	}, space)

	// Evaluation failures never abort the run.
	assert.NoError(t, err)
	assert.Len(t, res.FunHistory, 8)
	assert.Equal(t, math.MaxFloat64/2, res.Fun)
}

func TestMinimizeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	config := DefaultConfig()
	config.Seed = 2

	space := Space{
		NewReal("x", 0, 1),
	}

	res, err := Minimize(ctx, config, func(p Params) (float64, error) {
		return p.Float("x"), nil
	}, space)

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, res)
	assert.Empty(t, res.FunHistory)
}

func TestMinimizeValidation(t *testing.T) {
	config := DefaultConfig()

	space := Space{
		NewReal("x", 0, 1),
	}

	objective := func(p Params) (float64, error) { return 0, nil }

	_, err := Minimize(context.Background(), config, nil, space)
	assert.Error(t, err)

	_, err = Minimize(context.Background(), config, objective, Space{})
	assert.Error(t, err)

	bad := config
	bad.InitialSamples = 0
	_, err = Minimize(context.Background(), bad, objective, space)
	assert.Error(t, err)

	bad = config
	bad.AcquisitionFunc = nil
	_, err = Minimize(context.Background(), bad, objective, space)
	assert.Error(t, err)
}
