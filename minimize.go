package gbtune

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"
)

//////
// Exported functionalities.
//////

// penaltyValue is recorded for points whose objective evaluation fails. It is
// large enough to steer the surrogate model away from the failing region
// while leaving headroom so arithmetic on it cannot overflow.
const penaltyValue = math.MaxFloat64 / 2

// DefaultConfig returns a configuration suitable for most tuning runs: a
// moderate budget with the UCB acquisition function.
func DefaultConfig() Config {
	return Config{
		Iterations:      50,
		InitialSamples:  10,
		NumCandidates:   50,
		AcquisitionFunc: UCB,
		AcqParams: AcquisitionParams{
			BestSoFar:   math.MaxFloat64,
			Beta:        2.0,
			RandomState: rand.New(rand.NewSource(time.Now().UnixNano())),
			Xi:          0.01,
		},
		ProgressChan: nil, // Default to no progress updates.
	}
}

// Minimize searches the given space for the point that minimizes the
// objective, using Bayesian optimization: a Gaussian Process surrogate model
// combined with an acquisition function.
//
// Parameters:
// - ctx: cancels the run between evaluations; the partial result is returned
// - config: budget and strategy, see Config and DefaultConfig
// - objective: the function to minimize, see ObjectiveFunc
// - space: the search space, see Space
//
// Returns the best point found, its objective value, and the full evaluation
// history.
//
// How it works:
//  1. Evaluates InitialSamples random points to seed the surrogate model.
//  2. For each of Iterations steps:
//     - draws NumCandidates random points from the space
//     - scores each with the acquisition function using the model's
//     prediction
//     - evaluates the objective at the most promising candidate
//     - feeds the observation back into the model
//  3. Returns the best point seen across both phases.
//
// Usage example:
//
//	space := gbtune.Space{
//	    gbtune.NewLogReal("learning_rate", 0.01, 1.0),
//	    gbtune.NewInteger("max_depth", 1, 8),
//	}
//
//	res, err := gbtune.Minimize(ctx, gbtune.DefaultConfig(),
//	    func(p gbtune.Params) (float64, error) {
//	        return trainAndScore(p.Float("learning_rate"), p.Int("max_depth"))
//	    },
//	    space,
//	)
//
// Notes:
// - Total objective evaluations = InitialSamples + Iterations.
// - Failed evaluations are recorded with a penalty, not propagated.
// - Set Config.Seed for reproducible runs.
// - Safe to call concurrently with independent configs.
func Minimize(
	ctx context.Context,
	config Config,
	objective ObjectiveFunc,
	space Space,
) (*Result, error) {
	if objective == nil {
		return nil, fmt.Errorf("minimize: nil objective")
	}

	if err := space.Validate(); err != nil {
		return nil, fmt.Errorf("minimize: %w", err)
	}

	if config.InitialSamples < 1 {
		return nil, fmt.Errorf("minimize: InitialSamples must be at least 1")
	}

	if config.Iterations > 0 && config.NumCandidates < 1 {
		return nil, fmt.Errorf("minimize: NumCandidates must be at least 1")
	}

	if config.AcquisitionFunc == nil {
		return nil, fmt.Errorf("minimize: nil acquisition function")
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(seed))
	var rngMu sync.Mutex

	safeSample := func() []float64 {
		rngMu.Lock()
		defer rngMu.Unlock()

		return space.Sample(rng)
	}

	// The surrogate model works in unit-hypercube coordinates so every
	// dimension contributes on the same scale regardless of its domain.
	gp := newGaussianProcess()

	result := &Result{
		Fun:        math.MaxFloat64,
		XHistory:   make([]Params, 0, config.InitialSamples+config.Iterations),
		FunHistory: make([]float64, 0, config.InitialSamples+config.Iterations),
	}

	// bestMu protects result.X and result.Fun for progress snapshots.
	var bestMu sync.Mutex

	sendProgress := func(phase string, iteration, total int, current []float64, value float64) {
		if config.ProgressChan == nil {
			return
		}

		bestMu.Lock()

		update := ProgressUpdate{
			Phase:     phase,
			Iteration: iteration,
			Total:     total,
			Current:   append([]float64(nil), current...),
			Best:      result.X.Values(),
			BestValue: result.Fun,
			LastValue: value,
		}

		bestMu.Unlock()

		select {
		case config.ProgressChan <- update:
		default:
			// Skip update if channel is full.
		}
	}

	// evaluate runs the objective at x, converts failures into the
	// penalty value, and records the observation everywhere it belongs.
	evaluate := func(x []float64) float64 {
		p := NewParams(space, x)

		value, err := objective(p)
		if err != nil {
			value = penaltyValue
		}

		gp.Observe(space.Unit(x), value)

		result.XHistory = append(result.XHistory, p)
		result.FunHistory = append(result.FunHistory, value)

		bestMu.Lock()
		if value < result.Fun {
			result.Fun = value
			result.X = p
		}
		bestMu.Unlock()

		return value
	}

	// Phase 1: initial random sampling to establish a baseline model of
	// the objective's behavior across the space.
	for i := 0; i < config.InitialSamples; i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		x := safeSample()
		value := evaluate(x)

		sendProgress(PhaseInitialSampling, i+1, config.InitialSamples, x, value)
	}

	// Phase 2: Bayesian optimization loop. Each step evaluates the single
	// candidate the acquisition function considers most promising.
	for i := 0; i < config.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		config.AcqParams.BestSoFar = result.Fun

		var next []float64
		bestAcquisition := math.MaxFloat64

		for j := 0; j < config.NumCandidates; j++ {
			candidate := safeSample()

			mean, variance := gp.Predict(space.Unit(candidate))

			acquisition := config.AcquisitionFunc(mean, variance, config.AcqParams)

			if acquisition < bestAcquisition {
				bestAcquisition = acquisition
				next = candidate
			}
		}

		// No candidate won (every score was NaN or +Inf): fall back to
		// plain exploration rather than evaluating nothing.
		if next == nil {
			next = safeSample()
		}

		value := evaluate(next)

		sendProgress(PhaseOptimization, i+1, config.Iterations, next, value)
	}

	return result, nil
}
