package gbtune

import (
	"math/rand"
)

// ObjectiveFunc is the function being minimized. It receives a candidate
// point from the search space and returns the objective value at that point,
// lower being better.
//
// A returned error does not abort the optimization: the point is recorded
// with a large penalty value so the surrogate model learns to avoid the
// failing region.
//
// For hyperparameter tuning against a score that should be maximized (for
// example cross-validated accuracy), return its negation:
//
//	objective := func(p gbtune.Params) (float64, error) {
//	    clf := boost.New(
//	        boost.WithLearningRate(p.Float("learning_rate")),
//	        boost.WithMaxDepth(p.Int("max_depth")),
//	    )
//	    mean, err := cv.MeanScore(ctx, factory, X, y, folds, workers)
//	    if err != nil {
//	        return 0, err
//	    }
//	    return -mean, nil
//	}
type ObjectiveFunc func(p Params) (float64, error)

// AcquisitionFunc scores a candidate point from the surrogate model's
// prediction. Lower values indicate more promising points.
//
// Parameters:
// - mean: predicted objective value at the point
// - variance: prediction uncertainty at the point
// - params: additional knobs, see AcquisitionParams
//
// Built-in implementations: UCB, ProbabilityOfImprovement,
// ExpectedImprovement, ThompsonSampling. Custom functions must be
// thread-safe and must return lower values for more promising points.
type AcquisitionFunc func(mean, variance float64, params AcquisitionParams) float64

// AcquisitionParams holds the knobs shared by the acquisition functions.
// Each strategy reads only the fields it needs.
type AcquisitionParams struct {
	// Beta controls the exploration-exploitation trade-off in UCB. Higher
	// values favor uncertain regions. Typical range 0.1-5.0; 2.0 is a
	// reasonable default.
	Beta float64

	// Xi is the minimum-improvement margin used by PI and EI. Higher
	// values explore more. Typical range 0.01-0.1.
	Xi float64

	// BestSoFar is the lowest objective value observed so far. The
	// optimizer maintains it during the run; initialize to
	// math.MaxFloat64.
	BestSoFar float64

	// RandomState is the generator used by ThompsonSampling. Must be
	// non-nil when that strategy is selected, and must not be shared
	// between concurrent runs.
	RandomState *rand.Rand
}

// Config controls the optimization budget and strategy.
type Config struct {
	// Iterations is the number of model-guided evaluations performed
	// after the initial sampling phase.
	Iterations int

	// InitialSamples is the number of random points evaluated before the
	// surrogate model starts guiding the search.
	InitialSamples int

	// NumCandidates is the number of random candidates scored by the
	// acquisition function per iteration; only the winner is evaluated.
	NumCandidates int

	// AcquisitionFunc selects the next-point strategy.
	AcquisitionFunc AcquisitionFunc

	// AcqParams configures the acquisition function.
	AcqParams AcquisitionParams

	// Seed fixes the random source for reproducible runs. Zero means
	// seed from the clock.
	Seed int64

	// ProgressChan, when non-nil, receives one ProgressUpdate per
	// evaluation. Sends are non-blocking; slow consumers miss updates
	// rather than stalling the optimizer.
	ProgressChan chan<- ProgressUpdate
}

// ProgressUpdate is a snapshot of the optimizer's state after one
// evaluation.
type ProgressUpdate struct {
	// Phase is PhaseInitialSampling or PhaseOptimization.
	Phase string

	// Iteration is the 1-based evaluation index within the phase.
	Iteration int

	// Total is the number of evaluations in the phase.
	Total int

	// Current is the point just evaluated, in dimension order.
	Current []float64

	// Best is the best point found so far, in dimension order.
	Best []float64

	// BestValue is the lowest objective value observed so far.
	BestValue float64

	// LastValue is the objective value of the point just evaluated.
	LastValue float64
}

// Phase names reported through ProgressUpdate.
const (
	PhaseInitialSampling = "InitialSampling"
	PhaseOptimization    = "Optimization"
)

// Result holds the outcome of a Minimize run: the best point, its objective
// value, and the full evaluation history in order.
type Result struct {
	// X is the best point found.
	X Params

	// Fun is the objective value at X.
	Fun float64

	// XHistory lists every evaluated point in evaluation order.
	XHistory []Params

	// FunHistory lists the objective value of each evaluated point,
	// aligned with XHistory.
	FunHistory []float64
}
