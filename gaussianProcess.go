package gbtune

import (
	"math"
	"sync"
)

//////
// Surrogate model.
//////

// gaussianProcess is a thread-safe Gaussian Process regression model over
// multidimensional inputs. The optimizer feeds it observed (point, objective)
// pairs in unit-hypercube coordinates and queries it for the predicted mean
// and uncertainty at untested points.
//
// The model is intentionally lightweight: an RBF kernel with a single length
// scale, kernel-weighted mean prediction, and an uncertainty estimate that
// shrinks near observed points. Prediction cost grows linearly with the
// number of observations, which is fine for the evaluation counts
// hyperparameter tuning uses.
type gaussianProcess struct {
	// mu protects all fields below.
	mu sync.RWMutex

	// X holds the observed input points in unit-space coordinates.
	X [][]float64

	// Y holds the observed objective values, aligned with X.
	Y []float64

	// lengthScale is the RBF kernel width. Larger values smooth the
	// interpolation; smaller values localize each observation's
	// influence. Inputs are in [0,1], so the default of 1.0 gives broad
	// smoothing.
	lengthScale float64
}

// RBFKernel returns the Radial Basis Function similarity between two points:
//
//	k(x1, x2) = exp(-sum((x1 - x2)^2) / (2 * l^2))
//
// Identical points score 1.0 and the similarity decays exponentially with
// squared Euclidean distance. Panics if the inputs have different lengths,
// which indicates a space-construction bug.
func (gp *gaussianProcess) RBFKernel(x1, x2 []float64) float64 {
	gp.mu.RLock()
	l := gp.lengthScale
	gp.mu.RUnlock()

	return rbf(x1, x2, l)
}

// rbf is the lock-free kernel used internally while gp.mu is already held.
func rbf(x1, x2 []float64, l float64) float64 {
	if len(x1) != len(x2) {
		panic("input vectors must have the same length")
	}

	var sum float64

	for i := range x1 {
		diff := x1[i] - x2[i]

		sum += diff * diff
	}

	return math.Exp(-sum / (2 * l * l))
}

// Predict estimates the objective value and uncertainty at a point.
//
// Returns:
// - mean: kernel-weighted average of observed objective values
// - variance: prediction uncertainty, higher meaning less certain
//
// With no observations it returns (0, 1): maximally uncertain, which makes
// every acquisition function treat unexplored space as worth visiting.
func (gp *gaussianProcess) Predict(x []float64) (mean, variance float64) {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	if len(gp.X) == 0 {
		return 0, 1
	}

	// Kernel similarity between x and every observed point.
	k := make([]float64, len(gp.X))
	for i := range gp.X {
		k[i] = rbf(x, gp.X[i], gp.lengthScale)
	}

	var sum float64

	for i := range gp.X {
		sum += k[i] * gp.Y[i]
	}

	mean = sum / float64(len(gp.X))

	// Uncertainty shrinks as x approaches its nearest observed point:
	// 1 - k^2 for the strongest kernel response. Since k is in [0, 1] the
	// variance stays in [0, 1], so sqrt never sees a negative value.
	variance = 1.0

	for i := range k {
		if v := 1 - k[i]*k[i]; v < variance {
			variance = v
		}
	}

	if variance < 0 {
		variance = 0
	}

	return mean, variance
}

// Observe adds a new (point, objective value) observation to the model. The
// input slice is copied, so callers may reuse their buffer.
func (gp *gaussianProcess) Observe(x []float64, y float64) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	newX := make([]float64, len(x))
	copy(newX, x)

	gp.X = append(gp.X, newX)
	gp.Y = append(gp.Y, y)
}

// SetLengthScale updates the RBF kernel width. It affects all subsequent
// predictions. The caller is responsible for passing a positive value.
func (gp *gaussianProcess) SetLengthScale(l float64) {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	gp.lengthScale = l
}

// LengthScale returns the current RBF kernel width.
func (gp *gaussianProcess) LengthScale() float64 {
	gp.mu.RLock()
	defer gp.mu.RUnlock()

	return gp.lengthScale
}

// newGaussianProcess returns an empty model with a kernel width suited to
// unit-space inputs.
func newGaussianProcess() *gaussianProcess {
	return &gaussianProcess{
		lengthScale: 1.0,
	}
}
