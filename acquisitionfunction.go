package gbtune

import "math"

//////
// Acquisition functions.
// Each one turns the surrogate model's (mean, variance) prediction at a
// candidate point into a single promise score, balancing exploration of
// uncertain regions against exploitation of known good ones. Lower scores
// win because the optimizer minimizes.
//////

// UCB is the Upper Confidence Bound acquisition function (lower confidence
// bound, strictly speaking, since the objective is minimized). It subtracts
// Beta standard deviations from the predicted mean, so uncertain points look
// optimistically good.
//
// Uses: params.Beta. Good default strategy; raise Beta to explore more.
func UCB(mean, variance float64, params AcquisitionParams) float64 {
	return mean - params.Beta*math.Sqrt(variance)
}

// ProbabilityOfImprovement scores a point by the probability that it beats
// the current best value by at least Xi, under a normal assumption on the
// prediction.
//
// Uses: params.BestSoFar, params.Xi. Conservative; prefers small, reliable
// improvements over risky large ones.
func ProbabilityOfImprovement(mean, variance float64, params AcquisitionParams) float64 {
	sigma := math.Sqrt(variance)

	// Zero uncertainty: the prediction is taken at face value, so the
	// improvement either happens or it does not.
	if sigma <= 0 {
		if mean < params.BestSoFar-params.Xi {
			return 0
		}

		return 1
	}

	z := (mean - params.BestSoFar - params.Xi) / sigma

	return normalCDF(z)
}

// ExpectedImprovement scores a point by the expected magnitude of its
// improvement over the current best, combining how likely an improvement is
// with how large it would be. The most commonly used strategy in practice.
//
// Uses: params.BestSoFar, params.Xi.
func ExpectedImprovement(mean, variance float64, params AcquisitionParams) float64 {
	sigma := math.Sqrt(variance)

	diff := mean - params.BestSoFar - params.Xi

	// Zero uncertainty: the expected improvement is the improvement itself,
	// or nothing.
	if sigma <= 0 {
		if diff < 0 {
			return diff
		}

		return 0
	}

	z := diff / sigma

	return diff*normalCDF(z) + sigma*normalPDF(z)
}

// ThompsonSampling draws a random sample from the posterior predictive
// distribution at the point. Randomness alone balances exploration and
// exploitation, so there is nothing to tune.
//
// Uses: params.RandomState, which must be initialized and must not be shared
// between concurrent optimization runs.
func ThompsonSampling(mean, variance float64, params AcquisitionParams) float64 {
	if variance <= 0 {
		return mean
	}

	return mean + math.Sqrt(variance)*params.RandomState.NormFloat64()
}
