// Package gbtune provides Bayesian hyperparameter optimization with Gaussian
// Processes, plus the pieces needed to tune a classifier end to end: a typed
// search space, a gradient boosting classifier (package boost),
// cross-validated scoring (package cv), dataset utilities (package dataset),
// and terminal convergence plots (package plot).
//
// # Overview
//
// The optimizer minimizes an arbitrary scalar objective over a search space
// of named dimensions. It seeds a Gaussian Process surrogate model with
// random evaluations, then repeatedly evaluates the candidate an acquisition
// function considers most promising, feeding each observation back into the
// model.
//
//	space := gbtune.Space{
//	    gbtune.NewLogReal("learning_rate", 0.01, 1.0),
//	    gbtune.NewInteger("max_depth", 1, 8),
//	    gbtune.NewInteger("n_estimators", 20, 200),
//	}
//
//	res, err := gbtune.Minimize(ctx, gbtune.DefaultConfig(),
//	    func(p gbtune.Params) (float64, error) {
//	        // Train and score a model; return the negated score since
//	        // Minimize minimizes.
//	        return -crossValAccuracy(p), nil
//	    },
//	    space,
//	)
//	fmt.Printf("best: %.4f at %v\n", res.Fun, res.X.Map())
//
// # Search space
//
// Three dimension kinds cover the usual hyperparameters:
//
//   - Real: continuous, with a uniform or log-uniform sampling prior
//   - Integer: whole-valued ranges
//   - Categorical: unordered string choices
//
// Objectives read values by name through Params (Float, Int, Category), so
// reordering the space never silently changes an objective's inputs.
//
// # Acquisition functions
//
// Four strategies are built in:
//
//  1. UCB: mean minus Beta standard deviations; the default. Raise
//     AcqParams.Beta for more exploration.
//  2. ProbabilityOfImprovement: conservative, favors small reliable gains.
//     Tune AcqParams.Xi.
//  3. ExpectedImprovement: weighs both the probability and the size of an
//     improvement; the common practical choice.
//  4. ThompsonSampling: posterior sampling, needs AcqParams.RandomState.
//
// # Progress monitoring
//
// Assign a channel to Config.ProgressChan to observe the run; one update is
// sent per evaluation and sends never block. Package tui renders these
// updates as a live terminal view.
//
// # Reproducibility
//
// Set Config.Seed to make a run deterministic for a fixed objective. The
// zero seed draws from the clock.
package gbtune
