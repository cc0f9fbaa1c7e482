// Package boost implements a gradient boosting classifier: an additive
// ensemble of shallow regression trees fitted to the gradient of the
// multinomial deviance, one tree per class per round.
package boost

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"time"
)

// Classifier is a gradient boosted tree classifier. Configure it with the
// With* options, then call Fit before Predict/PredictProba.
type Classifier struct {
	// Hyperparameters.
	NEstimators     int     // boosting rounds
	LearningRate    float64 // shrinkage applied to each tree's contribution
	MaxDepth        int     // depth limit of each tree (0 => unlimited)
	MinSamplesSplit int     // minimum samples to attempt a split
	Subsample       float64 // fraction of rows per round, (0, 1]
	MaxFeatures     int     // features considered per split (0 => all)
	RandomState     int64   // seed for row/feature subsampling

	// Fitted state.
	classes []int
	prior   []float64 // initial per-class log-odds
	stages  [][]*regressionTree
}

// Option configures a Classifier.
type Option func(*Classifier)

func WithNEstimators(n int) Option { return func(c *Classifier) { c.NEstimators = n } }

func WithLearningRate(lr float64) Option { return func(c *Classifier) { c.LearningRate = lr } }

func WithMaxDepth(d int) Option { return func(c *Classifier) { c.MaxDepth = d } }

func WithMinSamplesSplit(n int) Option { return func(c *Classifier) { c.MinSamplesSplit = n } }

func WithSubsample(f float64) Option { return func(c *Classifier) { c.Subsample = f } }

func WithMaxFeatures(k int) Option { return func(c *Classifier) { c.MaxFeatures = k } }

func WithRandomState(seed int64) Option { return func(c *Classifier) { c.RandomState = seed } }

// New returns a classifier with defaults in line with common gradient
// boosting implementations.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		NEstimators:     100,
		LearningRate:    0.1,
		MaxDepth:        3,
		MinSamplesSplit: 2,
		Subsample:       1.0,
		MaxFeatures:     0,
		RandomState:     time.Now().UnixNano(),
	}

	for _, o := range opts {
		o(c)
	}

	return c
}

// Fit trains the ensemble on X (n rows) and integer labels y.
func (c *Classifier) Fit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return errors.New("boost: empty X")
	}

	n := len(X)
	if len(y) != n {
		return errors.New("boost: X and y length mismatch")
	}

	p := len(X[0])
	for i := range X {
		if len(X[i]) != p {
			return errors.New("boost: inconsistent number of features in X rows")
		}
	}

	if c.NEstimators < 1 {
		return errors.New("boost: NEstimators must be at least 1")
	}

	if c.LearningRate <= 0 {
		return errors.New("boost: LearningRate must be positive")
	}

	if c.Subsample <= 0 || c.Subsample > 1 {
		return errors.New("boost: Subsample must be in (0, 1]")
	}

	c.collectClasses(y)

	k := len(c.classes)
	if k < 2 {
		return errors.New("boost: need at least two classes")
	}

	classIdx := make([]int, n)
	counts := make([]float64, k)

	for i, label := range y {
		ci := c.classIndex(label)
		classIdx[i] = ci
		counts[ci]++
	}

	// Start every sample from the class-prior log-odds.
	c.prior = make([]float64, k)
	for ci := range c.prior {
		c.prior[ci] = math.Log(counts[ci] / float64(n))
	}

	// F holds the raw additive scores per sample and class.
	F := make([][]float64, n)
	for i := range F {
		F[i] = make([]float64, k)
		copy(F[i], c.prior)
	}

	rng := rand.New(rand.NewSource(c.RandomState))

	residual := make([]float64, n)
	c.stages = make([][]*regressionTree, 0, c.NEstimators)

	for m := 0; m < c.NEstimators; m++ {
		rows := c.sampleRows(n, rng)

		probs := make([][]float64, n)
		for i := range F {
			probs[i] = softmax(F[i])
		}

		stage := make([]*regressionTree, k)

		for ci := 0; ci < k; ci++ {
			// Negative gradient of the multinomial deviance.
			for i := 0; i < n; i++ {
				indicator := 0.0
				if classIdx[i] == ci {
					indicator = 1.0
				}

				residual[i] = indicator - probs[i][ci]
			}

			tree := &regressionTree{
				maxDepth:        c.MaxDepth,
				minSamplesSplit: c.MinSamplesSplit,
				maxFeatures:     c.MaxFeatures,
			}

			// Friedman's leaf update for the multinomial case.
			leafValue := func(idx []int) float64 {
				var num, den float64
				for _, i := range idx {
					r := residual[i]
					num += r
					den += math.Abs(r) * (1 - math.Abs(r))
				}

				if den < 1e-12 {
					return 0
				}

				return (float64(k-1) / float64(k)) * num / den
			}

			tree.fit(X, residual, rows, leafValue, rng)

			for i := 0; i < n; i++ {
				F[i][ci] += c.LearningRate * tree.predict(X[i])
			}

			stage[ci] = tree
		}

		c.stages = append(c.stages, stage)
	}

	return nil
}

// PredictProba returns per-class probability rows aligned with Classes order.
// Returns nil if the classifier has not been fitted.
func (c *Classifier) PredictProba(X [][]float64) [][]float64 {
	k := len(c.classes)
	if k == 0 {
		return nil
	}

	out := make([][]float64, len(X))
	for i, x := range X {
		f := make([]float64, k)
		copy(f, c.prior)

		for _, stage := range c.stages {
			for ci, tree := range stage {
				f[ci] += c.LearningRate * tree.predict(x)
			}
		}

		out[i] = softmax(f)
	}

	return out
}

// Predict returns the most probable class label for each row. Returns nil if
// the classifier has not been fitted.
func (c *Classifier) Predict(X [][]float64) []int {
	probs := c.PredictProba(X)
	if probs == nil {
		return nil
	}

	out := make([]int, len(X))
	for i, row := range probs {
		best := 0
		for ci := 1; ci < len(row); ci++ {
			if row[ci] > row[best] {
				best = ci
			}
		}

		out[i] = c.classes[best]
	}

	return out
}

// Score returns the accuracy of the fitted classifier on X, y.
func (c *Classifier) Score(X [][]float64, y []int) float64 {
	if len(X) == 0 {
		return 0
	}

	pred := c.Predict(X)

	correct := 0
	for i := range y {
		if pred[i] == y[i] {
			correct++
		}
	}

	return float64(correct) / float64(len(y))
}

// Classes returns the label set in the order probability rows use.
func (c *Classifier) Classes() []int {
	out := make([]int, len(c.classes))
	copy(out, c.classes)

	return out
}

func (c *Classifier) collectClasses(y []int) {
	seen := make(map[int]struct{})

	c.classes = nil
	for _, label := range y {
		if _, ok := seen[label]; !ok {
			seen[label] = struct{}{}
			c.classes = append(c.classes, label)
		}
	}

	sort.Ints(c.classes)
}

func (c *Classifier) classIndex(label int) int {
	for i, v := range c.classes {
		if v == label {
			return i
		}
	}

	return 0
}

// sampleRows picks the rows used for one boosting round: all of them at
// Subsample 1.0, otherwise a seeded sample without replacement.
func (c *Classifier) sampleRows(n int, rng *rand.Rand) []int {
	if c.Subsample >= 1.0 {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}

		return idx
	}

	m := int(c.Subsample * float64(n))
	if m < 1 {
		m = 1
	}

	return rng.Perm(n)[:m]
}

func softmax(f []float64) []float64 {
	max := f[0]
	for _, v := range f[1:] {
		if v > max {
			max = v
		}
	}

	var sum float64

	out := make([]float64, len(f))
	for i, v := range f {
		out[i] = math.Exp(v - max)
		sum += out[i]
	}

	for i := range out {
		out[i] /= sum
	}

	return out
}
