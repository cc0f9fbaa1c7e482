package boost

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thalesfsp/gbtune/dataset"
)

func TestFitPredictSeparableBlobs(t *testing.T) {
	tbl := dataset.MakeClassification(150, 4, 3, 42)

	clf := New(
		WithNEstimators(30),
		WithMaxDepth(3),
		WithLearningRate(0.3),
		WithRandomState(1),
	)

	assert.NoError(t, clf.Fit(tbl.Features, tbl.Labels))

	// Well-separated blobs: the ensemble should classify its own
	// training data nearly perfectly.
	assert.Greater(t, clf.Score(tbl.Features, tbl.Labels), 0.95)
}

func TestPredictProbaRowsSumToOne(t *testing.T) {
	tbl := dataset.MakeClassification(60, 3, 2, 7)

	clf := New(WithNEstimators(10), WithRandomState(1))
	assert.NoError(t, clf.Fit(tbl.Features, tbl.Labels))

	probs := clf.PredictProba(tbl.Features)
	assert.Len(t, probs, tbl.Len())

	for _, row := range probs {
		assert.Len(t, row, 2)

		sum := 0.0
		for _, p := range row {
			assert.GreaterOrEqual(t, p, 0.0)
			sum += p
		}

		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestPredictBeforeFitReturnsNil(t *testing.T) {
	clf := New(WithRandomState(1))

	X := [][]float64{{1, 2}, {3, 4}}

	assert.Nil(t, clf.PredictProba(X))
	assert.Nil(t, clf.Predict(X))
}

func TestClassesSortedAndCopied(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {3}, {4}, {5}}
	y := []int{2, 0, 2, 0, 2, 0}

	clf := New(WithNEstimators(2), WithRandomState(1))
	assert.NoError(t, clf.Fit(X, y))

	classes := clf.Classes()
	assert.Equal(t, []int{0, 2}, classes)

	classes[0] = 99
	assert.Equal(t, []int{0, 2}, clf.Classes())
}

func TestFitValidation(t *testing.T) {
	clf := New(WithRandomState(1))

	assert.Error(t, clf.Fit(nil, nil))

	assert.Error(t, clf.Fit([][]float64{{1}, {2}}, []int{0}))

	assert.Error(t, clf.Fit([][]float64{{1}, {2, 3}}, []int{0, 1}))

	// Single class cannot be boosted.
	assert.Error(t, clf.Fit([][]float64{{1}, {2}}, []int{0, 0}))

	bad := New(WithNEstimators(0))
	assert.Error(t, bad.Fit([][]float64{{1}, {2}}, []int{0, 1}))

	bad = New(WithLearningRate(0))
	assert.Error(t, bad.Fit([][]float64{{1}, {2}}, []int{0, 1}))

	bad = New(WithSubsample(1.5))
	assert.Error(t, bad.Fit([][]float64{{1}, {2}}, []int{0, 1}))
}

func TestSubsampleAndMaxFeatures(t *testing.T) {
	tbl := dataset.MakeClassification(120, 6, 2, 3)

	clf := New(
		WithNEstimators(25),
		WithMaxDepth(2),
		WithSubsample(0.8),
		WithMaxFeatures(3),
		WithRandomState(5),
	)

	assert.NoError(t, clf.Fit(tbl.Features, tbl.Labels))
	assert.Greater(t, clf.Score(tbl.Features, tbl.Labels), 0.9)
}

func TestDeterministicWithSeed(t *testing.T) {
	tbl := dataset.MakeClassification(80, 3, 2, 11)

	a := New(WithNEstimators(15), WithSubsample(0.7), WithRandomState(4))
	b := New(WithNEstimators(15), WithSubsample(0.7), WithRandomState(4))

	assert.NoError(t, a.Fit(tbl.Features, tbl.Labels))
	assert.NoError(t, b.Fit(tbl.Features, tbl.Labels))

	pa := a.PredictProba(tbl.Features)
	pb := b.PredictProba(tbl.Features)

	for i := range pa {
		for j := range pa[i] {
			assert.False(t, math.IsNaN(pa[i][j]))
			assert.InDelta(t, pa[i][j], pb[i][j], 1e-12)
		}
	}
}

func TestRegressionTreeFitsSimpleStep(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {10}, {11}, {12}}
	target := []float64{-1, -1, -1, 1, 1, 1}

	idx := []int{0, 1, 2, 3, 4, 5}

	tree := &regressionTree{maxDepth: 2, minSamplesSplit: 2}

	mean := func(idx []int) float64 {
		var s float64
		for _, i := range idx {
			s += target[i]
		}

		return s / float64(len(idx))
	}

	tree.fit(X, target, idx, mean, nil)

	assert.InDelta(t, -1, tree.predict([]float64{1.5}), 1e-9)
	assert.InDelta(t, 1, tree.predict([]float64{11}), 1e-9)
}
