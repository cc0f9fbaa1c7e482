// Package cv provides k-fold cross-validation and the classification metrics
// used to score tuned models.
package cv

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
)

// Fold is one train/test index partition of a dataset.
type Fold struct {
	Train []int
	Test  []int
}

// KFold splits n samples into NSplits folds. With Shuffle set, sample order
// is permuted with Seed before folding.
type KFold struct {
	NSplits int
	Shuffle bool
	Seed    int64
}

// Split produces the folds for n samples. Every index appears in exactly one
// test set.
func (k KFold) Split(n int) ([]Fold, error) {
	if k.NSplits < 2 {
		return nil, errors.New("cv: NSplits must be at least 2")
	}

	if n < k.NSplits {
		return nil, fmt.Errorf("cv: cannot split %d samples into %d folds", n, k.NSplits)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	if k.Shuffle {
		rng := rand.New(rand.NewSource(k.Seed))
		rng.Shuffle(n, func(a, b int) {
			order[a], order[b] = order[b], order[a]
		})
	}

	buckets := make([][]int, k.NSplits)
	for i, idx := range order {
		buckets[i%k.NSplits] = append(buckets[i%k.NSplits], idx)
	}

	return foldsFromBuckets(buckets, n), nil
}

// StratifiedKFold splits samples into NSplits folds while preserving the
// class proportions of y in every fold, within one sample.
type StratifiedKFold struct {
	NSplits int
	Shuffle bool
	Seed    int64
}

// Split produces stratified folds for the labels y.
func (k StratifiedKFold) Split(y []int) ([]Fold, error) {
	if k.NSplits < 2 {
		return nil, errors.New("cv: NSplits must be at least 2")
	}

	n := len(y)
	if n < k.NSplits {
		return nil, fmt.Errorf("cv: cannot split %d samples into %d folds", n, k.NSplits)
	}

	byClass := make(map[int][]int)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}

	if k.Shuffle {
		rng := rand.New(rand.NewSource(k.Seed))
		for _, idx := range byClass {
			rng.Shuffle(len(idx), func(a, b int) {
				idx[a], idx[b] = idx[b], idx[a]
			})
		}
	}

	// Deal each class's samples round-robin so every fold gets its share.
	buckets := make([][]int, k.NSplits)

	classes := make([]int, 0, len(byClass))
	for label := range byClass {
		classes = append(classes, label)
	}

	// Map iteration order is random; sort for reproducible folds.
	sort.Ints(classes)

	bucket := 0
	for _, label := range classes {
		for _, idx := range byClass[label] {
			buckets[bucket%k.NSplits] = append(buckets[bucket%k.NSplits], idx)
			bucket++
		}
	}

	return foldsFromBuckets(buckets, n), nil
}

func foldsFromBuckets(buckets [][]int, n int) []Fold {
	folds := make([]Fold, len(buckets))

	inBucket := make([]int, n)
	for b, bucket := range buckets {
		for _, idx := range bucket {
			inBucket[idx] = b
		}
	}

	for b := range buckets {
		folds[b].Test = append([]int(nil), buckets[b]...)

		for idx := 0; idx < n; idx++ {
			if inBucket[idx] != b {
				folds[b].Train = append(folds[b].Train, idx)
			}
		}
	}

	return folds
}

// Estimator is the minimal train/predict contract a model must satisfy to be
// cross-validated. boost.Classifier implements it.
type Estimator interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) []int
}

// Factory builds a fresh, unfitted estimator for one fold. Each fold gets
// its own instance so fitted state never leaks between folds.
type Factory func() Estimator

// Score fits and scores one estimator per fold and returns the per-fold
// accuracies in fold order. At most workers folds train concurrently;
// workers < 1 means one at a time.
//
// The context cancels folds that have not started; folds already training
// run to completion.
func Score(
	ctx context.Context,
	newEstimator Factory,
	X [][]float64,
	y []int,
	folds []Fold,
	workers int,
) ([]float64, error) {
	if newEstimator == nil {
		return nil, errors.New("cv: nil estimator factory")
	}

	if len(folds) == 0 {
		return nil, errors.New("cv: no folds")
	}

	if workers < 1 {
		workers = 1
	}

	scores := make([]float64, len(folds))
	errs := make([]error, len(folds))

	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup

	for f := range folds {
		wg.Add(1)

		go func(f int) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				errs[f] = err

				return
			}

			fold := folds[f]

			trainX := gather(X, fold.Train)
			trainY := gatherLabels(y, fold.Train)
			testX := gather(X, fold.Test)
			testY := gatherLabels(y, fold.Test)

			est := newEstimator()

			if err := est.Fit(trainX, trainY); err != nil {
				errs[f] = fmt.Errorf("cv: fold %d: %w", f, err)

				return
			}

			scores[f] = Accuracy(testY, est.Predict(testX))
		}(f)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return scores, nil
}

// MeanScore runs Score and averages the per-fold accuracies.
func MeanScore(
	ctx context.Context,
	newEstimator Factory,
	X [][]float64,
	y []int,
	folds []Fold,
	workers int,
) (float64, error) {
	scores, err := Score(ctx, newEstimator, X, y, folds, workers)
	if err != nil {
		return 0, err
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}

	return sum / float64(len(scores)), nil
}

func gather(X [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = X[j]
	}

	return out
}

func gatherLabels(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}

	return out
}
