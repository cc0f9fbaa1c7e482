package boost

import (
	"math/rand"
	"sort"
)

// regressionTree is a CART-style regression tree used as the base learner.
// Splits minimize the sum of squared errors of the fitted target; leaf
// values come from a caller-supplied function so the booster can apply its
// gradient-step formula instead of the plain mean.
type regressionTree struct {
	maxDepth        int
	minSamplesSplit int
	maxFeatures     int // 0 => consider all features

	root *treeNode
}

type treeNode struct {
	isLeaf    bool
	feature   int
	threshold float64 // x <= threshold goes left
	left      *treeNode
	right     *treeNode
	value     float64
}

// valuePair keeps a feature value with its sample index during split search.
type valuePair struct {
	v float64
	i int
}

// fit grows the tree on the rows of X selected by idx, regressing target.
// leafValue computes the value stored at each leaf from the sample indices
// that land there.
func (t *regressionTree) fit(
	X [][]float64,
	target []float64,
	idx []int,
	leafValue func(idx []int) float64,
	rng *rand.Rand,
) {
	t.root = t.buildNode(X, target, idx, 0, leafValue, rng)
}

func (t *regressionTree) buildNode(
	X [][]float64,
	target []float64,
	idx []int,
	depth int,
	leafValue func(idx []int) float64,
	rng *rand.Rand,
) *treeNode {
	if len(idx) < t.minSamplesSplit || (t.maxDepth > 0 && depth >= t.maxDepth) {
		return &treeNode{isLeaf: true, value: leafValue(idx)}
	}

	feature, threshold, ok := t.findBestSplit(X, target, idx, rng)
	if !ok {
		return &treeNode{isLeaf: true, value: leafValue(idx)}
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      t.buildNode(X, target, leftIdx, depth+1, leafValue, rng),
		right:     t.buildNode(X, target, rightIdx, depth+1, leafValue, rng),
	}
}

// findBestSplit scans candidate features for the threshold with the largest
// SSE reduction. Reports ok=false when no split separates the samples.
func (t *regressionTree) findBestSplit(X [][]float64, target []float64, idx []int, rng *rand.Rand) (feature int, threshold float64, ok bool) {
	p := len(X[idx[0]])

	features := make([]int, p)
	for j := range features {
		features[j] = j
	}

	if t.maxFeatures > 0 && t.maxFeatures < p {
		rng.Shuffle(p, func(a, b int) {
			features[a], features[b] = features[b], features[a]
		})
		features = features[:t.maxFeatures]
	}

	var total, totalSq float64
	for _, i := range idx {
		total += target[i]
		totalSq += target[i] * target[i]
	}

	n := float64(len(idx))
	parentSSE := totalSq - total*total/n

	bestGain := 1e-12

	for _, f := range features {
		pairs := make([]valuePair, len(idx))
		for k, i := range idx {
			pairs[k] = valuePair{v: X[i][f], i: i}
		}

		sort.Slice(pairs, func(a, b int) bool { return pairs[a].v < pairs[b].v })

		var sumL, sumSqL float64

		for s := 1; s < len(pairs); s++ {
			y := target[pairs[s-1].i]
			sumL += y
			sumSqL += y * y

			if pairs[s].v == pairs[s-1].v {
				continue
			}

			nL := float64(s)
			nR := n - nL

			sumR := total - sumL
			sumSqR := totalSq - sumSqL

			sseL := sumSqL - sumL*sumL/nL
			sseR := sumSqR - sumR*sumR/nR

			gain := parentSSE - sseL - sseR
			if gain > bestGain {
				bestGain = gain
				feature = f
				threshold = (pairs[s-1].v + pairs[s].v) / 2.0
				ok = true
			}
		}
	}

	return feature, threshold, ok
}

// predict returns the leaf value for a single sample.
func (t *regressionTree) predict(x []float64) float64 {
	node := t.root
	for !node.isLeaf {
		if x[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}

	return node.value
}
