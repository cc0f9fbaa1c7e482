// Package dataset loads and splits the tabular data the tuner trains on.
package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
)

// Table is an in-memory feature matrix with integer class labels. Rows of
// Features align with Labels.
type Table struct {
	Features     [][]float64
	Labels       []int
	FeatureNames []string
}

// Len returns the number of samples.
func (t *Table) Len() int { return len(t.Features) }

// NumFeatures returns the width of the feature matrix.
func (t *Table) NumFeatures() int {
	if len(t.Features) == 0 {
		return 0
	}

	return len(t.Features[0])
}

// Classes returns the distinct labels in first-seen order.
func (t *Table) Classes() []int {
	seen := make(map[int]struct{})
	out := make([]int, 0)

	for _, y := range t.Labels {
		if _, ok := seen[y]; !ok {
			seen[y] = struct{}{}
			out = append(out, y)
		}
	}

	return out
}

// LoadCSV reads a numeric CSV file into a Table. labelCol selects the label
// column, with negative values counting from the end (-1 is the last column);
// the remaining columns become features in file order. A first row with any
// non-numeric field is treated as a header and used for feature names.
func LoadCSV(path string, labelCol int) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("dataset: %s is empty", path)
	}

	width := len(records[0])
	if labelCol < 0 {
		labelCol += width
	}

	if labelCol < 0 || labelCol >= width {
		return nil, fmt.Errorf("dataset: label column %d out of range (%d columns)", labelCol, width)
	}

	t := &Table{}

	start := 0
	if rowHasNonNumeric(records[0]) {
		for i, name := range records[0] {
			if i != labelCol {
				t.FeatureNames = append(t.FeatureNames, name)
			}
		}

		start = 1
	} else {
		for i := 0; i < width; i++ {
			if i != labelCol {
				t.FeatureNames = append(t.FeatureNames, fmt.Sprintf("x%d", i))
			}
		}
	}

	for r := start; r < len(records); r++ {
		rec := records[r]
		if len(rec) != width {
			return nil, fmt.Errorf("dataset: row %d has %d columns, want %d", r+1, len(rec), width)
		}

		x := make([]float64, 0, width-1)
		var label int

		for i, s := range rec {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("dataset: row %d column %d: %w", r+1, i+1, err)
			}

			if i == labelCol {
				label = int(math.Round(v))
			} else {
				x = append(x, v)
			}
		}

		t.Features = append(t.Features, x)
		t.Labels = append(t.Labels, label)
	}

	return t, nil
}

func rowHasNonNumeric(rec []string) bool {
	for _, s := range rec {
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return true
		}
	}

	return false
}

// MakeClassification generates a deterministic classification dataset:
// isotropic Gaussian blobs, one per class, with well-separated centers. The
// same arguments always produce the same table, which makes tuning runs
// reproducible.
func MakeClassification(samples, features, classes int, seed int64) *Table {
	rng := rand.New(rand.NewSource(seed))

	centers := make([][]float64, classes)
	for k := range centers {
		centers[k] = make([]float64, features)
		for j := range centers[k] {
			// Class centers sit on a diagonal lattice 4 units apart,
			// wide relative to the unit blob noise.
			centers[k][j] = float64(k) * 4.0
			if j%2 == 1 {
				centers[k][j] = -centers[k][j]
			}
		}
	}

	t := &Table{
		Features: make([][]float64, 0, samples),
		Labels:   make([]int, 0, samples),
	}

	for j := 0; j < features; j++ {
		t.FeatureNames = append(t.FeatureNames, fmt.Sprintf("x%d", j))
	}

	for i := 0; i < samples; i++ {
		k := i % classes

		x := make([]float64, features)
		for j := range x {
			x[j] = centers[k][j] + rng.NormFloat64()
		}

		t.Features = append(t.Features, x)
		t.Labels = append(t.Labels, k)
	}

	return Shuffle(t, seed)
}

// Shuffle returns a copy of the table with rows permuted by the seed.
func Shuffle(t *Table, seed int64) *Table {
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(t.Len())

	out := &Table{
		Features:     make([][]float64, t.Len()),
		Labels:       make([]int, t.Len()),
		FeatureNames: t.FeatureNames,
	}

	for i, p := range perm {
		out.Features[i] = t.Features[p]
		out.Labels[i] = t.Labels[p]
	}

	return out
}

// TrainTestSplit splits the table into a training and a test portion.
// testRatio is the fraction of rows, after a seeded shuffle, assigned to the
// test set.
func TrainTestSplit(t *Table, testRatio float64, seed int64) (train, test *Table) {
	shuffled := Shuffle(t, seed)

	nTest := int(float64(shuffled.Len()) * testRatio)

	test = &Table{
		Features:     shuffled.Features[:nTest],
		Labels:       shuffled.Labels[:nTest],
		FeatureNames: shuffled.FeatureNames,
	}

	train = &Table{
		Features:     shuffled.Features[nTest:],
		Labels:       shuffled.Labels[nTest:],
		FeatureNames: shuffled.FeatureNames,
	}

	return train, test
}
