package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeClassification(t *testing.T) {
	tbl := MakeClassification(90, 4, 3, 42)

	assert.Equal(t, 90, tbl.Len())
	assert.Equal(t, 4, tbl.NumFeatures())
	assert.Len(t, tbl.FeatureNames, 4)
	assert.ElementsMatch(t, []int{0, 1, 2}, tbl.Classes())

	// Each class gets an equal share of the samples.
	counts := make(map[int]int)
	for _, y := range tbl.Labels {
		counts[y]++
	}

	for _, c := range counts {
		assert.Equal(t, 30, c)
	}
}

func TestMakeClassificationDeterministic(t *testing.T) {
	a := MakeClassification(50, 3, 2, 7)
	b := MakeClassification(50, 3, 2, 7)

	assert.Equal(t, a.Features, b.Features)
	assert.Equal(t, a.Labels, b.Labels)
}

func TestTrainTestSplit(t *testing.T) {
	tbl := MakeClassification(100, 2, 2, 1)

	train, test := TrainTestSplit(tbl, 0.25, 1)

	assert.Equal(t, 25, test.Len())
	assert.Equal(t, 75, train.Len())
	assert.Equal(t, tbl.FeatureNames, train.FeatureNames)
}

func TestShufflePreservesPairs(t *testing.T) {
	tbl := &Table{
		Features: [][]float64{{0}, {10}, {20}, {30}},
		Labels:   []int{0, 1, 2, 3},
	}

	shuffled := Shuffle(tbl, 3)

	assert.Equal(t, 4, shuffled.Len())

	// Feature value and label stay paired after shuffling.
	for i := range shuffled.Features {
		assert.Equal(t, float64(shuffled.Labels[i]*10), shuffled.Features[i][0])
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")

	content := "a,b,label\n1.5,2.5,0\n3.5,4.5,1\n"
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tbl, err := LoadCSV(path, 2)
	assert.NoError(t, err)

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"a", "b"}, tbl.FeatureNames)
	assert.Equal(t, [][]float64{{1.5, 2.5}, {3.5, 4.5}}, tbl.Features)
	assert.Equal(t, []int{0, 1}, tbl.Labels)
}

func TestLoadCSVNegativeLabelCol(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")

	content := "a,b,label\n1.5,2.5,0\n3.5,4.5,1\n"
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	tbl, err := LoadCSV(path, -1)
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1}, tbl.Labels)

	_, err = LoadCSV(path, -4)
	assert.Error(t, err)
}

func TestLoadCSVWithoutHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")

	assert.NoError(t, os.WriteFile(path, []byte("0,1.5,2.5\n1,3.5,4.5\n"), 0o644))

	tbl, err := LoadCSV(path, 0)
	assert.NoError(t, err)

	assert.Equal(t, []string{"x1", "x2"}, tbl.FeatureNames)
	assert.Equal(t, []int{0, 1}, tbl.Labels)
}

func TestLoadCSVErrors(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), 0)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.csv")
	assert.NoError(t, os.WriteFile(path, []byte("1,2\n3\n"), 0o644))

	_, err = LoadCSV(path, 0)
	assert.Error(t, err)

	path2 := filepath.Join(t.TempDir(), "ok.csv")
	assert.NoError(t, os.WriteFile(path2, []byte("1,2\n"), 0o644))

	_, err = LoadCSV(path2, 5)
	assert.Error(t, err)
}
