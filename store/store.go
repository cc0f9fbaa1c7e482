// Package store persists completed tuning runs to disk: a metadata.json per
// run plus a history.csv with every evaluated point and its objective value.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/thalesfsp/gbtune"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID             string             `json:"id"`
	Timestamp      time.Time          `json:"timestamp"`
	Dataset        string             `json:"dataset"`
	Seed           int64              `json:"seed"`
	Acquisition    string             `json:"acquisition"`
	Iterations     int                `json:"iterations"`
	InitialSamples int                `json:"initial_samples"`
	Folds          int                `json:"folds"`
	BestScore      float64            `json:"best_score"`
	BestParams     map[string]float64 `json:"best_params"`
}

// Save writes one run directory named after the dataset and current time.
// BestScore is stored as accuracy, so the negated objective value.
func (s *Store) Save(meta RunMetadata, space gbtune.Space, result *gbtune.Result) (string, error) {
	// Nanosecond timestamps keep back-to-back saves of the same dataset
	// from colliding.
	runID := fmt.Sprintf("%s_%d", meta.Dataset, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.BestScore = -result.Fun
	meta.BestParams = result.X.Map()

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "history.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"evaluation", "objective"}
	for _, dim := range space {
		header = append(header, dim.Name())
	}

	if err := w.Write(header); err != nil {
		return "", err
	}

	for i, fun := range result.FunHistory {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(fun, 'f', 6, 64),
		}

		for _, val := range result.XHistory[i].Values() {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}

		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadHistory returns the objective trace and the evaluated points of a
// stored run, in evaluation order.
func (s *Store) LoadHistory(runID string) ([]float64, [][]float64, error) {
	csvPath := filepath.Join(s.baseDir, runID, "history.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return []float64{}, [][]float64{}, nil
	}

	funs := make([]float64, 0, len(records)-1)
	points := make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 2 {
			continue
		}

		fun, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		funs = append(funs, fun)

		point := make([]float64, 0, len(record)-2)
		for j := 2; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				continue
			}
			point = append(point, val)
		}
		points = append(points, point)
	}

	return funs, points, nil
}
