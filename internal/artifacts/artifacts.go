// Package artifacts writes plot-ready exports of variables and runs: term
// membership over each universe, aggregated output curves and the run record.
package artifacts

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"fuzzylight/internal/fuzzy"
	"fuzzylight/internal/model"
)

const (
	runIndexFile = "run_index.json"
	runFile      = "run.json"
)

// RunIndexEntry summarises one exported run.
type RunIndexEntry struct {
	RunID    string             `json:"run_id"`
	Scenario string             `json:"scenario,omitempty"`
	Outputs  map[string]float64 `json:"outputs"`
}

// RunExport is everything written for one run.
type RunExport struct {
	Run       model.RunRecord
	Variables []*fuzzy.Variable
	Curves    map[string][]fuzzy.Point
}

// WriteRunExport writes run.json, one universe CSV per variable and one
// aggregate CSV per curve under baseDir/<run id>, then records the run in
// the index. It returns the run directory.
func WriteRunExport(baseDir string, export RunExport) (string, error) {
	if export.Run.ID == "" {
		return "", errors.New("run id is required")
	}

	runDir := filepath.Join(baseDir, export.Run.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, runFile), export.Run); err != nil {
		return "", err
	}
	for _, v := range export.Variables {
		if _, err := WriteUniverse(runDir, v); err != nil {
			return "", err
		}
	}
	for name, curve := range export.Curves {
		if _, err := WriteCurve(runDir, name, curve); err != nil {
			return "", err
		}
	}
	if err := AppendRunIndex(baseDir, RunIndexEntry{
		RunID:    export.Run.ID,
		Scenario: export.Run.Scenario,
		Outputs:  export.Run.Outputs,
	}); err != nil {
		return "", err
	}
	return runDir, nil
}

// WriteUniverse writes <name>_universe.csv: one row per grid point, one
// column per term in definition order.
func WriteUniverse(dir string, v *fuzzy.Variable) (string, error) {
	path := filepath.Join(dir, v.Name()+"_universe.csv")
	terms := v.Terms()
	return path, writeCSV(path, append([]string{"x"}, terms...), func(w *csv.Writer) error {
		for _, s := range v.SampleUniverse() {
			row := make([]string, 0, len(terms)+1)
			row = append(row, formatFloat(s.X))
			for _, term := range terms {
				row = append(row, formatFloat(s.Degrees[term]))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteCurve writes <name>_aggregate.csv with x and degree columns.
func WriteCurve(dir, name string, curve []fuzzy.Point) (string, error) {
	path := filepath.Join(dir, name+"_aggregate.csv")
	return path, writeCSV(path, []string{"x", "degree"}, func(w *csv.Writer) error {
		for _, p := range curve {
			if err := w.Write([]string{formatFloat(p.X), formatFloat(p.Degree)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadCurve loads a curve written by WriteCurve.
func ReadCurve(path string) ([]fuzzy.Point, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("curve header must have at least 2 columns")
	}

	var curve []fuzzy.Point
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		x, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, err
		}
		degree, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, err
		}
		curve = append(curve, fuzzy.Point{X: x, Degree: degree})
	}
	return curve, nil
}

func ReadRun(baseDir, runID string) (model.RunRecord, bool, error) {
	var run model.RunRecord
	ok, err := readJSON(filepath.Join(baseDir, runID, runFile), &run)
	return run, ok, err
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	var index []RunIndexEntry
	if _, err := readJSON(filepath.Join(baseDir, runIndexFile), &index); err != nil {
		return nil, err
	}
	return index, nil
}

func writeCSV(path string, header []string, rows func(*csv.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := rows(writer); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func readJSON(path string, value any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, value); err != nil {
		return false, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// formatFloat drops the float noise of grid points such as 0.30000000000000004.
func formatFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e9)/1e9, 'f', -1, 64)
}
