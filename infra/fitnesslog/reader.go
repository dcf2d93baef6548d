package fitnesslog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	core "github.com/kilianp07/evopool/core/fitnesslog"
)

// ReadRunLog parses a run log written by FileWriter. A trailing generation
// without statistics, left by an interrupted run, is skipped.
func ReadRunLog(r io.Reader) ([]core.Summary, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	var out []core.Summary
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("run log line %d: %w", line, err)
		}
		if len(rec) == 2 && strings.TrimSpace(rec[1]) == "" {
			continue
		}
		if len(rec) != 5 {
			return nil, fmt.Errorf("run log line %d: expected 5 fields, got %d", line, len(rec))
		}
		s, err := parseSummary(rec)
		if err != nil {
			return nil, fmt.Errorf("run log line %d: %w", line, err)
		}
		out = append(out, s)
	}
}

// ReadRunLogFile opens and parses the run log at path.
func ReadRunLogFile(path string) ([]core.Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadRunLog(f)
}

func parseSummary(rec []string) (core.Summary, error) {
	gen, err := strconv.Atoi(strings.TrimSpace(rec[0]))
	if err != nil {
		return core.Summary{}, fmt.Errorf("generation: %w", err)
	}
	var vals [4]float64
	for i := range vals {
		if vals[i], err = strconv.ParseFloat(strings.TrimSpace(rec[i+1]), 64); err != nil {
			return core.Summary{}, fmt.Errorf("field %d: %w", i+2, err)
		}
	}
	return core.Summary{Generation: gen, Mean: vals[0], Stdev: vals[1], Best: vals[2], Median: vals[3]}, nil
}
