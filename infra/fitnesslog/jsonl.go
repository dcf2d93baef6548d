package fitnesslog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	core "github.com/kilianp07/evopool/core/fitnesslog"
)

// Entry kinds written by RotatingJSONLWriter.
const (
	KindStart   = "start"
	KindSummary = "summary"
	KindGenome  = "genome"
)

// Entry is one line of the JSONL fitness log.
type Entry struct {
	Kind       string    `json:"kind"`
	Time       time.Time `json:"time"`
	Generation int       `json:"generation"`
	Key        *int      `json:"key,omitempty"`
	Fitness    *float64  `json:"fitness,omitempty"`
	Mean       *float64  `json:"mean,omitempty"`
	Stdev      *float64  `json:"stdev,omitempty"`
	Best       *float64  `json:"best,omitempty"`
	Median     *float64  `json:"median,omitempty"`
}

// RotatingJSONLWriter stores fitness records in a JSONL file with automatic rotation.
type RotatingJSONLWriter struct {
	mu      sync.Mutex
	logger  *lumberjack.Logger
	enc     *json.Encoder
	path    string
	now     func() time.Time
}

// NewRotatingJSONLWriter creates a writer with rotation options in megabytes and days.
func NewRotatingJSONLWriter(path string, maxSizeMB, maxBackups, maxAgeDays int) (*RotatingJSONLWriter, error) {
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &RotatingJSONLWriter{logger: lj, enc: json.NewEncoder(lj), path: path, now: time.Now}, nil
}

func (w *RotatingJSONLWriter) StartGeneration(gen int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(Entry{Kind: KindStart, Time: w.now(), Generation: gen})
}

func (w *RotatingJSONLWriter) AppendSummary(s core.Summary) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(Entry{
		Kind:       KindSummary,
		Time:       w.now(),
		Generation: s.Generation,
		Mean:       &s.Mean,
		Stdev:      &s.Stdev,
		Best:       &s.Best,
		Median:     &s.Median,
	})
}

func (w *RotatingJSONLWriter) AppendGenomes(gen int, rows []core.Row) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	for _, r := range rows {
		if err := w.enc.Encode(Entry{Kind: KindGenome, Time: now, Generation: gen, Key: &r.Key, Fitness: &r.Fitness}); err != nil {
			return err
		}
	}
	return nil
}

// Summaries reads all log files including rotated ones and returns the
// generation summaries ordered by generation. Unreadable lines are skipped.
func (w *RotatingJSONLWriter) Summaries() ([]core.Summary, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	files, err := filepath.Glob(w.path + "*")
	if err != nil {
		return nil, err
	}
	ext := filepath.Ext(w.path)
	base := w.path[:len(w.path)-len(ext)]
	rotated, err := filepath.Glob(base + "-*" + ext)
	if err != nil {
		return nil, err
	}
	files = append(rotated, files...)
	byGen := map[int]core.Summary{}
	for _, f := range files {
		file, err := os.Open(f)
		if err != nil {
			continue
		}
		sc := bufio.NewScanner(file)
		for sc.Scan() {
			var e Entry
			if err := json.Unmarshal(sc.Bytes(), &e); err != nil || e.Kind != KindSummary {
				continue
			}
			byGen[e.Generation] = core.Summary{
				Generation: e.Generation,
				Mean:       deref(e.Mean),
				Stdev:      deref(e.Stdev),
				Best:       deref(e.Best),
				Median:     deref(e.Median),
			}
		}
		_ = file.Close()
	}
	out := make([]core.Summary, 0, len(byGen))
	for _, s := range byGen {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Generation < out[j].Generation })
	return out, nil
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// Close closes the underlying writer.
func (w *RotatingJSONLWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.logger.Close()
}

var _ core.Writer = (*RotatingJSONLWriter)(nil)
