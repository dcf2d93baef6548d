// Package fitnesslog provides the fitness log backends: plain text files,
// SQLite and rotating JSONL.
package fitnesslog

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	core "github.com/kilianp07/evopool/core/fitnesslog"
)

const (
	// RunLogName is the run-level log inside the log directory.
	RunLogName = "fitness_population"
	// GenerationLogPrefix prefixes the per-generation logs.
	GenerationLogPrefix = "fitness_generation_"
)

// FileWriter writes the text fitness logs into a directory. The run log holds
// one line per generation, "gen,mean,stdev,best,median"; each generation log
// holds "gen,key,fitness" rows.
type FileWriter struct {
	dir string
	mu  sync.Mutex
}

// NewFileWriter creates dir if needed.
func NewFileWriter(dir string) (*FileWriter, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileWriter{dir: dir}, nil
}

// RunLogPath returns the path of the run-level log.
func (w *FileWriter) RunLogPath() string { return filepath.Join(w.dir, RunLogName) }

// GenerationLogPath returns the path of the log of generation gen.
func (w *FileWriter) GenerationLogPath(gen int) string {
	return filepath.Join(w.dir, GenerationLogPrefix+strconv.Itoa(gen))
}

// StartGeneration truncates the run log on generation 0 or when it does not
// exist yet, then appends the generation number.
func (w *FileWriter) StartGeneration(gen int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	path := w.RunLogPath()
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if _, err := os.Stat(path); gen == 0 || os.IsNotExist(err) {
		flags |= os.O_TRUNC
	}
	return appendTo(path, flags, strconv.Itoa(gen)+",")
}

// AppendSummary completes the current run log line.
func (w *FileWriter) AppendSummary(s core.Summary) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	line := fmt.Sprintf("%s,%s,%s,%s\n", formatFloat(s.Mean), formatFloat(s.Stdev), formatFloat(s.Best), formatFloat(s.Median))
	return appendTo(w.RunLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, line)
}

// AppendGenomes appends rows to the log of generation gen.
func (w *FileWriter) AppendGenomes(gen int, rows []core.Row) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var buf []byte
	for _, r := range rows {
		buf = strconv.AppendInt(buf, int64(r.Generation), 10)
		buf = append(buf, ',')
		buf = strconv.AppendInt(buf, int64(r.Key), 10)
		buf = append(buf, ',')
		buf = strconv.AppendFloat(buf, r.Fitness, 'g', -1, 64)
		buf = append(buf, '\n')
	}
	return appendTo(w.GenerationLogPath(gen), os.O_CREATE|os.O_WRONLY|os.O_APPEND, string(buf))
}

// Close is a no-op; files are opened per write.
func (w *FileWriter) Close() error { return nil }

func appendTo(path string, flags int, data string) (err error) {
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = f.WriteString(data)
	return err
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

var _ core.Writer = (*FileWriter)(nil)
