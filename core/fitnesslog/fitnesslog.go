// Package fitnesslog defines the append-only fitness logs written by the
// statistics reporter: a run-level summary per generation and one row per
// genome per generation.
package fitnesslog

import (
	"errors"

	"github.com/kilianp07/evopool/core/factory"
)

// Summary is the run-level record of one generation.
type Summary struct {
	Generation int     `json:"generation"`
	Mean       float64 `json:"mean"`
	Stdev      float64 `json:"stdev"`
	Best       float64 `json:"best"`
	Median     float64 `json:"median"`
}

// Row is the fitness of one genome in one generation.
type Row struct {
	Generation int     `json:"generation"`
	Key        int     `json:"key"`
	Fitness    float64 `json:"fitness"`
}

// Writer persists fitness records. StartGeneration(0) starts a fresh run log.
type Writer interface {
	StartGeneration(gen int) error
	AppendSummary(s Summary) error
	AppendGenomes(gen int, rows []Row) error
	Close() error
}

// Config lists the configured log backends.
type Config struct {
	Backends []factory.ModuleConfig `json:"backends"`
}

// NopWriter discards every record.
type NopWriter struct{}

func (NopWriter) StartGeneration(int) error      { return nil }
func (NopWriter) AppendSummary(Summary) error    { return nil }
func (NopWriter) AppendGenomes(int, []Row) error { return nil }
func (NopWriter) Close() error                   { return nil }

// MultiWriter forwards records to several writers in order.
type MultiWriter struct {
	Writers []Writer
}

// NewMultiWriter creates a MultiWriter.
func NewMultiWriter(w ...Writer) *MultiWriter { return &MultiWriter{Writers: w} }

// StartGeneration forwards to all writers, returning the first error encountered.
func (m *MultiWriter) StartGeneration(gen int) error {
	for _, w := range m.Writers {
		if err := w.StartGeneration(gen); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiWriter) AppendSummary(s Summary) error {
	for _, w := range m.Writers {
		if err := w.AppendSummary(s); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiWriter) AppendGenomes(gen int, rows []Row) error {
	for _, w := range m.Writers {
		if err := w.AppendGenomes(gen, rows); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every writer and joins their errors.
func (m *MultiWriter) Close() error {
	var errs []error
	for _, w := range m.Writers {
		errs = append(errs, w.Close())
	}
	return errors.Join(errs...)
}

var registry = factory.NewRegistry[Writer]()

// RegisterBackend adds a log backend factory identified by name.
func RegisterBackend(name string, f factory.Factory[Writer]) error {
	return registry.Register(name, f)
}

// NewWriter builds the configured backends. No configuration yields a
// NopWriter and several yield a MultiWriter.
func NewWriter(cfgs []factory.ModuleConfig) (Writer, error) {
	switch len(cfgs) {
	case 0:
		return NopWriter{}, nil
	case 1:
		return registry.Create(cfgs[0])
	}
	ws := make([]Writer, 0, len(cfgs))
	for _, c := range cfgs {
		w, err := registry.Create(c)
		if err != nil {
			for _, built := range ws {
				_ = built.Close()
			}
			return nil, err
		}
		ws = append(ws, w)
	}
	return NewMultiWriter(ws...), nil
}

// Backends lists the registered backend names.
func Backends() []string { return registry.Names() }
