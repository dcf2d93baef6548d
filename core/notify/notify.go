// Package notify defines the operator-facing collaborators of the reporter:
// a sink receiving report lines with an optional artifact and a plotter
// rendering those artifacts.
package notify

import (
	"context"

	"github.com/kilianp07/evopool/core/factory"
	"github.com/kilianp07/evopool/core/fitnesslog"
)

// Sink delivers a report. artifact is a file path or empty.
type Sink interface {
	Report(ctx context.Context, lines []string, artifact string) error
}

// SpeciesRow is one line of the species table.
type SpeciesRow struct {
	ID              int
	Age             int
	Size            int
	Fitness         *float64
	AdjustedFitness *float64
	Stagnation      int
}

// Plotter renders report artifacts and returns the written file path.
type Plotter interface {
	PlotSpecies(gen int, rows []SpeciesRow, name string) (string, error)
	PlotFitness(history []fitnesslog.Summary, name string) (string, error)
}

// Config lists the configured sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
}

// NopSink drops every report.
type NopSink struct{}

func (NopSink) Report(context.Context, []string, string) error { return nil }

// NopPlotter renders nothing and returns an empty path.
type NopPlotter struct{}

func (NopPlotter) PlotSpecies(int, []SpeciesRow, string) (string, error) { return "", nil }
func (NopPlotter) PlotFitness([]fitnesslog.Summary, string) (string, error) {
	return "", nil
}

var registry = factory.NewRegistry[Sink]()

// RegisterSink adds a sink factory identified by name.
func RegisterSink(name string, f factory.Factory[Sink]) error {
	return registry.Register(name, f)
}

// NewSinks builds every configured sink.
func NewSinks(cfgs []factory.ModuleConfig) ([]Sink, error) {
	out := make([]Sink, 0, len(cfgs))
	for _, c := range cfgs {
		s, err := registry.Create(c)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Sinks lists the registered sink names.
func Sinks() []string { return registry.Names() }
