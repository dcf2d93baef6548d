package plot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evopool/core/fitnesslog"
	"github.com/kilianp07/evopool/core/notify"
)

func ptr(v float64) *float64 { return &v }

func TestPlotSpecies(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	p, err := NewEChartsPlotter(dir)
	require.NoError(t, err)

	rows := []notify.SpeciesRow{
		{ID: 1, Age: 3, Size: 12, Fitness: ptr(4.5), AdjustedFitness: ptr(0.3), Stagnation: 1},
		{ID: 7, Age: 0, Size: 2},
	}
	path, err := p.PlotSpecies(3, rows, "species_plot")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "species_plot.html"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "generation 3")
	assert.Contains(t, html, "stagnation")
}

func TestPlotFitnessOverwrites(t *testing.T) {
	p, err := NewEChartsPlotter(t.TempDir())
	require.NoError(t, err)

	first, err := p.PlotFitness([]fitnesslog.Summary{{Generation: 0, Mean: 1, Best: 2, Median: 1}}, "fitness_population")
	require.NoError(t, err)
	second, err := p.PlotFitness([]fitnesslog.Summary{
		{Generation: 0, Mean: 1, Best: 2, Median: 1},
		{Generation: 1, Mean: 2, Stdev: 0.5, Best: 3.25, Median: 2},
	}, "fitness_population")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(data), "3.25")
	assert.Contains(t, string(data), "Population fitness")
}

func TestOptional(t *testing.T) {
	assert.Equal(t, "-", optional(nil))
	assert.Equal(t, 1.5, optional(ptr(1.5)))
}

func TestNewEChartsPlotterBadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err := NewEChartsPlotter(filepath.Join(file, "sub"))
	require.Error(t, err)
}
