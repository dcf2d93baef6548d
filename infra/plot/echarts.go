// Package plot renders report artifacts as standalone HTML charts.
package plot

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/evopool/core/fitnesslog"
	"github.com/kilianp07/evopool/core/notify"
)

// EChartsPlotter writes one HTML file per plot name into Dir. Each call
// overwrites the previous rendering of the same name.
type EChartsPlotter struct {
	Dir string
}

// NewEChartsPlotter creates dir if needed.
func NewEChartsPlotter(dir string) (*EChartsPlotter, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("plot dir: %w", err)
	}
	return &EChartsPlotter{Dir: dir}, nil
}

// PlotSpecies draws species size and fitness for generation gen.
func (p *EChartsPlotter) PlotSpecies(gen int, rows []notify.SpeciesRow, name string) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Species", Subtitle: "generation " + strconv.Itoa(gen)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "species"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "members"}),
	)
	ids := make([]string, 0, len(rows))
	sizes := make([]opts.BarData, 0, len(rows))
	fitness := make([]opts.BarData, 0, len(rows))
	stagnation := make([]opts.BarData, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, strconv.Itoa(r.ID))
		sizes = append(sizes, opts.BarData{Value: r.Size})
		fitness = append(fitness, opts.BarData{Value: optional(r.Fitness)})
		stagnation = append(stagnation, opts.BarData{Value: r.Stagnation})
	}
	bar.SetXAxis(ids).
		AddSeries("size", sizes).
		AddSeries("fitness", fitness).
		AddSeries("stagnation", stagnation)
	return p.write(name, bar)
}

// PlotFitness draws the run's fitness summaries over generations.
func (p *EChartsPlotter) PlotFitness(history []fitnesslog.Summary, name string) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Population fitness"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "generation"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "fitness"}),
	)
	gens := make([]string, 0, len(history))
	var best, mean, median, upper, lower []opts.LineData
	for _, s := range history {
		gens = append(gens, strconv.Itoa(s.Generation))
		best = append(best, opts.LineData{Value: s.Best})
		mean = append(mean, opts.LineData{Value: s.Mean})
		median = append(median, opts.LineData{Value: s.Median})
		upper = append(upper, opts.LineData{Value: s.Mean + s.Stdev})
		lower = append(lower, opts.LineData{Value: s.Mean - s.Stdev})
	}
	line.SetXAxis(gens).
		AddSeries("best", best).
		AddSeries("mean", mean).
		AddSeries("median", median).
		AddSeries("+1 sd", upper).
		AddSeries("-1 sd", lower)
	return p.write(name, line)
}

type renderer interface {
	Render(w io.Writer) error
}

func (p *EChartsPlotter) write(name string, r renderer) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	path := filepath.Join(p.Dir, name+".html")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// optional maps an absent value to the echarts empty marker.
func optional(v *float64) any {
	if v == nil {
		return "-"
	}
	return *v
}
