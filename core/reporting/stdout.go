package reporting

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/kilianp07/evopool/core/fitnesslog"
	"github.com/kilianp07/evopool/core/logger"
	"github.com/kilianp07/evopool/core/model"
	"github.com/kilianp07/evopool/core/notify"
)

const (
	speciesPlotName = "species_plot"
	fitnessPlotName = "fitness_population"
)

// StdOutReporter prints generation statistics, keeps the fitness logs and
// forwards every report to the notification sink.
type StdOutReporter struct {
	BaseReporter

	showSpeciesDetail bool
	out               io.Writer
	log               logger.Logger
	fitness           fitnesslog.Writer
	sink              notify.Sink
	plotter           notify.Plotter
	now               func() time.Time
	reportTimeout     time.Duration

	generation  int
	start       time.Time
	times       durationWindow
	extinctions int
	history     []fitnesslog.Summary
}

// Option configures a StdOutReporter.
type Option func(*StdOutReporter)

// WithOutput sets where report lines are printed. Defaults to stdout.
func WithOutput(w io.Writer) Option { return func(r *StdOutReporter) { r.out = w } }

// WithLogger sets the diagnostic logger.
func WithLogger(l logger.Logger) Option { return func(r *StdOutReporter) { r.log = l } }

// WithFitnessLog sets the fitness log writer.
func WithFitnessLog(w fitnesslog.Writer) Option { return func(r *StdOutReporter) { r.fitness = w } }

// WithSink sets the notification sink.
func WithSink(s notify.Sink) Option { return func(r *StdOutReporter) { r.sink = s } }

// WithPlotter sets the plot renderer used for report artifacts.
func WithPlotter(p notify.Plotter) Option { return func(r *StdOutReporter) { r.plotter = p } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(r *StdOutReporter) { r.now = now } }

// WithReportTimeout bounds each sink delivery.
func WithReportTimeout(d time.Duration) Option {
	return func(r *StdOutReporter) { r.reportTimeout = d }
}

// NewStdOutReporter creates the statistics reporter. showSpeciesDetail adds
// the per-species table and stagnation notices.
func NewStdOutReporter(showSpeciesDetail bool, opts ...Option) *StdOutReporter {
	r := &StdOutReporter{
		showSpeciesDetail: showSpeciesDetail,
		out:               os.Stdout,
		log:               logger.NopLogger{},
		fitness:           fitnesslog.NopWriter{},
		sink:              notify.NopSink{},
		plotter:           notify.NopPlotter{},
		now:               time.Now,
		reportTimeout:     10 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Extinctions returns the number of complete extinctions seen so far.
func (r *StdOutReporter) Extinctions() int { return r.extinctions }

// GenerationTimes returns the durations currently held in the rolling window,
// oldest first.
func (r *StdOutReporter) GenerationTimes() []time.Duration {
	return append([]time.Duration(nil), r.times.samples...)
}

func (r *StdOutReporter) StartGeneration(gen int, _ model.RunConfig, _ model.Population, _ *model.SpeciesSet) error {
	r.generation = gen
	banner := fmt.Sprintf(" ****** Running generation %d ****** ", gen)
	r.print("", banner, "")
	r.report([]string{banner}, "")
	if err := r.fitness.StartGeneration(gen); err != nil {
		return fmt.Errorf("start fitness log for generation %d: %w", gen, err)
	}
	r.start = r.now()
	return nil
}

func (r *StdOutReporter) EndGeneration(_ model.RunConfig, pop model.Population, species *model.SpeciesSet) error {
	ng, ns := len(pop), species.Len()
	var lines []string
	var rows []notify.SpeciesRow
	if r.showSpeciesDetail {
		lines = append(lines,
			fmt.Sprintf("Population of %d members in %d species:", ng, ns),
			"   ID   age  size  fitness  adj fit  stag",
			"  ====  ===  ====  =======  =======  ====",
		)
		rows = r.speciesRows(species)
		for _, row := range rows {
			lines = append(lines, formatSpeciesRow(row))
		}
	} else {
		lines = append(lines, fmt.Sprintf("Population of %d members in %d species", ng, ns))
	}

	var elapsed time.Duration
	if !r.start.IsZero() {
		elapsed = r.now().Sub(r.start)
	}
	r.times.add(elapsed)
	lines = append(lines, fmt.Sprintf("Total extinctions: %d", r.extinctions))
	if r.times.len() > 1 {
		lines = append(lines, fmt.Sprintf("Generation time: %.3f sec (%.3f average)",
			elapsed.Seconds(), r.times.average().Seconds()))
	} else {
		lines = append(lines, fmt.Sprintf("Generation time: %.3f sec", elapsed.Seconds()))
	}
	r.print(lines...)

	artifact, err := r.plotter.PlotSpecies(r.generation, rows, speciesPlotName)
	if err != nil {
		r.log.Warnf("species plot failed: %v", err)
		artifact = ""
	}
	r.report(lines, artifact)
	return nil
}

func (r *StdOutReporter) speciesRows(species *model.SpeciesSet) []notify.SpeciesRow {
	ids := species.SortedIDs()
	rows := make([]notify.SpeciesRow, 0, len(ids))
	for _, sid := range ids {
		s := species.Species[sid]
		rows = append(rows, notify.SpeciesRow{
			ID:              sid,
			Age:             r.generation - s.Created,
			Size:            s.Size(),
			Fitness:         s.Fitness,
			AdjustedFitness: s.AdjustedFitness,
			Stagnation:      r.generation - s.LastImproved,
		})
	}
	return rows
}

func formatSpeciesRow(row notify.SpeciesRow) string {
	f, af := "--", "--"
	if row.Fitness != nil {
		f = strconv.FormatFloat(*row.Fitness, 'f', 1, 64)
	}
	if row.AdjustedFitness != nil {
		af = strconv.FormatFloat(*row.AdjustedFitness, 'f', 3, 64)
	}
	return fmt.Sprintf("  %4d  %3d  %4d  %7s  %7s  %4d", row.ID, row.Age, row.Size, f, af, row.Stagnation)
}

func (r *StdOutReporter) PostEvaluate(_ model.RunConfig, pop model.Population, species *model.SpeciesSet, best *model.Genome) error {
	st, err := ComputeStats(pop.Fitnesses())
	if err != nil {
		return fmt.Errorf("generation %d: %w", r.generation, err)
	}
	if best == nil {
		best, _ = pop.Best()
	}
	summary := fitnesslog.Summary{
		Generation: r.generation,
		Mean:       st.Mean,
		Stdev:      st.Stdev,
		Best:       best.Fitness,
		Median:     st.Median,
	}
	if err := r.fitness.AppendSummary(summary); err != nil {
		return fmt.Errorf("append run log: %w", err)
	}
	rows := make([]fitnesslog.Row, 0, len(pop))
	for _, g := range pop.Ordered() {
		if g.Evaluated {
			rows = append(rows, fitnesslog.Row{Generation: r.generation, Key: g.Key, Fitness: g.Fitness})
		}
	}
	if err := r.fitness.AppendGenomes(r.generation, rows); err != nil {
		return fmt.Errorf("append generation log: %w", err)
	}
	r.history = append(r.history, summary)

	sid := "--"
	if id, ok := species.SpeciesOf(best.Key); ok {
		sid = strconv.Itoa(id)
	}
	lines := []string{
		fmt.Sprintf("Population's average fitness: %3.5f stdev: %3.5f median: %3.5f", st.Mean, st.Stdev, st.Median),
		fmt.Sprintf("Best fitness: %3.5f - complexity: %d - species %s - id %d", best.Fitness, best.Complexity(), sid, best.Key),
	}
	r.print(lines...)

	artifact, err := r.plotter.PlotFitness(r.history, fitnessPlotName)
	if err != nil {
		r.log.Warnf("fitness plot failed: %v", err)
		artifact = ""
	}
	r.report(lines, artifact)
	return nil
}

func (r *StdOutReporter) CompleteExtinction() error {
	r.extinctions++
	r.print("All species extinct.")
	return nil
}

func (r *StdOutReporter) FoundSolution(_ model.RunConfig, gen int, best *model.Genome) error {
	r.print("", fmt.Sprintf("Best individual in generation %d meets fitness threshold - complexity: %d", gen, best.Complexity()))
	return nil
}

func (r *StdOutReporter) SpeciesStagnant(sid int, species *model.Species) error {
	if !r.showSpeciesDetail {
		return nil
	}
	line := fmt.Sprintf("Species %d with %d members is stagnated: removing it", sid, species.Size())
	r.print("", line)
	r.report([]string{line}, "")
	return nil
}

func (r *StdOutReporter) Info(msg string) error {
	r.print(msg)
	return nil
}

func (r *StdOutReporter) print(lines ...string) {
	for _, l := range lines {
		if _, err := fmt.Fprintln(r.out, l); err != nil {
			r.log.Warnf("write report line: %v", err)
			return
		}
	}
}

// report delivers to the sink. Delivery failures are logged and not returned.
func (r *StdOutReporter) report(lines []string, artifact string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.reportTimeout)
	defer cancel()
	if err := r.sink.Report(ctx, lines, artifact); err != nil {
		r.log.Warnf("report delivery failed: %v", err)
	}
}

var _ Reporter = (*StdOutReporter)(nil)
