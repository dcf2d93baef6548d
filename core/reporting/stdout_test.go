package reporting

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evopool/core/fitnesslog"
	"github.com/kilianp07/evopool/core/model"
	"github.com/kilianp07/evopool/core/notify"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type memLog struct {
	starts    []int
	summaries []fitnesslog.Summary
	rows      map[int][]fitnesslog.Row
	err       error
}

func (m *memLog) StartGeneration(gen int) error {
	m.starts = append(m.starts, gen)
	return m.err
}
func (m *memLog) AppendSummary(s fitnesslog.Summary) error {
	if m.err != nil {
		return m.err
	}
	m.summaries = append(m.summaries, s)
	return nil
}
func (m *memLog) AppendGenomes(gen int, rows []fitnesslog.Row) error {
	if m.rows == nil {
		m.rows = map[int][]fitnesslog.Row{}
	}
	m.rows[gen] = append(m.rows[gen], rows...)
	return m.err
}
func (m *memLog) Close() error { return nil }

type report struct {
	lines    []string
	artifact string
}

type memSink struct {
	reports []report
	err     error
}

func (s *memSink) Report(_ context.Context, lines []string, artifact string) error {
	s.reports = append(s.reports, report{lines: append([]string(nil), lines...), artifact: artifact})
	return s.err
}

type stubPlotter struct {
	species [][]notify.SpeciesRow
	history int
	err     error
}

func (p *stubPlotter) PlotSpecies(_ int, rows []notify.SpeciesRow, name string) (string, error) {
	p.species = append(p.species, rows)
	return name + ".html", p.err
}

func (p *stubPlotter) PlotFitness(h []fitnesslog.Summary, name string) (string, error) {
	p.history = len(h)
	return name + ".html", p.err
}

type harness struct {
	out     *bytes.Buffer
	clock   *fakeClock
	log     *memLog
	sink    *memSink
	plotter *stubPlotter
	r       *StdOutReporter
}

func newHarness(detail bool) *harness {
	h := &harness{
		out:     &bytes.Buffer{},
		clock:   &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		log:     &memLog{},
		sink:    &memSink{},
		plotter: &stubPlotter{},
	}
	h.r = NewStdOutReporter(detail,
		WithOutput(h.out),
		WithClock(h.clock.now),
		WithFitnessLog(h.log),
		WithSink(h.sink),
		WithPlotter(h.plotter),
	)
	return h
}

func ptr(f float64) *float64 { return &f }

// evaluatedPopulation gives genome k (1-based) the fitness fits[k-1] and k genes.
func evaluatedPopulation(fits ...float64) model.Population {
	pop := model.Population{}
	for i, f := range fits {
		g := model.NewGenome(i+1, make([]float64, i+1))
		g.SetFitness(f)
		pop[g.Key] = g
	}
	return pop
}

func twoSpecies() *model.SpeciesSet {
	ss := model.NewSpeciesSet()
	ss.Species[2] = &model.Species{Key: 2, Created: 1, LastImproved: 2, Members: []int{4, 5}, Fitness: ptr(4.5), AdjustedFitness: ptr(0.75)}
	ss.Species[1] = &model.Species{Key: 1, Created: 0, LastImproved: 0, Members: []int{1, 2, 3}, Fitness: ptr(2)}
	return ss
}

func TestStdOutReporter_StartGeneration(t *testing.T) {
	h := newHarness(false)
	require.NoError(t, h.r.StartGeneration(0, model.RunConfig{}, nil, nil))

	assert.Contains(t, h.out.String(), " ****** Running generation 0 ****** ")
	assert.Equal(t, []int{0}, h.log.starts)
	require.Len(t, h.sink.reports, 1)
	assert.Equal(t, []string{" ****** Running generation 0 ****** "}, h.sink.reports[0].lines)
}

func TestStdOutReporter_PostEvaluate(t *testing.T) {
	h := newHarness(false)
	pop := evaluatedPopulation(1, 2, 3, 4, 5)
	require.NoError(t, h.r.StartGeneration(3, model.RunConfig{}, pop, nil))

	require.NoError(t, h.r.PostEvaluate(model.RunConfig{}, pop, twoSpecies(), pop[5]))

	out := h.out.String()
	assert.Contains(t, out, "Population's average fitness: 3.00000 stdev: 1.58114 median: 3.00000")
	assert.Contains(t, out, "Best fitness: 5.00000 - complexity: 5 - species 2 - id 5")

	require.Len(t, h.log.summaries, 1)
	s := h.log.summaries[0]
	assert.Equal(t, 3, s.Generation)
	assert.InDelta(t, 3.0, s.Mean, 1e-12)
	assert.InDelta(t, 1.5811388300841898, s.Stdev, 1e-12)
	assert.Equal(t, 5.0, s.Best)
	assert.Equal(t, 3.0, s.Median)
	require.Len(t, h.log.rows[3], 5)
	assert.Equal(t, fitnesslog.Row{Generation: 3, Key: 1, Fitness: 1}, h.log.rows[3][0])

	last := h.sink.reports[len(h.sink.reports)-1]
	assert.Equal(t, "fitness_population.html", last.artifact)
	assert.Len(t, last.lines, 2)
	assert.Equal(t, 1, h.plotter.history)
}

func TestStdOutReporter_PostEvaluateWithoutBest(t *testing.T) {
	h := newHarness(false)
	pop := evaluatedPopulation(2, 9, 4)
	require.NoError(t, h.r.PostEvaluate(model.RunConfig{}, pop, nil, nil))
	assert.Contains(t, h.out.String(), "Best fitness: 9.00000 - complexity: 2 - species -- - id 2")
}

func TestStdOutReporter_PostEvaluateNoFitness(t *testing.T) {
	h := newHarness(false)
	pop := model.Population{1: model.NewGenome(1, nil)}
	err := h.r.PostEvaluate(model.RunConfig{}, pop, nil, pop[1])
	assert.ErrorIs(t, err, ErrNoFitness)
	assert.Empty(t, h.log.summaries)
}

func TestStdOutReporter_FitnessLogErrorPropagates(t *testing.T) {
	h := newHarness(false)
	boom := errors.New("read-only file system")
	h.log.err = boom
	assert.ErrorIs(t, h.r.StartGeneration(0, model.RunConfig{}, nil, nil), boom)
	pop := evaluatedPopulation(1)
	assert.ErrorIs(t, h.r.PostEvaluate(model.RunConfig{}, pop, nil, pop[1]), boom)
}

func TestStdOutReporter_SinkErrorIsNotFatal(t *testing.T) {
	h := newHarness(false)
	h.sink.err = errors.New("broker unreachable")
	assert.NoError(t, h.r.StartGeneration(0, model.RunConfig{}, nil, nil))
}

func TestStdOutReporter_EndGenerationSpeciesTable(t *testing.T) {
	h := newHarness(true)
	pop := evaluatedPopulation(1, 2, 3, 4, 5)
	require.NoError(t, h.r.StartGeneration(3, model.RunConfig{}, pop, nil))
	h.clock.advance(1500 * time.Millisecond)

	require.NoError(t, h.r.EndGeneration(model.RunConfig{}, pop, twoSpecies()))

	want := []string{
		"Population of 5 members in 2 species:",
		"   ID   age  size  fitness  adj fit  stag",
		"  ====  ===  ====  =======  =======  ====",
		"     1    3     3      2.0       --     3",
		"     2    2     2      4.5    0.750     1",
		"Total extinctions: 0",
		"Generation time: 1.500 sec",
	}
	last := h.sink.reports[len(h.sink.reports)-1]
	assert.Equal(t, want, last.lines)
	assert.Equal(t, "species_plot.html", last.artifact)
	require.Len(t, h.plotter.species, 1)
	assert.Equal(t, 1, h.plotter.species[0][0].ID)
	assert.True(t, strings.HasSuffix(h.out.String(), strings.Join(want, "\n")+"\n"))
}

func TestStdOutReporter_EndGenerationSummaryOnly(t *testing.T) {
	h := newHarness(false)
	require.NoError(t, h.r.StartGeneration(0, model.RunConfig{}, nil, nil))
	require.NoError(t, h.r.EndGeneration(model.RunConfig{}, evaluatedPopulation(1, 2), twoSpecies()))
	last := h.sink.reports[len(h.sink.reports)-1]
	assert.Equal(t, "Population of 2 members in 2 species", last.lines[0])
	assert.Empty(t, h.plotter.species[0])
}

func TestStdOutReporter_PlotFailureStillReports(t *testing.T) {
	h := newHarness(false)
	h.plotter.err = errors.New("no font")
	require.NoError(t, h.r.EndGeneration(model.RunConfig{}, nil, nil))
	last := h.sink.reports[len(h.sink.reports)-1]
	assert.Empty(t, last.artifact)
}

func TestStdOutReporter_GenerationTimeWindow(t *testing.T) {
	h := newHarness(false)
	for gen := 0; gen < 11; gen++ {
		require.NoError(t, h.r.StartGeneration(gen, model.RunConfig{}, nil, nil))
		h.clock.advance(time.Duration(gen+1) * time.Second)
		require.NoError(t, h.r.EndGeneration(model.RunConfig{}, nil, nil))
		if gen == 1 {
			assert.Contains(t, h.out.String(), "Generation time: 2.000 sec (1.500 average)")
		}
	}
	times := h.r.GenerationTimes()
	require.Len(t, times, 10)
	assert.Equal(t, 2*time.Second, times[0])
	assert.Equal(t, 11*time.Second, times[9])
	assert.Contains(t, h.out.String(), "Generation time: 11.000 sec (6.500 average)")
}

func TestStdOutReporter_Extinctions(t *testing.T) {
	h := newHarness(false)
	require.NoError(t, h.r.CompleteExtinction())
	require.NoError(t, h.r.CompleteExtinction())
	assert.Equal(t, 2, h.r.Extinctions())
	require.NoError(t, h.r.EndGeneration(model.RunConfig{}, nil, nil))
	out := h.out.String()
	assert.Equal(t, 2, strings.Count(out, "All species extinct."))
	assert.Contains(t, out, "Total extinctions: 2")
}

func TestStdOutReporter_SpeciesStagnant(t *testing.T) {
	s := &model.Species{Key: 4, Members: []int{1, 2, 3}}

	quiet := newHarness(false)
	require.NoError(t, quiet.r.SpeciesStagnant(4, s))
	assert.Empty(t, quiet.out.String())
	assert.Empty(t, quiet.sink.reports)

	detail := newHarness(true)
	require.NoError(t, detail.r.SpeciesStagnant(4, s))
	assert.Contains(t, detail.out.String(), "Species 4 with 3 members is stagnated: removing it")
	require.Len(t, detail.sink.reports, 1)
}

func TestStdOutReporter_FoundSolutionAndInfo(t *testing.T) {
	h := newHarness(false)
	best := model.NewGenome(9, make([]float64, 4))
	require.NoError(t, h.r.FoundSolution(model.RunConfig{}, 12, best))
	require.NoError(t, h.r.Info("checkpoint saved"))
	out := h.out.String()
	assert.Contains(t, out, "Best individual in generation 12 meets fitness threshold - complexity: 4")
	assert.Contains(t, out, "checkpoint saved")
}
