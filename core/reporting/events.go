package reporting

import (
	"time"

	"github.com/kilianp07/evopool/core/events"
	"github.com/kilianp07/evopool/core/model"
	"github.com/kilianp07/evopool/internal/eventbus"
)

// EventReporter mirrors generation events onto an event bus for
// asynchronous consumers such as the metrics collector. Publishing never
// blocks the generation loop.
type EventReporter struct {
	BaseReporter

	bus         *eventbus.TypedBus[events.Event]
	runID       string
	now         func() time.Time
	generation  int
	start       time.Time
	extinctions int
}

// NewEventReporter publishes on bus, tagging events with runID.
func NewEventReporter(bus *eventbus.TypedBus[events.Event], runID string) *EventReporter {
	return &EventReporter{bus: bus, runID: runID, now: time.Now}
}

func (r *EventReporter) StartGeneration(gen int, _ model.RunConfig, _ model.Population, _ *model.SpeciesSet) error {
	r.generation = gen
	r.start = r.now()
	r.bus.Publish(events.GenerationStarted{RunID: r.runID, Generation: gen, Time: r.start})
	return nil
}

// PostEvaluate publishes nothing for a population without fitness values.
func (r *EventReporter) PostEvaluate(_ model.RunConfig, pop model.Population, species *model.SpeciesSet, best *model.Genome) error {
	st, err := ComputeStats(pop.Fitnesses())
	if err != nil {
		return nil
	}
	if best == nil {
		best, _ = pop.Best()
	}
	sid, ok := species.SpeciesOf(best.Key)
	if !ok {
		sid = -1
	}
	r.bus.Publish(events.GenerationEvaluated{
		RunID:       r.runID,
		Generation:  r.generation,
		Evaluated:   st.N,
		Mean:        st.Mean,
		Stdev:       st.Stdev,
		Median:      st.Median,
		Best:        best.Fitness,
		BestKey:     best.Key,
		BestSpecies: sid,
		Complexity:  best.Complexity(),
		Time:        r.now(),
	})
	return nil
}

func (r *EventReporter) EndGeneration(_ model.RunConfig, pop model.Population, species *model.SpeciesSet) error {
	now := r.now()
	var d time.Duration
	if !r.start.IsZero() {
		d = now.Sub(r.start)
	}
	r.bus.Publish(events.GenerationEnded{
		RunID:          r.runID,
		Generation:     r.generation,
		PopulationSize: len(pop),
		SpeciesCount:   species.Len(),
		Duration:       d,
		Time:           now,
	})
	return nil
}

func (r *EventReporter) CompleteExtinction() error {
	r.extinctions++
	r.bus.Publish(events.ExtinctionOccurred{RunID: r.runID, Generation: r.generation, Total: r.extinctions, Time: r.now()})
	return nil
}

func (r *EventReporter) FoundSolution(_ model.RunConfig, gen int, best *model.Genome) error {
	r.bus.Publish(events.SolutionFound{
		RunID:      r.runID,
		Generation: gen,
		Key:        best.Key,
		Fitness:    best.Fitness,
		Complexity: best.Complexity(),
		Time:       r.now(),
	})
	return nil
}

func (r *EventReporter) SpeciesStagnant(sid int, species *model.Species) error {
	r.bus.Publish(events.SpeciesStagnated{
		RunID:      r.runID,
		Generation: r.generation,
		SpeciesID:  sid,
		Members:    species.Size(),
		Time:       r.now(),
	})
	return nil
}

var _ Reporter = (*EventReporter)(nil)
