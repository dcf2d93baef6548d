package metrics

import (
	"context"

	"github.com/kilianp07/evopool/core/events"
	coremetrics "github.com/kilianp07/evopool/core/metrics"
	"github.com/kilianp07/evopool/infra/logger"
	"github.com/kilianp07/evopool/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// generation events. It stops when the context is canceled or the bus is
// closed; the returned channel is closed once the collector exited.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.Event], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil {
					log.Warnf("record generation %d metrics: %v", ev.GenerationNumber(), err)
				}
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev events.Event) error {
	switch e := ev.(type) {
	case events.GenerationEvaluated:
		return sink.RecordEvaluation(coremetrics.EvaluationRecord{
			RunID:       e.RunID,
			Generation:  e.Generation,
			Evaluated:   e.Evaluated,
			Mean:        e.Mean,
			Stdev:       e.Stdev,
			Median:      e.Median,
			Best:        e.Best,
			BestKey:     e.BestKey,
			BestSpecies: e.BestSpecies,
			Complexity:  e.Complexity,
			Time:        e.Time,
		})
	case events.GenerationEnded:
		if r, ok := sink.(coremetrics.GenerationRecorder); ok {
			return r.RecordGeneration(coremetrics.GenerationRecord{
				RunID:          e.RunID,
				Generation:     e.Generation,
				PopulationSize: e.PopulationSize,
				SpeciesCount:   e.SpeciesCount,
				Duration:       e.Duration,
				Time:           e.Time,
			})
		}
	case events.ExtinctionOccurred:
		if r, ok := sink.(coremetrics.ExtinctionRecorder); ok {
			return r.RecordExtinction(coremetrics.ExtinctionEvent{RunID: e.RunID, Generation: e.Generation, Total: e.Total, Time: e.Time})
		}
	case events.SolutionFound:
		if r, ok := sink.(coremetrics.SolutionRecorder); ok {
			return r.RecordSolution(coremetrics.SolutionEvent{
				RunID:      e.RunID,
				Generation: e.Generation,
				Key:        e.Key,
				Fitness:    e.Fitness,
				Complexity: e.Complexity,
				Time:       e.Time,
			})
		}
	case events.SpeciesStagnated:
		if r, ok := sink.(coremetrics.StagnationRecorder); ok {
			return r.RecordStagnation(coremetrics.StagnationEvent{
				RunID:      e.RunID,
				Generation: e.Generation,
				SpeciesID:  e.SpeciesID,
				Members:    e.Members,
				Time:       e.Time,
			})
		}
	}
	return nil
}
