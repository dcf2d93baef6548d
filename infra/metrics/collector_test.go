package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kilianp07/evopool/core/events"
	coremetrics "github.com/kilianp07/evopool/core/metrics"
	"github.com/kilianp07/evopool/internal/eventbus"
)

type memSink struct {
	mu          sync.Mutex
	evaluations []coremetrics.EvaluationRecord
	generations []coremetrics.GenerationRecord
	extinctions int
	solutions   int
	stagnations int
}

func (m *memSink) RecordEvaluation(r coremetrics.EvaluationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluations = append(m.evaluations, r)
	return nil
}

func (m *memSink) RecordGeneration(r coremetrics.GenerationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations = append(m.generations, r)
	return nil
}

func (m *memSink) RecordExtinction(coremetrics.ExtinctionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extinctions++
	return nil
}

func (m *memSink) RecordSolution(coremetrics.SolutionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.solutions++
	return nil
}

func (m *memSink) RecordStagnation(coremetrics.StagnationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stagnations++
	return nil
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.NewTyped[events.Event]()
	sink := &memSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := StartEventCollector(ctx, bus, sink, nil)

	now := time.Now()
	bus.Publish(events.GenerationStarted{RunID: "r", Generation: 1, Time: now})
	bus.Publish(events.GenerationEvaluated{RunID: "r", Generation: 1, Mean: 2, Best: 5, Time: now})
	bus.Publish(events.GenerationEnded{RunID: "r", Generation: 1, PopulationSize: 20, Duration: time.Second, Time: now})
	bus.Publish(events.ExtinctionOccurred{RunID: "r", Generation: 1, Total: 1})
	bus.Publish(events.SolutionFound{RunID: "r", Generation: 1})
	bus.Publish(events.SpeciesStagnated{RunID: "r", Generation: 1})
	bus.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop after bus close")
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.evaluations) != 1 || sink.evaluations[0].Best != 5 {
		t.Fatalf("unexpected evaluations %+v", sink.evaluations)
	}
	if len(sink.generations) != 1 || sink.generations[0].PopulationSize != 20 {
		t.Fatalf("unexpected generations %+v", sink.generations)
	}
	if sink.extinctions != 1 || sink.solutions != 1 || sink.stagnations != 1 {
		t.Fatalf("events not recorded: %+v", sink)
	}
}

func TestStartEventCollector_StopsOnCancel(t *testing.T) {
	bus := eventbus.NewTyped[events.Event]()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	done := StartEventCollector(ctx, bus, coremetrics.NopSink{}, nil)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop on cancel")
	}
}

func TestStartEventCollector_NilBus(t *testing.T) {
	done := StartEventCollector(context.Background(), nil, coremetrics.NopSink{}, nil)
	if _, ok := <-done; ok {
		t.Fatal("expected closed channel")
	}
}
