package metrics

import "time"

// EvaluationRecord holds the fitness statistics of an evaluated generation.
type EvaluationRecord struct {
	RunID       string
	Generation  int
	Evaluated   int
	Mean        float64
	Stdev       float64
	Median      float64
	Best        float64
	BestKey     int
	BestSpecies int
	Complexity  int
	Time        time.Time
}

// MetricsSink records generation statistics for observability purposes.
type MetricsSink interface {
	RecordEvaluation(rec EvaluationRecord) error
}

// GenerationRecord describes a completed generation.
type GenerationRecord struct {
	RunID          string
	Generation     int
	PopulationSize int
	SpeciesCount   int
	Duration       time.Duration
	Time           time.Time
}

// GenerationRecorder records completed generations.
type GenerationRecorder interface {
	RecordGeneration(rec GenerationRecord) error
}

// ExtinctionEvent records a complete extinction.
type ExtinctionEvent struct {
	RunID      string
	Generation int
	Total      int
	Time       time.Time
}

// ExtinctionRecorder records extinctions.
type ExtinctionRecorder interface {
	RecordExtinction(ev ExtinctionEvent) error
}

// SolutionEvent records a genome meeting the fitness threshold.
type SolutionEvent struct {
	RunID      string
	Generation int
	Key        int
	Fitness    float64
	Complexity int
	Time       time.Time
}

// SolutionRecorder records solutions.
type SolutionRecorder interface {
	RecordSolution(ev SolutionEvent) error
}

// StagnationEvent records the removal of a stagnant species.
type StagnationEvent struct {
	RunID      string
	Generation int
	SpeciesID  int
	Members    int
	Time       time.Time
}

// StagnationRecorder records species stagnation.
type StagnationRecorder interface {
	RecordStagnation(ev StagnationEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordEvaluation(EvaluationRecord) error { return nil }
func (NopSink) RecordGeneration(GenerationRecord) error { return nil }
func (NopSink) RecordExtinction(ExtinctionEvent) error  { return nil }
func (NopSink) RecordSolution(SolutionEvent) error      { return nil }
func (NopSink) RecordStagnation(StagnationEvent) error  { return nil }
