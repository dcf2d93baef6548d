package metrics

// MultiSink fans records out to multiple sinks. Optional recorders are only
// forwarded to sinks implementing them.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordEvaluation forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordEvaluation(rec EvaluationRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordEvaluation(rec); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) RecordGeneration(rec GenerationRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(GenerationRecorder); ok {
			if err := r.RecordGeneration(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MultiSink) RecordExtinction(ev ExtinctionEvent) error {
	for _, s := range m.Sinks {
		if r, ok := s.(ExtinctionRecorder); ok {
			if err := r.RecordExtinction(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MultiSink) RecordSolution(ev SolutionEvent) error {
	for _, s := range m.Sinks {
		if r, ok := s.(SolutionRecorder); ok {
			if err := r.RecordSolution(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MultiSink) RecordStagnation(ev StagnationEvent) error {
	for _, s := range m.Sinks {
		if r, ok := s.(StagnationRecorder); ok {
			if err := r.RecordStagnation(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
