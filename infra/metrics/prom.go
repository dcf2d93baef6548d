package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/evopool/core/metrics"
)

// PromSink records generation statistics in Prometheus metrics labelled by run.
type PromSink struct {
	generation  *prometheus.GaugeVec
	fitness     *prometheus.GaugeVec
	population  *prometheus.GaugeVec
	species     *prometheus.GaugeVec
	duration    *prometheus.HistogramVec
	extinctions *prometheus.CounterVec
	solutions   *prometheus.CounterVec
	stagnations *prometheus.CounterVec
}

// NewPromSink registers the evolution metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.generation, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "evolution_generation",
		Help: "Generation currently being reported",
	}, []string{"run_id"})); err != nil {
		return nil, err
	}
	if s.fitness, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "evolution_fitness",
		Help: "Population fitness statistics of the last evaluated generation",
	}, []string{"run_id", "stat"})); err != nil {
		return nil, err
	}
	if s.population, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "evolution_population_size",
		Help: "Number of genomes at the end of the last generation",
	}, []string{"run_id"})); err != nil {
		return nil, err
	}
	if s.species, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "evolution_species_count",
		Help: "Number of species at the end of the last generation",
	}, []string{"run_id"})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "evolution_generation_duration_seconds",
		Help:    "Wall time of a generation",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"run_id"})); err != nil {
		return nil, err
	}
	if s.extinctions, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evolution_extinctions_total",
		Help: "Complete extinctions",
	}, []string{"run_id"})); err != nil {
		return nil, err
	}
	if s.solutions, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evolution_solutions_total",
		Help: "Genomes meeting the fitness threshold",
	}, []string{"run_id"})); err != nil {
		return nil, err
	}
	if s.stagnations, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evolution_stagnant_species_total",
		Help: "Species removed for stagnation",
	}, []string{"run_id"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// RecordEvaluation sets the fitness gauges.
func (s *PromSink) RecordEvaluation(rec coremetrics.EvaluationRecord) error {
	s.generation.WithLabelValues(rec.RunID).Set(float64(rec.Generation))
	s.fitness.WithLabelValues(rec.RunID, "mean").Set(rec.Mean)
	s.fitness.WithLabelValues(rec.RunID, "stdev").Set(rec.Stdev)
	s.fitness.WithLabelValues(rec.RunID, "median").Set(rec.Median)
	s.fitness.WithLabelValues(rec.RunID, "best").Set(rec.Best)
	return nil
}

// RecordGeneration sets the size gauges and observes the generation duration.
func (s *PromSink) RecordGeneration(rec coremetrics.GenerationRecord) error {
	s.population.WithLabelValues(rec.RunID).Set(float64(rec.PopulationSize))
	s.species.WithLabelValues(rec.RunID).Set(float64(rec.SpeciesCount))
	s.duration.WithLabelValues(rec.RunID).Observe(rec.Duration.Seconds())
	return nil
}

func (s *PromSink) RecordExtinction(ev coremetrics.ExtinctionEvent) error {
	s.extinctions.WithLabelValues(ev.RunID).Inc()
	return nil
}

func (s *PromSink) RecordSolution(ev coremetrics.SolutionEvent) error {
	s.solutions.WithLabelValues(ev.RunID).Inc()
	return nil
}

func (s *PromSink) RecordStagnation(ev coremetrics.StagnationEvent) error {
	s.stagnations.WithLabelValues(ev.RunID).Inc()
	return nil
}
