// Package reporting broadcasts generation lifecycle events to registered
// reporters and provides the statistics reporter.
package reporting

import (
	"reflect"
	"slices"

	"github.com/kilianp07/evopool/core/model"
)

// Reporter receives generation lifecycle events. Reporters must treat the
// population and species set as read-only.
type Reporter interface {
	StartGeneration(gen int, cfg model.RunConfig, pop model.Population, species *model.SpeciesSet) error
	EndGeneration(cfg model.RunConfig, pop model.Population, species *model.SpeciesSet) error
	PostEvaluate(cfg model.RunConfig, pop model.Population, species *model.SpeciesSet, best *model.Genome) error
	PostReproduction(cfg model.RunConfig, pop model.Population, species *model.SpeciesSet) error
	CompleteExtinction() error
	FoundSolution(cfg model.RunConfig, gen int, best *model.Genome) error
	SpeciesStagnant(sid int, species *model.Species) error
	Info(msg string) error
}

// BaseReporter implements every hook as a no-op. Embed it to override only
// the hooks of interest.
type BaseReporter struct{}

func (BaseReporter) StartGeneration(int, model.RunConfig, model.Population, *model.SpeciesSet) error {
	return nil
}
func (BaseReporter) EndGeneration(model.RunConfig, model.Population, *model.SpeciesSet) error {
	return nil
}
func (BaseReporter) PostEvaluate(model.RunConfig, model.Population, *model.SpeciesSet, *model.Genome) error {
	return nil
}
func (BaseReporter) PostReproduction(model.RunConfig, model.Population, *model.SpeciesSet) error {
	return nil
}
func (BaseReporter) CompleteExtinction() error                             { return nil }
func (BaseReporter) FoundSolution(model.RunConfig, int, *model.Genome) error { return nil }
func (BaseReporter) SpeciesStagnant(int, *model.Species) error             { return nil }
func (BaseReporter) Info(string) error                                     { return nil }

// ReporterSet delivers each event to its reporters synchronously, in
// registration order. The first hook error stops delivery and is returned
// as an *ObserverFailure. A ReporterSet is not safe for concurrent use.
type ReporterSet struct {
	reporters []Reporter
}

// NewReporterSet returns a set holding the given reporters.
func NewReporterSet(rs ...Reporter) *ReporterSet {
	s := &ReporterSet{}
	for _, r := range rs {
		s.Add(r)
	}
	return s
}

// Add registers r after every reporter already present.
func (s *ReporterSet) Add(r Reporter) {
	s.reporters = append(s.reporters, r)
}

// Remove unregisters the first reporter identical to r.
func (s *ReporterSet) Remove(r Reporter) error {
	for i, cur := range s.reporters {
		if same(cur, r) {
			s.reporters = slices.Delete(s.reporters, i, i+1)
			return nil
		}
	}
	return ErrNotRegistered
}

// Len returns the number of registered reporters.
func (s *ReporterSet) Len() int { return len(s.reporters) }

// same reports identity. Comparable values use ==. Other values of the same
// type are identical when their scalar fields are equal and their maps,
// slices, channels and funcs share the same backing data.
func same(a, b Reporter) bool {
	if a == nil || b == nil {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() {
		return a == b
	}
	return identical(va, vb)
}

func identical(a, b reflect.Value) bool {
	switch a.Kind() {
	case reflect.Map, reflect.Chan, reflect.Func, reflect.Pointer, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Slice:
		return a.Pointer() == b.Pointer() && a.Len() == b.Len()
	case reflect.Struct:
		for i := range a.NumField() {
			if !identical(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Array:
		for i := range a.Len() {
			if !identical(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() == b.IsNil()
		}
		ea, eb := a.Elem(), b.Elem()
		return ea.Type() == eb.Type() && identical(ea, eb)
	default:
		return a.Equal(b)
	}
}

func (s *ReporterSet) each(hook string, fn func(Reporter) error) error {
	// iterate a copy so a hook adding or removing reporters does not shift delivery
	for i, r := range slices.Clone(s.reporters) {
		if err := fn(r); err != nil {
			return &ObserverFailure{Hook: hook, Index: i, Err: err}
		}
	}
	return nil
}

// StartGeneration broadcasts the start of generation gen.
func (s *ReporterSet) StartGeneration(gen int, cfg model.RunConfig, pop model.Population, species *model.SpeciesSet) error {
	return s.each("StartGeneration", func(r Reporter) error { return r.StartGeneration(gen, cfg, pop, species) })
}

// EndGeneration broadcasts the end of the current generation.
func (s *ReporterSet) EndGeneration(cfg model.RunConfig, pop model.Population, species *model.SpeciesSet) error {
	return s.each("EndGeneration", func(r Reporter) error { return r.EndGeneration(cfg, pop, species) })
}

// PostEvaluate broadcasts the evaluated population and its best genome.
func (s *ReporterSet) PostEvaluate(cfg model.RunConfig, pop model.Population, species *model.SpeciesSet, best *model.Genome) error {
	return s.each("PostEvaluate", func(r Reporter) error { return r.PostEvaluate(cfg, pop, species, best) })
}

// PostReproduction broadcasts the population produced for the next generation.
func (s *ReporterSet) PostReproduction(cfg model.RunConfig, pop model.Population, species *model.SpeciesSet) error {
	return s.each("PostReproduction", func(r Reporter) error { return r.PostReproduction(cfg, pop, species) })
}

// CompleteExtinction broadcasts that every species went extinct.
func (s *ReporterSet) CompleteExtinction() error {
	return s.each("CompleteExtinction", func(r Reporter) error { return r.CompleteExtinction() })
}

// FoundSolution broadcasts a genome meeting the fitness threshold.
func (s *ReporterSet) FoundSolution(cfg model.RunConfig, gen int, best *model.Genome) error {
	return s.each("FoundSolution", func(r Reporter) error { return r.FoundSolution(cfg, gen, best) })
}

// SpeciesStagnant broadcasts the removal of a stagnated species.
func (s *ReporterSet) SpeciesStagnant(sid int, species *model.Species) error {
	return s.each("SpeciesStagnant", func(r Reporter) error { return r.SpeciesStagnant(sid, species) })
}

// Info broadcasts a free-form message.
func (s *ReporterSet) Info(msg string) error {
	return s.each("Info", func(r Reporter) error { return r.Info(msg) })
}

var _ Reporter = (*ReporterSet)(nil)
