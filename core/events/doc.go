// Package events defines the generation events mirrored on the event bus.
//
// Available event types:
//   - GenerationStarted: a generation began
//   - GenerationEvaluated: fitness statistics of the evaluated population
//   - GenerationEnded: population and species counts with the generation duration
//   - ExtinctionOccurred: every species went extinct
//   - SolutionFound: the best genome met the fitness threshold
//   - SpeciesStagnated: a species is being removed for stagnation
package events
