package events

import "time"

// Event is implemented by every generation event.
type Event interface {
	GenerationNumber() int
}

// GenerationStarted is published when a generation begins.
type GenerationStarted struct {
	RunID      string
	Generation int
	Time       time.Time
}

// GenerationEvaluated carries the fitness statistics after evaluation.
type GenerationEvaluated struct {
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

// GenerationEnded is published once a generation is complete.
type GenerationEnded struct {
	RunID          string
	Generation     int
	PopulationSize int
	SpeciesCount   int
	Duration       time.Duration
	Time           time.Time
}

// ExtinctionOccurred is published when all species died out.
type ExtinctionOccurred struct {
	RunID      string
	Generation int
	Total      int
	Time       time.Time
}

// SolutionFound is published when the fitness threshold is met.
type SolutionFound struct {
	RunID      string
	Generation int
	Key        int
	Fitness    float64
	Complexity int
	Time       time.Time
}

// SpeciesStagnated is published when a species is removed for stagnation.
type SpeciesStagnated struct {
	RunID      string
	Generation int
	SpeciesID  int
	Members    int
	Time       time.Time
}

func (e GenerationStarted) GenerationNumber() int   { return e.Generation }
func (e GenerationEvaluated) GenerationNumber() int { return e.Generation }
func (e GenerationEnded) GenerationNumber() int     { return e.Generation }
func (e ExtinctionOccurred) GenerationNumber() int  { return e.Generation }
func (e SolutionFound) GenerationNumber() int       { return e.Generation }
func (e SpeciesStagnated) GenerationNumber() int    { return e.Generation }
