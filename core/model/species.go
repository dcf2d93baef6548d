package model

import (
	"maps"
	"slices"
)

// Species is a cluster of genomes tracked by the speciation logic.
type Species struct {
	Key          int
	Created      int
	LastImproved int
	Members      []int
	// Fitness and AdjustedFitness are nil until the speciation logic computes them.
	Fitness         *float64
	AdjustedFitness *float64
}

// Size returns the number of member genomes.
func (s *Species) Size() int { return len(s.Members) }

// SpeciesSet maps species ids to species.
type SpeciesSet struct {
	Species map[int]*Species
}

// NewSpeciesSet returns an empty set.
func NewSpeciesSet() *SpeciesSet {
	return &SpeciesSet{Species: make(map[int]*Species)}
}

// Len returns the number of species.
func (s *SpeciesSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Species)
}

// SortedIDs returns the species ids in ascending order.
func (s *SpeciesSet) SortedIDs() []int {
	if s == nil {
		return nil
	}
	ids := slices.Collect(maps.Keys(s.Species))
	slices.Sort(ids)
	return ids
}

// SpeciesOf returns the id of the species containing the genome.
func (s *SpeciesSet) SpeciesOf(genomeKey int) (int, bool) {
	for _, id := range s.SortedIDs() {
		if slices.Contains(s.Species[id].Members, genomeKey) {
			return id, true
		}
	}
	return 0, false
}
