package model

import (
	"fmt"
	"maps"
	"slices"
)

// Genome is one candidate solution. Fitness is absent until SetFitness is
// called for the current round.
type Genome struct {
	Key       int
	Fitness   float64
	Evaluated bool
	// Genes is the opaque payload handed to the evaluation function.
	Genes []float64
}

// NewGenome returns an unevaluated genome.
func NewGenome(key int, genes []float64) *Genome {
	return &Genome{Key: key, Genes: genes}
}

// SetFitness assigns the fitness and marks the genome as evaluated.
func (g *Genome) SetFitness(f float64) {
	g.Fitness = f
	g.Evaluated = true
}

// ResetFitness clears the fitness before a new evaluation round.
func (g *Genome) ResetFitness() {
	g.Fitness = 0
	g.Evaluated = false
}

// Complexity is the structural size of the genome.
func (g *Genome) Complexity() int { return len(g.Genes) }

// Snapshot returns a deep copy suitable for handing to a worker.
func (g *Genome) Snapshot() GenomeSnapshot {
	return GenomeSnapshot{Key: g.Key, Genes: slices.Clone(g.Genes)}
}

func (g *Genome) String() string {
	if !g.Evaluated {
		return fmt.Sprintf("genome %d (unevaluated)", g.Key)
	}
	return fmt.Sprintf("genome %d fitness=%.5f", g.Key, g.Fitness)
}

// GenomeSnapshot is the copy of a genome sent to an evaluation job. Workers
// never see the Population's *Genome values.
type GenomeSnapshot struct {
	Key   int       `json:"key"`
	Genes []float64 `json:"genes"`
}

// Population maps genome keys to genomes.
type Population map[int]*Genome

// SortedKeys returns the genome keys in ascending order. This is the canonical
// order used to partition a population.
func (p Population) SortedKeys() []int {
	keys := slices.Collect(maps.Keys(p))
	slices.Sort(keys)
	return keys
}

// Ordered returns the genomes following SortedKeys.
func (p Population) Ordered() []*Genome {
	keys := p.SortedKeys()
	out := make([]*Genome, 0, len(keys))
	for _, k := range keys {
		out = append(out, p[k])
	}
	return out
}

// Fitnesses returns the fitness of every evaluated genome in key order.
func (p Population) Fitnesses() []float64 {
	out := make([]float64, 0, len(p))
	for _, g := range p.Ordered() {
		if g.Evaluated {
			out = append(out, g.Fitness)
		}
	}
	return out
}

// Best returns the evaluated genome with the highest fitness. Ties resolve to
// the lowest key.
func (p Population) Best() (*Genome, bool) {
	var best *Genome
	for _, g := range p.Ordered() {
		if !g.Evaluated {
			continue
		}
		if best == nil || g.Fitness > best.Fitness {
			best = g
		}
	}
	return best, best != nil
}

// Unevaluated returns the keys of genomes without fitness.
func (p Population) Unevaluated() []int {
	var keys []int
	for _, k := range p.SortedKeys() {
		if !p[k].Evaluated {
			keys = append(keys, k)
		}
	}
	return keys
}
