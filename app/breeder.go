package app

import (
	"cmp"
	"math"
	"math/rand"
	"slices"

	"github.com/kilianp07/evopool/core/model"
)

// Breeder is a minimal speciation and reproduction scheme used to drive the
// generation loop. Genomes are real vectors, species are formed by distance
// to a representative and offspring are Gaussian mutations of the best
// members.
type Breeder struct {
	rng            *rand.Rand
	popSize        int
	genomeSize     int
	threshold      float64
	maxStagnation  int
	speciesElitism int
	elitism        int
	survival       float64
	mutationPower  float64

	nextKey     int
	nextSpecies int
	reps        map[int][]float64
	best        map[int]float64
}

// NewBreeder reads its tuning from cfg.Params, falling back to defaults.
func NewBreeder(cfg model.RunConfig) *Breeder {
	param := func(name string, def float64) float64 {
		if v, ok := cfg.Params[name]; ok {
			return v
		}
		return def
	}
	return &Breeder{
		rng:            rand.New(rand.NewSource(cfg.Seed)),
		popSize:        cfg.PopulationSize,
		genomeSize:     cfg.GenomeSize,
		threshold:      param("compatibility_threshold", 3),
		maxStagnation:  int(param("max_stagnation", 15)),
		speciesElitism: int(param("species_elitism", 1)),
		elitism:        int(param("elitism", 1)),
		survival:       param("survival_threshold", 0.2),
		mutationPower:  param("mutation_power", 0.5),
		nextSpecies:    1,
		reps:           make(map[int][]float64),
		best:           make(map[int]float64),
	}
}

// Initial creates a fresh random population.
func (b *Breeder) Initial() model.Population {
	pop := make(model.Population, b.popSize)
	for range b.popSize {
		genes := make([]float64, b.genomeSize)
		for i := range genes {
			genes[i] = b.rng.Float64()*10 - 5
		}
		g := model.NewGenome(b.nextKey, genes)
		b.nextKey++
		pop[g.Key] = g
	}
	return pop
}

// Speciate assigns every genome to the species with the closest
// representative within the compatibility threshold, creating species as
// needed. Species left without members are dropped.
func (b *Breeder) Speciate(pop model.Population, prev *model.SpeciesSet, gen int) *model.SpeciesSet {
	next := model.NewSpeciesSet()
	for _, g := range pop.Ordered() {
		sid, ok := b.closest(g.Genes)
		if !ok {
			sid = b.nextSpecies
			b.nextSpecies++
			b.reps[sid] = slices.Clone(g.Genes)
		}
		s, ok := next.Species[sid]
		if !ok {
			s = &model.Species{Key: sid, Created: gen, LastImproved: gen}
			if prev != nil {
				if old, found := prev.Species[sid]; found {
					s.Created = old.Created
					s.LastImproved = old.LastImproved
					s.Fitness = old.Fitness
					s.AdjustedFitness = old.AdjustedFitness
				}
			}
			next.Species[sid] = s
		}
		s.Members = append(s.Members, g.Key)
	}
	for sid := range b.reps {
		if _, ok := next.Species[sid]; !ok {
			delete(b.reps, sid)
			delete(b.best, sid)
		}
	}
	return next
}

func (b *Breeder) closest(genes []float64) (int, bool) {
	best, bestDist := 0, math.Inf(1)
	ids := make([]int, 0, len(b.reps))
	for id := range b.reps {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if d := distance(genes, b.reps[id]); d < bestDist {
			best, bestDist = id, d
		}
	}
	return best, bestDist <= b.threshold
}

func distance(a, b []float64) float64 {
	var sum float64
	for i := range min(len(a), len(b)) {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Reproduce updates species fitness, removes stagnant species through
// onStagnant and breeds the next population. An empty population means
// every species went extinct.
func (b *Breeder) Reproduce(gen int, pop model.Population, species *model.SpeciesSet, onStagnant func(int, *model.Species) error) (model.Population, error) {
	type ranked struct {
		s       *model.Species
		members []*model.Genome
		mean    float64
	}
	var alive []ranked
	for _, sid := range species.SortedIDs() {
		s := species.Species[sid]
		var members []*model.Genome
		for _, k := range s.Members {
			if g, ok := pop[k]; ok && g.Evaluated {
				members = append(members, g)
			}
		}
		if len(members) == 0 {
			continue
		}
		slices.SortStableFunc(members, func(x, y *model.Genome) int { return cmp.Compare(y.Fitness, x.Fitness) })
		var sum float64
		for _, g := range members {
			sum += g.Fitness
		}
		mean := sum / float64(len(members))
		s.Fitness = &mean
		if prev, ok := b.best[sid]; !ok || members[0].Fitness > prev {
			b.best[sid] = members[0].Fitness
			s.LastImproved = gen
		}
		alive = append(alive, ranked{s: s, members: members, mean: mean})
	}

	// The best species are protected from stagnation.
	slices.SortStableFunc(alive, func(x, y ranked) int { return cmp.Compare(y.mean, x.mean) })
	kept := alive[:0]
	for i, r := range alive {
		if i >= b.speciesElitism && gen-r.s.LastImproved >= b.maxStagnation {
			if err := onStagnant(r.s.Key, r.s); err != nil {
				return nil, err
			}
			delete(b.reps, r.s.Key)
			delete(b.best, r.s.Key)
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return model.Population{}, nil
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range kept {
		lo, hi = math.Min(lo, r.mean), math.Max(hi, r.mean)
	}
	span := math.Max(1, hi-lo)
	var adjSum float64
	for _, r := range kept {
		adj := (r.mean - lo) / span
		r.s.AdjustedFitness = &adj
		adjSum += adj
	}

	next := make(model.Population, b.popSize)
	for i, r := range kept {
		spawn := b.popSize / len(kept)
		if adjSum > 0 {
			spawn = int(math.Round(*r.s.AdjustedFitness / adjSum * float64(b.popSize)))
		}
		spawn = max(spawn, 2)
		if i == len(kept)-1 {
			spawn = max(b.popSize-len(next), 0)
		}
		b.breed(next, r.members, min(spawn, b.popSize-len(next)))
	}
	return next, nil
}

func (b *Breeder) breed(into model.Population, members []*model.Genome, spawn int) {
	for i := 0; i < b.elitism && i < len(members) && spawn > 0; i++ {
		into[members[i].Key] = members[i]
		spawn--
	}
	parents := members[:max(1, int(math.Ceil(b.survival*float64(len(members)))))]
	for ; spawn > 0; spawn-- {
		p1 := parents[b.rng.Intn(len(parents))]
		p2 := parents[b.rng.Intn(len(parents))]
		genes := make([]float64, len(p1.Genes))
		for i := range genes {
			genes[i] = (p1.Genes[i]+p2.Genes[i])/2 + b.rng.NormFloat64()*b.mutationPower
		}
		g := model.NewGenome(b.nextKey, genes)
		b.nextKey++
		into[g.Key] = g
	}
}
