package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evopool/core/evaluator"
	"github.com/kilianp07/evopool/core/model"
)

func evaluate(t *testing.T, pop model.Population) {
	t.Helper()
	snaps := make([]model.GenomeSnapshot, 0, len(pop))
	for _, g := range pop.Ordered() {
		snaps = append(snaps, g.Snapshot())
	}
	res, err := Sphere(context.Background(), evaluatorClient, nil, snaps, model.RunConfig{})
	require.NoError(t, err)
	for _, r := range res {
		pop[r.Key].SetFitness(r.Fitness)
	}
}

func TestSphere(t *testing.T) {
	res, err := Sphere(context.Background(), evaluatorClient, nil, []model.GenomeSnapshot{{Key: 4, Genes: []float64{1, -2}}}, model.RunConfig{})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 4, res[0].Key)
	assert.Equal(t, -5.0, res[0].Fitness)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Sphere(ctx, evaluatorClient, nil, []model.GenomeSnapshot{{Key: 1}}, model.RunConfig{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestSpeciateCoversPopulation(t *testing.T) {
	b := NewBreeder(model.RunConfig{PopulationSize: 30, GenomeSize: 4, Seed: 3})
	pop := b.Initial()
	require.Len(t, pop, 30)

	species := b.Speciate(pop, nil, 0)
	seen := map[int]int{}
	for _, sid := range species.SortedIDs() {
		s := species.Species[sid]
		assert.NotEmpty(t, s.Members)
		assert.Equal(t, 0, s.Created)
		for _, k := range s.Members {
			seen[k]++
		}
	}
	assert.Len(t, seen, 30)
	for k, n := range seen {
		assert.Equal(t, 1, n, "genome %d", k)
	}
}

func TestReproduceKeepsPopulationSize(t *testing.T) {
	b := NewBreeder(model.RunConfig{PopulationSize: 25, GenomeSize: 3, Seed: 11})
	pop := b.Initial()
	species := b.Speciate(pop, nil, 0)
	for gen := 0; gen < 4; gen++ {
		evaluate(t, pop)
		next, err := b.Reproduce(gen, pop, species, func(int, *model.Species) error { return nil })
		require.NoError(t, err)
		if len(next) == 0 {
			next = b.Initial()
		}
		assert.Len(t, next, 25)
		pop = next
		species = b.Speciate(pop, species, gen)
	}
	for _, sid := range species.SortedIDs() {
		if s := species.Species[sid]; s.Fitness != nil {
			assert.NotNil(t, s.AdjustedFitness)
		}
	}
}

func TestReproduceRemovesStagnantSpecies(t *testing.T) {
	b := NewBreeder(model.RunConfig{
		PopulationSize: 10,
		GenomeSize:     2,
		Seed:           5,
		Params:         map[string]float64{"max_stagnation": 1, "species_elitism": 0},
	})
	pop := b.Initial()
	species := b.Speciate(pop, nil, 0)
	evaluate(t, pop)

	var stagnant []int
	onStagnant := func(sid int, _ *model.Species) error {
		stagnant = append(stagnant, sid)
		return nil
	}
	next, err := b.Reproduce(0, pop, species, onStagnant)
	require.NoError(t, err)
	require.NotEmpty(t, next)
	assert.Empty(t, stagnant)

	// Same fitness again: nothing improved since generation 0.
	next, err = b.Reproduce(1, pop, species, onStagnant)
	require.NoError(t, err)
	assert.Empty(t, next)
	assert.ElementsMatch(t, species.SortedIDs(), stagnant)
}

var evaluatorClient = evaluator.Client{ID: 0, Name: "test"}
