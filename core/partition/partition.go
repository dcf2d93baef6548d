// Package partition splits a population into contiguous chunks, one per
// worker resource.
package partition

import (
	"errors"
	"fmt"

	"github.com/kilianp07/evopool/core/model"
)

// ErrInvalidWorkers is returned when fewer than one worker is requested.
var ErrInvalidWorkers = errors.New("partition: worker count must be at least 1")

// Split returns exactly workers chunks covering genomes in order. The first
// len(genomes)%workers chunks hold one extra genome so sizes never differ by
// more than one. Trailing chunks are empty when workers > len(genomes).
func Split(genomes []*model.Genome, workers int) ([][]*model.Genome, error) {
	if workers < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkers, workers)
	}
	base := len(genomes) / workers
	extra := len(genomes) % workers
	chunks := make([][]*model.Genome, workers)
	start := 0
	for i := range chunks {
		size := base
		if i < extra {
			size++
		}
		chunks[i] = genomes[start : start+size : start+size]
		start += size
	}
	return chunks, nil
}

// SplitPopulation partitions the population following its sorted key order.
func SplitPopulation(pop model.Population, workers int) ([][]*model.Genome, error) {
	return Split(pop.Ordered(), workers)
}
