package app

import (
	"context"

	"github.com/kilianp07/evopool/core/evaluator"
	"github.com/kilianp07/evopool/core/model"
)

// Sphere scores a genome by the negated sum of its squared genes, so the
// optimum is 0 at the origin.
func Sphere(ctx context.Context, _ evaluator.Client, _ evaluator.Settings, chunk []model.GenomeSnapshot, _ model.RunConfig) ([]evaluator.FitnessResult, error) {
	out := make([]evaluator.FitnessResult, 0, len(chunk))
	for _, g := range chunk {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var sum float64
		for _, x := range g.Genes {
			sum += x * x
		}
		out = append(out, evaluator.FitnessResult{Key: g.Key, Fitness: -sum})
	}
	return out, nil
}

var _ evaluator.EvalFunc = Sphere
