package evaluator

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/evopool/core/model"
)

// Collect waits for every pending job under one deadline derived from
// timeout. A zero timeout waits indefinitely. The first failed job, in job
// order, is returned as a *WorkerFailure.
func Collect(ctx context.Context, pending []*Pending, timeout time.Duration) ([]Result, error) {
	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}
	results := make([]Result, len(pending))
	for i, pd := range pending {
		if !pd.finished() {
			select {
			case <-pd.Done():
			case <-deadline:
				return nil, &EvaluationTimeout{Jobs: unfinished(pending), Timeout: timeout}
			case <-ctx.Done():
				return nil, fmt.Errorf("collect job %d: %w", pd.JobID(), ctx.Err())
			}
		}
		results[i] = pd.res
	}
	for _, r := range results {
		if r.Err != nil {
			return nil, &WorkerFailure{Job: r.JobID, ClientID: r.ClientID, Err: r.Err}
		}
	}
	return results, nil
}

func unfinished(pending []*Pending) []int {
	var ids []int
	for _, pd := range pending {
		if !pd.finished() {
			ids = append(ids, pd.JobID())
		}
	}
	return ids
}

// Merge validates every result against the dispatched chunks and, only if all
// checks pass, writes the fitness values onto the population's genomes. On
// error the population is left untouched.
func Merge(pop model.Population, chunks [][]*model.Genome, results []Result) error {
	dispatched := make(map[int]int)
	for job, chunk := range chunks {
		for _, g := range chunk {
			dispatched[g.Key] = job
		}
	}
	values := make(map[int]float64, len(dispatched))
	for _, r := range results {
		for _, f := range r.Fitness {
			if _, ok := dispatched[f.Key]; !ok {
				return &MergeError{Key: f.Key, Job: r.JobID, Reason: MergeUnknownKey}
			}
			if _, ok := pop[f.Key]; !ok {
				return &MergeError{Key: f.Key, Job: r.JobID, Reason: MergeUnknownKey}
			}
			if _, dup := values[f.Key]; dup {
				return &MergeError{Key: f.Key, Job: r.JobID, Reason: MergeDuplicate}
			}
			values[f.Key] = f.Fitness
		}
	}
	for _, chunk := range chunks {
		for _, g := range chunk {
			if _, ok := values[g.Key]; !ok {
				return &MergeError{Key: g.Key, Job: dispatched[g.Key], Reason: MergeMissing}
			}
		}
	}
	for key, f := range values {
		pop[key].SetFitness(f)
	}
	return nil
}
