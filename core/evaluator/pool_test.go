package evaluator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kilianp07/evopool/core/logger"
	"github.com/kilianp07/evopool/core/model"
)

// blockingEval signals on started and blocks until release is closed,
// ignoring cancellation.
func blockingEval(started chan<- int, release <-chan struct{}) EvalFunc {
	return func(_ context.Context, c Client, _ Settings, chunk []model.GenomeSnapshot, _ model.RunConfig) ([]FitnessResult, error) {
		started <- c.ID
		<-release
		out := make([]FitnessResult, len(chunk))
		for i, g := range chunk {
			out[i] = FitnessResult{Key: g.Key}
		}
		return out, nil
	}
}

func TestNewPool_Invalid(t *testing.T) {
	if _, err := NewPool(0, 1, sumEval, logger.NopLogger{}); err == nil {
		t.Fatal("expected error for zero workers")
	}
	if _, err := NewPool(1, 1, nil, logger.NopLogger{}); err == nil {
		t.Fatal("expected error for nil function")
	}
}

func TestPool_SubmitAndWait(t *testing.T) {
	p, err := NewPool(2, 4, sumEval, logger.NopLogger{})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	defer p.Shutdown(context.Background())

	g := model.NewGenome(3, []float64{1, 2})
	pd, err := p.Submit(NewJob(7, Client{ID: 1}, nil, []*model.Genome{g}, model.RunConfig{}))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := pd.Wait(ctx)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if res.JobID != 7 || res.ClientID != 1 {
		t.Fatalf("unexpected result ids: %+v", res)
	}
	if len(res.Fitness) != 1 || res.Fitness[0].Fitness != 3 {
		t.Fatalf("unexpected fitness: %+v", res.Fitness)
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	p, err := NewPool(1, 1, sumEval, logger.NopLogger{})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if _, err := p.Submit(Job{}); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}
}

func TestPool_SubmitWhileDraining(t *testing.T) {
	p, err := NewPool(1, 1, sumEval, logger.NopLogger{})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	defer p.Shutdown(context.Background())
	p.setDraining(true)
	if _, err := p.Submit(Job{}); !errors.Is(err, ErrPoolDraining) {
		t.Fatalf("expected ErrPoolDraining, got %v", err)
	}
	p.setDraining(false)
	if _, err := p.Submit(Job{}); err != nil {
		t.Fatalf("submit after drain: %v", err)
	}
}

func TestPool_QueueFull(t *testing.T) {
	started := make(chan int, 4)
	release := make(chan struct{})
	p, err := NewPool(1, 1, blockingEval(started, release), logger.NopLogger{})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	defer p.Shutdown(context.Background())
	defer close(release)

	if _, err := p.Submit(Job{ID: 0}); err != nil {
		t.Fatalf("submit 0: %v", err)
	}
	<-started
	if _, err := p.Submit(Job{ID: 1}); err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	if _, err := p.Submit(Job{ID: 2}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestPool_HungJobsSaturateQueue(t *testing.T) {
	started := make(chan int, 4)
	release := make(chan struct{})
	p, err := NewPool(1, 1, blockingEval(started, release), logger.NopLogger{})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	defer p.Shutdown(context.Background())
	defer close(release)
	chunk := [][]*model.Genome{{model.NewGenome(1, nil)}}
	round := func() error {
		_, err := p.EvaluateRound(context.Background(), chunk, newClients(1), nil, model.RunConfig{}, 10*time.Millisecond)
		return err
	}

	// the first job ignores cancellation and holds the only worker
	if err := round(); !errors.Is(err, ErrEvaluationTimeout) {
		t.Fatalf("round 0: expected timeout, got %v", err)
	}
	<-started
	// the second stays queued behind it
	if err := round(); !errors.Is(err, ErrEvaluationTimeout) {
		t.Fatalf("round 1: expected timeout, got %v", err)
	}
	if err := round(); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("round 2: expected ErrQueueFull, got %v", err)
	}
}

func TestPool_RoundQueuesAllOrNothing(t *testing.T) {
	started := make(chan int, 4)
	release := make(chan struct{})
	p, err := NewPool(1, 2, blockingEval(started, release), logger.NopLogger{})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	defer p.Shutdown(context.Background())
	defer close(release)

	if _, err := p.Submit(Job{ID: 0}); err != nil {
		t.Fatalf("submit 0: %v", err)
	}
	<-started
	if _, err := p.Submit(Job{ID: 1}); err != nil {
		t.Fatalf("submit 1: %v", err)
	}

	chunks := [][]*model.Genome{{model.NewGenome(1, nil)}, {model.NewGenome(2, nil)}}
	_, err = p.EvaluateRound(context.Background(), chunks, newClients(2), nil, model.RunConfig{}, 10*time.Millisecond)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if got := len(p.jobs); got != 1 {
		t.Fatalf("expected no job of the failed round queued, queue holds %d", got)
	}
}

func TestPool_ShutdownDrainsQueue(t *testing.T) {
	p, err := NewPool(2, 8, sumEval, logger.NopLogger{})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	var pending []*Pending
	for i := 0; i < 8; i++ {
		g := model.NewGenome(i, []float64{float64(i)})
		pd, err := p.Submit(NewJob(i, Client{ID: i % 2}, nil, []*model.Genome{g}, model.RunConfig{}))
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		pending = append(pending, pd)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	for _, pd := range pending {
		if !pd.finished() {
			t.Fatalf("job %d not finished after shutdown", pd.JobID())
		}
	}
}

func TestPool_ForcedShutdown(t *testing.T) {
	started := make(chan int, 1)
	release := make(chan struct{})
	defer close(release)
	p, err := NewPool(1, 1, blockingEval(started, release), logger.NopLogger{})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	if _, err := p.Submit(Job{ID: 0}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = p.Shutdown(ctx)
	if !errors.Is(err, ErrForcedShutdown) {
		t.Fatalf("expected ErrForcedShutdown, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline cause, got %v", err)
	}
}

func TestPool_EvaluateRoundMismatch(t *testing.T) {
	p, err := NewPool(1, 1, sumEval, logger.NopLogger{})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	defer p.Shutdown(context.Background())
	chunks := [][]*model.Genome{{model.NewGenome(1, nil)}}
	_, err = p.EvaluateRound(context.Background(), chunks, newClients(2), nil, model.RunConfig{}, 0)
	var pe *PartitionError
	if !errors.As(err, &pe) || pe.Chunks != 1 || pe.Clients != 2 {
		t.Fatalf("expected partition error, got %v", err)
	}
}

func TestCollect_ContextCancelled(t *testing.T) {
	pd := newPending(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Collect(ctx, []*Pending{pd}, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMerge_LeavesPopulationUntouchedOnError(t *testing.T) {
	pop := newPopulation(4)
	chunks := [][]*model.Genome{{pop[0], pop[1]}, {pop[2], pop[3]}}
	results := []Result{
		{JobID: 0, Fitness: []FitnessResult{{Key: 0, Fitness: 1}, {Key: 1, Fitness: 1}}},
		{JobID: 1, Fitness: []FitnessResult{{Key: 2, Fitness: 1}}},
	}
	err := Merge(pop, chunks, results)
	var me *MergeError
	if !errors.As(err, &me) || me.Reason != MergeMissing || me.Key != 3 || me.Job != 1 {
		t.Fatalf("expected missing key 3 from job 1, got %v", err)
	}
	assertNoFitness(t, pop)
}

func TestMerge_RejectsKeyOutsideDispatchedSet(t *testing.T) {
	pop := newPopulation(3)
	chunks := [][]*model.Genome{{pop[0], pop[1]}}
	results := []Result{{JobID: 0, Fitness: []FitnessResult{{Key: 0}, {Key: 1}, {Key: 2}}}}
	err := Merge(pop, chunks, results)
	if !errors.Is(err, ErrMerge) {
		t.Fatalf("expected merge error, got %v", err)
	}
}
