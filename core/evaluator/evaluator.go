// Package evaluator distributes the fitness evaluation of a population across
// a fixed set of worker clients and merges the results back onto the
// population's genomes.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/evopool/core/logger"
	"github.com/kilianp07/evopool/core/model"
	"github.com/kilianp07/evopool/core/monitoring"
	"github.com/kilianp07/evopool/core/partition"
)

// Config defines the evaluator settings.
type Config struct {
	// Workers is the pool size. Zero means one worker per client.
	Workers int
	// QueueSize bounds the job queue. It is raised to the client count if lower.
	QueueSize int
	// Timeout bounds the wait for a round's results. Zero waits indefinitely.
	Timeout time.Duration
	// ShutdownTimeout bounds Close when the caller's context has no deadline.
	ShutdownTimeout time.Duration
}

// Partitioner splits an ordered genome slice into n chunks.
type Partitioner func(genomes []*model.Genome, n int) ([][]*model.Genome, error)

// Option configures a ParallelEvaluator.
type Option func(*ParallelEvaluator)

// WithPartitioner replaces the default contiguous partitioner.
func WithPartitioner(p Partitioner) Option {
	return func(e *ParallelEvaluator) { e.partition = p }
}

// ParallelEvaluator owns a worker pool for its whole lifetime.
type ParallelEvaluator struct {
	cfg       Config
	pool      *Pool
	clients   []Client
	settings  Settings
	partition Partitioner
	log       logger.Logger

	closeOnce sync.Once
	closeErr  error
}

// New builds the evaluator and starts its pool.
func New(cfg Config, fn EvalFunc, clients []Client, settings Settings, log logger.Logger, opts ...Option) (*ParallelEvaluator, error) {
	if len(clients) == 0 {
		return nil, fmt.Errorf("evaluator: at least one client is required")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = len(clients)
	}
	if cfg.QueueSize < len(clients) {
		cfg.QueueSize = len(clients)
	}
	pool, err := NewPool(cfg.Workers, cfg.QueueSize, fn, log)
	if err != nil {
		return nil, err
	}
	cl := make([]Client, len(clients))
	for i, c := range clients {
		cl[i] = c.Clone()
	}
	e := &ParallelEvaluator{
		cfg:       cfg,
		pool:      pool,
		clients:   cl,
		settings:  settings.Clone(),
		partition: partition.Split,
		log:       log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Clients returns the number of worker clients.
func (e *ParallelEvaluator) Clients() int { return len(e.clients) }

// Evaluate assigns a fitness to every genome of pop, in place. It returns an
// error when any genome could not be evaluated, in which case no fitness
// from this round is written.
func (e *ParallelEvaluator) Evaluate(ctx context.Context, pop model.Population, cfg model.RunConfig) error {
	start := time.Now()
	chunks, err := e.partition(pop.Ordered(), len(e.clients))
	if err != nil {
		roundsTotal.WithLabelValues("partition_error").Inc()
		return &PartitionError{Clients: len(e.clients), Err: err}
	}
	if err := checkCoverage(pop, chunks); err != nil {
		roundsTotal.WithLabelValues("partition_error").Inc()
		return &PartitionError{Chunks: len(chunks), Clients: len(e.clients), Err: err}
	}
	results, err := e.pool.EvaluateRound(ctx, chunks, e.clients, e.settings, cfg, e.cfg.Timeout)
	if err != nil {
		e.fail("evaluation round failed", err)
		return err
	}
	if err := Merge(pop, chunks, results); err != nil {
		e.fail("merge failed", err)
		return err
	}
	elapsed := time.Since(start)
	roundsTotal.WithLabelValues("ok").Inc()
	roundDuration.Observe(elapsed.Seconds())
	genomesEvaluated.Add(float64(len(pop)))
	e.log.Debugw("evaluation round complete", map[string]any{
		"genomes":  len(pop),
		"clients":  len(e.clients),
		"duration": elapsed.String(),
	})
	return nil
}

// checkCoverage requires every genome of pop in exactly one chunk and no
// chunk entry outside pop.
func checkCoverage(pop model.Population, chunks [][]*model.Genome) error {
	seen := make(map[int]int, len(pop))
	for i, chunk := range chunks {
		for _, g := range chunk {
			if cur, ok := pop[g.Key]; !ok || cur != g {
				return fmt.Errorf("chunk %d holds genome %d which is not in the population", i, g.Key)
			}
			if prev, dup := seen[g.Key]; dup {
				return fmt.Errorf("genome %d in chunks %d and %d", g.Key, prev, i)
			}
			seen[g.Key] = i
		}
	}
	if len(seen) != len(pop) {
		for _, key := range pop.SortedKeys() {
			if _, ok := seen[key]; !ok {
				return fmt.Errorf("genome %d not assigned to any chunk", key)
			}
		}
	}
	return nil
}

// Close drains and joins the pool exactly once.
func (e *ParallelEvaluator) Close(ctx context.Context) error {
	e.closeOnce.Do(func() {
		if _, ok := ctx.Deadline(); !ok && e.cfg.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, e.cfg.ShutdownTimeout)
			defer cancel()
		}
		e.closeErr = e.pool.Shutdown(ctx)
	})
	return e.closeErr
}

func (e *ParallelEvaluator) fail(msg string, err error) {
	out := outcome(err)
	roundsTotal.WithLabelValues(out).Inc()
	e.log.Errorf("%s: %v", msg, err)
	monitoring.CaptureException(err, map[string]string{"component": "evaluator", "outcome": out})
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrPartition):
		return "partition_error"
	case errors.Is(err, ErrEvaluationTimeout):
		return "timeout"
	case errors.Is(err, ErrWorkerFailure):
		return "worker_failure"
	case errors.Is(err, ErrMerge):
		return "merge_error"
	case errors.Is(err, ErrQueueFull):
		return "queue_full"
	default:
		return "error"
	}
}
