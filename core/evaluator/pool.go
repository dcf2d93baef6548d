package evaluator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/kilianp07/evopool/core/logger"
	"github.com/kilianp07/evopool/core/model"
	"github.com/kilianp07/evopool/core/monitoring"
)

type task struct {
	ctx     context.Context
	job     Job
	pending *Pending
}

// Pool runs evaluation jobs on a fixed number of worker goroutines fed by a
// bounded queue. It is built once and reused across rounds until Shutdown.
type Pool struct {
	fn     EvalFunc
	log    logger.Logger
	size   int
	jobs   chan task
	wg     sync.WaitGroup
	base   context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	draining bool

	roundMu sync.Mutex
}

// NewPool starts size workers reading from a queue holding queueSize jobs.
func NewPool(size, queueSize int, fn EvalFunc, log logger.Logger) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("evaluator: pool size must be at least 1, got %d", size)
	}
	if fn == nil {
		return nil, fmt.Errorf("evaluator: nil evaluation function")
	}
	if queueSize < size {
		queueSize = size
	}
	base, cancel := context.WithCancel(context.Background())
	p := &Pool{
		fn:     fn,
		log:    log,
		size:   size,
		jobs:   make(chan task, queueSize),
		base:   base,
		cancel: cancel,
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker(i)
	}
	return p, nil
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Submit schedules the job without blocking.
func (p *Pool) Submit(job Job) (*Pending, error) {
	return p.submit(p.base, job)
}

func (p *Pool) submit(ctx context.Context, job Job) (*Pending, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPoolClosed
	}
	if p.draining {
		return nil, ErrPoolDraining
	}
	pd := newPending(job.ID)
	select {
	case p.jobs <- task{ctx: ctx, job: job, pending: pd}:
		queueDepth.Set(float64(len(p.jobs)))
		return pd, nil
	default:
		return nil, ErrQueueFull
	}
}

// submitRound queues every job or none. Jobs left behind by a timed-out
// round still hold workers and queue slots when the evaluation function
// ignores cancellation; the round then fails with ErrQueueFull without
// dispatching anything.
func (p *Pool) submitRound(ctx context.Context, jobs []Job) ([]*Pending, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPoolClosed
	}
	if free := cap(p.jobs) - len(p.jobs); free < len(jobs) {
		return nil, fmt.Errorf("submit %d jobs with %d free slots: %w", len(jobs), free, ErrQueueFull)
	}
	pending := make([]*Pending, len(jobs))
	for i, job := range jobs {
		pending[i] = newPending(job.ID)
		// cannot block: only workers receive, and they only free slots
		p.jobs <- task{ctx: ctx, job: job, pending: pending[i]}
	}
	queueDepth.Set(float64(len(p.jobs)))
	return pending, nil
}

func (p *Pool) setDraining(v bool) {
	p.mu.Lock()
	p.draining = v
	p.mu.Unlock()
}

// EvaluateRound submits one job per (clients[i], chunks[i]) pair, then drains
// the pool and waits for every job through Collect. A chunk/client count
// mismatch fails before anything is submitted.
func (p *Pool) EvaluateRound(ctx context.Context, chunks [][]*model.Genome, clients []Client, settings Settings, cfg model.RunConfig, timeout time.Duration) ([]Result, error) {
	if len(chunks) != len(clients) {
		return nil, &PartitionError{Chunks: len(chunks), Clients: len(clients)}
	}
	p.roundMu.Lock()
	defer p.roundMu.Unlock()

	roundCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(p.base, cancel)
	defer stop()

	jobs := make([]Job, len(chunks))
	for i, chunk := range chunks {
		jobs[i] = NewJob(i, clients[i], settings, chunk, cfg)
	}
	pending, err := p.submitRound(roundCtx, jobs)
	if err != nil {
		return nil, err
	}
	p.setDraining(true)
	defer p.setDraining(false)
	p.log.Debugf("round submitted %d jobs", len(pending))
	return Collect(roundCtx, pending, timeout)
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for t := range p.jobs {
		queueDepth.Set(float64(len(p.jobs)))
		res := p.run(t)
		if res.Err != nil {
			p.log.Warnf("worker %d: job %d failed: %v", id, t.job.ID, res.Err)
		}
		jobDuration.Observe(res.Duration.Seconds())
		t.pending.complete(res)
	}
}

func (p *Pool) run(t task) (res Result) {
	start := time.Now()
	res = Result{JobID: t.job.ID, ClientID: t.job.Client.ID}
	defer func() {
		if r := recover(); r != nil {
			res.Fitness = nil
			res.Err = fmt.Errorf("panic: %v", r)
			monitoring.CapturePanic(r, map[string]string{
				"component": "evaluator",
				"client":    strconv.Itoa(t.job.Client.ID),
			})
		}
		res.Duration = time.Since(start)
	}()
	if err := t.ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	res.Fitness, res.Err = p.fn(t.ctx, t.job.Client, t.job.Settings, t.job.Chunk, t.job.Config)
	return res
}

// Shutdown stops accepting jobs and joins the workers once the queue is
// drained. When ctx expires first the workers' context is cancelled and
// ErrForcedShutdown is returned; jobs ignoring cancellation keep running in
// the background. Calling Shutdown more than once is a no-op.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	joined := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(joined)
	}()
	select {
	case <-joined:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		p.log.Warnf("pool join timed out, cancelling in-flight jobs")
		return errors.Join(ErrForcedShutdown, ctx.Err())
	}
}
