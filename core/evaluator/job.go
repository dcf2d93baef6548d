package evaluator

import (
	"context"
	"maps"
	"time"

	"github.com/kilianp07/evopool/core/model"
)

// Client is the handle of a worker resource. It is passed by value to every
// job so workers never share it.
type Client struct {
	ID     int               `json:"id"`
	Name   string            `json:"name"`
	Addr   string            `json:"addr"`
	Labels map[string]string `json:"labels"`
}

// Clone returns a deep copy of the client.
func (c Client) Clone() Client {
	c.Labels = maps.Clone(c.Labels)
	return c
}

// Settings are shared evaluation settings copied into each job.
type Settings map[string]string

// Clone returns a copy of the settings.
func (s Settings) Clone() Settings { return maps.Clone(s) }

// FitnessResult tags a fitness value with the genome it belongs to.
type FitnessResult struct {
	Key     int     `json:"key"`
	Fitness float64 `json:"fitness"`
}

// EvalFunc evaluates one chunk on one client. It must return one result per
// input genome, in any order.
type EvalFunc func(ctx context.Context, client Client, settings Settings, chunk []model.GenomeSnapshot, cfg model.RunConfig) ([]FitnessResult, error)

// Job is one unit of dispatched work. Every field is a private copy.
type Job struct {
	ID       int
	Client   Client
	Settings Settings
	Chunk    []model.GenomeSnapshot
	Config   model.RunConfig
}

// NewJob builds a job from the round inputs, copying each of them.
func NewJob(id int, client Client, settings Settings, chunk []*model.Genome, cfg model.RunConfig) Job {
	snaps := make([]model.GenomeSnapshot, len(chunk))
	for i, g := range chunk {
		snaps[i] = g.Snapshot()
	}
	return Job{
		ID:       id,
		Client:   client.Clone(),
		Settings: settings.Clone(),
		Chunk:    snaps,
		Config:   cfg.Clone(),
	}
}

// Result is the outcome of one job.
type Result struct {
	JobID    int
	ClientID int
	Fitness  []FitnessResult
	Err      error
	Duration time.Duration
}

// Pending is the handle returned by Submit. It completes exactly once.
type Pending struct {
	job  int
	done chan struct{}
	res  Result
}

func newPending(job int) *Pending {
	return &Pending{job: job, done: make(chan struct{})}
}

func (p *Pending) complete(r Result) {
	p.res = r
	close(p.done)
}

// JobID returns the id of the submitted job.
func (p *Pending) JobID() int { return p.job }

// Done is closed once the job finished.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the job completes or ctx is done.
func (p *Pending) Wait(ctx context.Context) (Result, error) {
	select {
	case <-p.done:
		return p.res, nil
	case <-ctx.Done():
		return Result{JobID: p.job}, ctx.Err()
	}
}

func (p *Pending) finished() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}
