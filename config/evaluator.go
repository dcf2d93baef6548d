package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/evopool/core/evaluator"
)

// EvaluatorConfig sizes the parallel evaluator.
type EvaluatorConfig struct {
	// Clients is the number of worker clients, one chunk each per round.
	Clients int `json:"clients"`
	// Workers is the pool size. Zero means one worker per client.
	Workers   int `json:"workers"`
	QueueSize int `json:"queue_size"`
	// TimeoutSeconds bounds a round. Zero waits indefinitely.
	TimeoutSeconds         int               `json:"timeout_seconds"`
	ShutdownTimeoutSeconds int               `json:"shutdown_timeout_seconds"`
	Settings               map[string]string `json:"settings"`
}

// SetDefaults applies sane defaults.
func (c *EvaluatorConfig) SetDefaults() {
	if c.Clients <= 0 {
		c.Clients = 2
	}
	if c.ShutdownTimeoutSeconds <= 0 {
		c.ShutdownTimeoutSeconds = 10
	}
}

// Validate checks the sizes are usable.
func (c EvaluatorConfig) Validate() error {
	if c.Clients <= 0 {
		return fmt.Errorf("clients must be positive")
	}
	if c.Workers < 0 || c.QueueSize < 0 || c.TimeoutSeconds < 0 {
		return fmt.Errorf("workers, queue_size and timeout_seconds must not be negative")
	}
	return nil
}

// EvaluatorOptions converts the section into evaluator settings.
func (c EvaluatorConfig) EvaluatorOptions() evaluator.Config {
	return evaluator.Config{
		Workers:         c.Workers,
		QueueSize:       c.QueueSize,
		Timeout:         time.Duration(c.TimeoutSeconds) * time.Second,
		ShutdownTimeout: time.Duration(c.ShutdownTimeoutSeconds) * time.Second,
	}
}

// ClientList builds one client description per configured client.
func (c EvaluatorConfig) ClientList() []evaluator.Client {
	out := make([]evaluator.Client, c.Clients)
	for i := range out {
		out[i] = evaluator.Client{ID: i, Name: fmt.Sprintf("client-%d", i)}
	}
	return out
}
