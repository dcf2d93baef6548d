package config

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kilianp07/evopool/core/model"
)

// RunConfig describes one evolution run.
type RunConfig struct {
	RunID            string             `json:"run_id"`
	Generations      int                `json:"generations"`
	PopulationSize   int                `json:"population_size"`
	GenomeSize       int                `json:"genome_size"`
	FitnessThreshold float64            `json:"fitness_threshold"`
	Seed             int64              `json:"seed"`
	Params           map[string]float64 `json:"params"`
}

// SetDefaults applies sane defaults.
func (c *RunConfig) SetDefaults() {
	if c.RunID == "" {
		c.RunID = uuid.NewString()
	}
	if c.Generations <= 0 {
		c.Generations = 50
	}
	if c.PopulationSize <= 0 {
		c.PopulationSize = 100
	}
	if c.GenomeSize <= 0 {
		c.GenomeSize = 8
	}
}

// Validate checks mandatory fields.
func (c RunConfig) Validate() error {
	if c.Generations <= 0 || c.PopulationSize <= 0 || c.GenomeSize <= 0 {
		return fmt.Errorf("generations, population_size and genome_size must be positive")
	}
	return nil
}

// Model returns the configuration shared with evaluation jobs.
func (c RunConfig) Model() model.RunConfig {
	return model.RunConfig{
		RunID:            c.RunID,
		PopulationSize:   c.PopulationSize,
		GenomeSize:       c.GenomeSize,
		Generations:      c.Generations,
		FitnessThreshold: c.FitnessThreshold,
		Seed:             c.Seed,
		Params:           c.Params,
	}.Clone()
}
