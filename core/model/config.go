package model

import "maps"

// RunConfig is the configuration shared by every evaluation job and observer
// hook. Jobs receive their own copy through Clone.
type RunConfig struct {
	RunID            string             `json:"run_id"`
	PopulationSize   int                `json:"population_size"`
	GenomeSize       int                `json:"genome_size"`
	Generations      int                `json:"generations"`
	FitnessThreshold float64            `json:"fitness_threshold"`
	Seed             int64              `json:"seed"`
	Params           map[string]float64 `json:"params"`
}

// Clone returns a deep copy.
func (c RunConfig) Clone() RunConfig {
	c.Params = maps.Clone(c.Params)
	return c
}
