package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/evopool/core/factory"
)

// ReportingConfig configures the statistics reporter and its outputs.
type ReportingConfig struct {
	ShowSpeciesDetail bool                   `json:"show_species_detail"`
	PlotDir           string                 `json:"plot_dir"`
	Sinks             []factory.ModuleConfig `json:"sinks"`
	// ReportTimeoutSeconds bounds each sink delivery.
	ReportTimeoutSeconds int `json:"report_timeout_seconds"`
	// EventBuffer is the capacity of the generation event bus.
	EventBuffer int `json:"event_buffer"`
}

// SetDefaults applies sane defaults.
func (c *ReportingConfig) SetDefaults() {
	if c.PlotDir == "" {
		c.PlotDir = "plots"
	}
	if c.ReportTimeoutSeconds <= 0 {
		c.ReportTimeoutSeconds = 5
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = 64
	}
}

// Validate checks mandatory fields.
func (c ReportingConfig) Validate() error {
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("sink %d: type is required", i)
		}
	}
	return nil
}

// ReportTimeout returns the per-report delivery bound.
func (c ReportingConfig) ReportTimeout() time.Duration {
	return time.Duration(c.ReportTimeoutSeconds) * time.Second
}
