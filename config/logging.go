package config

import (
	"fmt"

	"github.com/kilianp07/evopool/core/factory"
)

// LoggingConfig defines where fitness logs are written.
type LoggingConfig struct {
	// Dir holds the plain text fitness logs of the default backend.
	Dir string `json:"dir"`
	// Backends lists the fitness log backends. Empty selects a file
	// backend writing into Dir.
	Backends []factory.ModuleConfig `json:"backends"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "."
	}
	if len(c.Backends) == 0 {
		c.Backends = []factory.ModuleConfig{{Type: "file", Conf: map[string]any{"dir": c.Dir}}}
	}
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	for i, b := range c.Backends {
		if b.Type == "" {
			return fmt.Errorf("backend %d: type is required", i)
		}
	}
	return nil
}
