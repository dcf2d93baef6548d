package fitnesslog

import (
	"github.com/kilianp07/evopool/core/factory"
	core "github.com/kilianp07/evopool/core/fitnesslog"
)

// init registers the built-in fitness log backends.
func init() {
	_ = core.RegisterBackend("nop", func(map[string]any) (core.Writer, error) {
		return core.NopWriter{}, nil
	})

	_ = core.RegisterBackend("file", func(conf map[string]any) (core.Writer, error) {
		var c struct {
			Dir string `json:"dir"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewFileWriter(c.Dir)
	})

	_ = core.RegisterBackend("sqlite", func(conf map[string]any) (core.Writer, error) {
		c := struct {
			Path string `json:"path"`
		}{Path: "fitness.db"}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewSQLiteWriter(c.Path)
	})

	_ = core.RegisterBackend("jsonl", func(conf map[string]any) (core.Writer, error) {
		c := struct {
			Path       string `json:"path"`
			MaxSizeMB  int    `json:"max_size_mb"`
			MaxBackups int    `json:"max_backups"`
			MaxAgeDays int    `json:"max_age_days"`
		}{Path: "fitness.jsonl", MaxSizeMB: 10, MaxBackups: 5, MaxAgeDays: 30}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewRotatingJSONLWriter(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	})
}
