package notify

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/evopool/core/factory"
	corenotify "github.com/kilianp07/evopool/core/notify"
)

// MultiSink delivers each report to several sinks concurrently.
type MultiSink struct {
	sinks []corenotify.Sink
}

// NewMultiSink creates a MultiSink from the given sinks.
func NewMultiSink(sinks ...corenotify.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Report waits for every sink and returns the first error.
func (m *MultiSink) Report(ctx context.Context, lines []string, artifact string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range m.sinks {
		g.Go(func() error {
			return s.Report(gctx, lines, artifact)
		})
	}
	return g.Wait()
}

// Close closes every sink that holds a connection.
func (m *MultiSink) Close() error {
	var first error
	for _, s := range m.sinks {
		c, ok := s.(interface{ Close() error })
		if !ok {
			continue
		}
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Build creates the configured sinks and combines them. No configuration
// yields a NopSink.
func Build(cfgs []factory.ModuleConfig) (corenotify.Sink, error) {
	sinks, err := corenotify.NewSinks(cfgs)
	if err != nil {
		return nil, err
	}
	switch len(sinks) {
	case 0:
		return corenotify.NopSink{}, nil
	case 1:
		return sinks[0], nil
	}
	return NewMultiSink(sinks...), nil
}
