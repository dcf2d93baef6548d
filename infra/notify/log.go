package notify

import (
	"context"

	"github.com/kilianp07/evopool/infra/logger"
)

// LogSink writes every report line to a logger.
type LogSink struct {
	logger logger.Logger
}

// NewLogSink returns a sink logging through l, or the "notify" component
// logger when l is nil.
func NewLogSink(l logger.Logger) *LogSink {
	if l == nil {
		l = logger.New("notify")
	}
	return &LogSink{logger: l}
}

func (s *LogSink) Report(_ context.Context, lines []string, artifact string) error {
	for _, line := range lines {
		s.logger.Infof("%s", line)
	}
	if artifact != "" {
		s.logger.Debugw("report artifact", map[string]any{"path": artifact})
	}
	return nil
}
