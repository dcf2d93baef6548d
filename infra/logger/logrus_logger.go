package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogrusLogger implements Logger on top of sirupsen/logrus. It is selected
// with LOG_BACKEND=logrus for deployments whose log shipping expects the
// logrus JSON layout.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger writes JSON lines to stdout at the LOG_LEVEL level.
func NewLogrusLogger(component string) Logger {
	return NewLogrusLoggerWithWriter(component, os.Stdout, parseLogrusLevel(os.Getenv("LOG_LEVEL")))
}

// NewLogrusLoggerWithWriter creates a logger writing JSON lines to w.
func NewLogrusLoggerWithWriter(component string, w io.Writer, level logrus.Level) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(level)
	return &LogrusLogger{entry: l.WithField("component", component)}
}

func parseLogrusLevel(s string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.ToLower(s))
	if s == "" || err != nil {
		return logrus.DebugLevel
	}
	return lvl
}

func (l *LogrusLogger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }

func (l *LogrusLogger) Debugw(msg string, fields map[string]any) {
	l.entry.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (l *LogrusLogger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *LogrusLogger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *LogrusLogger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }
