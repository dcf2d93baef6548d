package logger

import (
	"os"
	"strings"

	corelogger "github.com/kilianp07/evopool/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger discards everything.
type NopLogger = corelogger.NopLogger

// New returns a Logger for the given component. LOG_BACKEND selects zerolog
// (default) or logrus, APP_ENV the zerolog output format and LOG_LEVEL the
// minimum level.
func New(component string) Logger {
	if strings.ToLower(os.Getenv("LOG_BACKEND")) == "logrus" {
		return NewLogrusLogger(component)
	}
	return NewZerologLogger(component)
}
