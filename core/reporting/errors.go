package reporting

import (
	"errors"
	"fmt"
)

var (
	// ErrNotRegistered is returned by Remove for an unknown reporter.
	ErrNotRegistered = errors.New("reporter not registered")
	// ErrNoFitness is returned when statistics are requested for a
	// population without any evaluated genome.
	ErrNoFitness = errors.New("no evaluated genome in population")
)

// ObserverFailure wraps the error returned by a reporter hook. Delivery of
// the event stopped at Index.
type ObserverFailure struct {
	Hook  string
	Index int
	Err   error
}

func (e *ObserverFailure) Error() string {
	return fmt.Sprintf("reporter %d failed in %s: %v", e.Index, e.Hook, e.Err)
}

func (e *ObserverFailure) Unwrap() error { return e.Err }
