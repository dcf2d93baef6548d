package evaluator

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrPoolClosed is returned when submitting to a pool after Shutdown.
	ErrPoolClosed = errors.New("evaluator: pool closed")
	// ErrPoolDraining is returned when submitting while a round is draining.
	ErrPoolDraining = errors.New("evaluator: pool draining")
	// ErrQueueFull is returned when the bounded job queue cannot take the
	// job, or every job of a round.
	ErrQueueFull = errors.New("evaluator: job queue full")
	// ErrForcedShutdown is returned when workers could not be joined before
	// the shutdown context expired.
	ErrForcedShutdown = errors.New("evaluator: forced shutdown")

	// ErrPartition matches every *PartitionError.
	ErrPartition = errors.New("evaluator: partition error")
	// ErrEvaluationTimeout matches every *EvaluationTimeout.
	ErrEvaluationTimeout = errors.New("evaluator: evaluation timeout")
	// ErrWorkerFailure matches every *WorkerFailure.
	ErrWorkerFailure = errors.New("evaluator: worker failure")
	// ErrMerge matches every *MergeError.
	ErrMerge = errors.New("evaluator: merge error")
)

// PartitionError reports a chunk/client mismatch detected before dispatch.
type PartitionError struct {
	Chunks  int
	Clients int
	Err     error
}

func (e *PartitionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("partition: %v", e.Err)
	}
	return fmt.Sprintf("partition: %d chunks for %d clients", e.Chunks, e.Clients)
}

func (e *PartitionError) Unwrap() error { return e.Err }

func (e *PartitionError) Is(target error) bool { return target == ErrPartition }

// EvaluationTimeout lists the jobs that had not completed when the round
// deadline expired.
type EvaluationTimeout struct {
	Jobs    []int
	Timeout time.Duration
}

func (e *EvaluationTimeout) Error() string {
	return fmt.Sprintf("evaluation timed out after %s, unfinished jobs %v", e.Timeout, e.Jobs)
}

func (e *EvaluationTimeout) Is(target error) bool { return target == ErrEvaluationTimeout }

// WorkerFailure wraps the error raised by the evaluation function.
type WorkerFailure struct {
	Job      int
	ClientID int
	Err      error
}

func (e *WorkerFailure) Error() string {
	return fmt.Sprintf("job %d on client %d failed: %v", e.Job, e.ClientID, e.Err)
}

func (e *WorkerFailure) Unwrap() error { return e.Err }

func (e *WorkerFailure) Is(target error) bool { return target == ErrWorkerFailure }

// MergeReason classifies a MergeError.
type MergeReason string

const (
	MergeUnknownKey MergeReason = "unknown genome"
	MergeDuplicate  MergeReason = "duplicate fitness"
	MergeMissing    MergeReason = "missing fitness"
)

// MergeError reports a result that cannot be committed onto the population.
type MergeError struct {
	Key    int
	Job    int
	Reason MergeReason
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge: %s for key %d (job %d)", e.Reason, e.Key, e.Job)
}

func (e *MergeError) Is(target error) bool { return target == ErrMerge }
