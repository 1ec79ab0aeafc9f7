package metrics

import "time"

// ResultLabel enumerates per-operation result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultWarning ResultLabel = "warning"
	ResultFailed  ResultLabel = "failed"
)

// OutcomeLabel enumerates final pass outcomes.
type OutcomeLabel string

const (
	OutcomeSuccess    OutcomeLabel = "success"
	OutcomeWarning    OutcomeLabel = "warning"
	OutcomeFailed     OutcomeLabel = "failed"
	OutcomeSuperseded OutcomeLabel = "superseded"
)

// OperationKind distinguishes asynchronous output operations.
type OperationKind string

const (
	OperationWrite OperationKind = "write"
	OperationCopy  OperationKind = "copy"
)

// Recorder defines observability hooks for generation passes. Implementations
// must be safe for concurrent use.
type Recorder interface {
	ObservePhaseDuration(phase string, d time.Duration)
	ObservePassDuration(d time.Duration)
	IncPassOutcome(outcome OutcomeLabel)
	IncPageResult(result ResultLabel)
	IncOperationResult(kind OperationKind, result ResultLabel)
	SetPendingOperations(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePhaseDuration(string, time.Duration)    {}
func (NoopRecorder) ObservePassDuration(time.Duration)             {}
func (NoopRecorder) IncPassOutcome(OutcomeLabel)                   {}
func (NoopRecorder) IncPageResult(ResultLabel)                     {}
func (NoopRecorder) IncOperationResult(OperationKind, ResultLabel) {}
func (NoopRecorder) SetPendingOperations(int)                      {}
