// Package metrics defines observability hooks for the publish pipeline.
package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for publish and stage metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. The
// NoopRecorder allows optional injection.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObservePublishDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncPublishOutcome(outcome string) // outcome: success|warning|failed|canceled
	AddObjectsSynced(op string, n int) // op: created|updated|deleted|unchanged
	IncInvalidationResult(success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObservePublishDuration(time.Duration)       {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncPublishOutcome(string)                   {}
func (NoopRecorder) AddObjectsSynced(string, int)               {}
func (NoopRecorder) IncInvalidationResult(bool)                 {}
