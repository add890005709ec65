package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitepub/internal/logfields"
	"git.home.luguber.info/inful/sitepub/internal/metrics"
)

// Stage is a discrete unit of work in a publish run.
type Stage func(ctx context.Context, ps *publishState) error

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Publish must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying classification and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}
func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}
func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// stageDef pairs a stage name with its executing function.
type stageDef struct {
	name StageName
	fn   Stage
}

// runStages executes stages in order, recording timing and classification,
// stopping on the first fatal or canceled error. Warnings are recorded and
// execution continues.
func runStages(ctx context.Context, ps *publishState, stages []stageDef) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(st.name, ctx.Err())
			ps.Report.recordStage(st.name, 0, se, ps.Recorder)
			return se
		default:
		}

		slog.Info("Stage starting", logfields.RunID(ps.Report.RunID), logfields.Stage(string(st.name)))
		t0 := time.Now()
		err := st.fn(ctx, ps)
		dur := time.Since(t0)

		var se *StageError
		if err != nil && !errors.As(err, &se) {
			// Wrap unknown errors as fatal by default.
			se = newFatalStageError(st.name, err)
		}
		ps.Report.recordStage(st.name, dur, se, ps.Recorder)

		switch {
		case se == nil:
			slog.Info("Stage completed", logfields.RunID(ps.Report.RunID), logfields.Stage(string(st.name)), logfields.DurationMS(float64(dur.Milliseconds())))
		case se.Kind == StageErrorWarning:
			slog.Warn("Stage completed with warning", logfields.RunID(ps.Report.RunID), logfields.Stage(string(st.name)), logfields.Error(se.Err))
			continue
		default:
			slog.Error("Stage failed", logfields.RunID(ps.Report.RunID), logfields.Stage(string(st.name)), logfields.Error(se.Err))
			return se
		}
	}
	return nil
}

// recordStage updates the report and emits metrics for one stage outcome.
func (r *PublishReport) recordStage(stage StageName, dur time.Duration, se *StageError, recorder metrics.Recorder) {
	r.StageDurations[stage] = dur
	if recorder != nil {
		recorder.ObserveStageDuration(string(stage), dur)
	}

	result := metrics.ResultSuccess
	if se != nil {
		switch se.Kind {
		case StageErrorWarning:
			result = metrics.ResultWarning
			r.Warnings = append(r.Warnings, se)
		case StageErrorCanceled:
			result = metrics.ResultCanceled
			r.Errors = append(r.Errors, se)
		default:
			result = metrics.ResultFatal
			r.Errors = append(r.Errors, se)
		}
	}
	r.StageResults[stage] = result
	if recorder != nil {
		recorder.IncStageResult(string(stage), result)
	}
}
