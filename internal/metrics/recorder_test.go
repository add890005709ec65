package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorderCounters(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.IncStageResult("sync", ResultSuccess)
	r.IncStageResult("sync", ResultSuccess)
	r.IncStageResult("invalidate", ResultWarning)
	r.IncPublishOutcome("success")
	r.AddObjectsSynced("created", 3)
	r.AddObjectsSynced("deleted", 1)
	r.AddObjectsSynced("created", 0) // no-op
	r.IncInvalidationResult(false)
	r.ObserveStageDuration("render", 120*time.Millisecond)
	r.ObservePublishDuration(time.Second)

	if got := testutil.ToFloat64(r.stageResults.WithLabelValues("sync", "success")); got != 2 {
		t.Fatalf("sync success count = %v", got)
	}
	if got := testutil.ToFloat64(r.objectsSynced.WithLabelValues("created")); got != 3 {
		t.Fatalf("created count = %v", got)
	}
	if got := testutil.ToFloat64(r.invalidations.WithLabelValues("failure")); got != 1 {
		t.Fatalf("invalidation failure count = %v", got)
	}
}

func TestNilRecorderSafe(t *testing.T) {
	var r *PrometheusRecorder
	// Must not panic on a nil receiver; callers inject optionally.
	r.IncStageResult("sync", ResultFatal)
	r.ObservePublishDuration(time.Second)
	r.AddObjectsSynced("updated", 1)
	r.IncInvalidationResult(true)
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NoopRecorder{}
	rec.ObserveStageDuration("render", time.Millisecond)
	rec.IncPublishOutcome("failed")
}
