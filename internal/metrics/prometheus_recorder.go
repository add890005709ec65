package metrics

import (
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	registry        *prom.Registry
	stageDuration   *prom.HistogramVec
	publishDuration prom.Histogram
	stageResults    *prom.CounterVec
	publishOutcome  *prom.CounterVec
	objectsSynced   *prom.CounterVec
	invalidations   *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sitepub",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual publish stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.publishDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitepub",
			Name:      "publish_duration_seconds",
			Help:      "Total publish duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitepub",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.publishOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitepub",
			Name:      "publish_outcomes_total",
			Help:      "Publish outcomes by final status",
		}, []string{"outcome"})
		pr.objectsSynced = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitepub",
			Name:      "objects_synced_total",
			Help:      "Objects touched during mirror sync by operation",
		}, []string{"op"})
		pr.invalidations = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitepub",
			Name:      "invalidations_total",
			Help:      "Cache invalidation attempts by result",
		}, []string{"result"})
		reg.MustRegister(pr.stageDuration, pr.publishDuration, pr.stageResults, pr.publishOutcome, pr.objectsSynced, pr.invalidations)
	})
	return pr
}

// Handler returns an http handler exposing the recorder's registry.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObservePublishDuration(d time.Duration) {
	if p == nil || p.publishDuration == nil {
		return
	}
	p.publishDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncPublishOutcome(outcome string) {
	if p == nil || p.publishOutcome == nil {
		return
	}
	p.publishOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) AddObjectsSynced(op string, n int) {
	if p == nil || p.objectsSynced == nil || n <= 0 {
		return
	}
	p.objectsSynced.WithLabelValues(op).Add(float64(n))
}

func (p *PrometheusRecorder) IncInvalidationResult(success bool) {
	if p == nil || p.invalidations == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	p.invalidations.WithLabelValues(result).Inc()
}
