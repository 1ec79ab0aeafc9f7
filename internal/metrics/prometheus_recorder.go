package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "staticgen"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	phaseDuration   *prom.HistogramVec
	passDuration    prom.Histogram
	passOutcomes    *prom.CounterVec
	pageResults     *prom.CounterVec
	operations      *prom.CounterVec
	pendingOpsGauge prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.phaseDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Duration of individual generation phases",
			Buckets:   prom.DefBuckets,
		}, []string{"phase"})
		pr.passDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Total generation pass duration, including outstanding writes",
			Buckets:   prom.DefBuckets,
		})
		pr.passOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pass_outcomes_total",
			Help:      "Generation passes by final status",
		}, []string{"outcome"})
		pr.pageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Pages processed by result",
		}, []string{"result"})
		pr.operations = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "output_operations_total",
			Help:      "Asynchronous write and copy operations by result",
		}, []string{"kind", "result"})
		pr.pendingOpsGauge = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_operations",
			Help:      "Write and copy operations currently outstanding",
		})
		reg.MustRegister(pr.phaseDuration, pr.passDuration, pr.passOutcomes, pr.pageResults, pr.operations, pr.pendingOpsGauge)
	})
	return pr
}

func (p *PrometheusRecorder) ObservePhaseDuration(phase string, d time.Duration) {
	if p == nil || p.phaseDuration == nil {
		return
	}
	p.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObservePassDuration(d time.Duration) {
	if p == nil || p.passDuration == nil {
		return
	}
	p.passDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPassOutcome(outcome OutcomeLabel) {
	if p == nil || p.passOutcomes == nil {
		return
	}
	p.passOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncPageResult(result ResultLabel) {
	if p == nil || p.pageResults == nil {
		return
	}
	p.pageResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncOperationResult(kind OperationKind, result ResultLabel) {
	if p == nil || p.operations == nil {
		return
	}
	p.operations.WithLabelValues(string(kind), string(result)).Inc()
}

func (p *PrometheusRecorder) SetPendingOperations(n int) {
	if p == nil || p.pendingOpsGauge == nil {
		return
	}
	p.pendingOpsGauge.Set(float64(n))
}
