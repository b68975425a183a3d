package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run outcomes used as the "outcome" label.
const (
	OutcomeOK         = "ok"
	OutcomeError      = "error"
	OutcomeSuperseded = "superseded"
)

// Recorder holds the tool run metrics on a private registry.
//
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	runs        *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// New creates a Recorder with its own registry. Go runtime and process
// collectors are registered alongside the tool metrics.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,

		// Labels: tool, outcome (ok, error, superseded)
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "symkt",
			Name:      "runs_total",
			Help:      "Tool invocations by outcome",
		}, []string{"tool", "outcome"}),

		diagnostics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "symkt",
			Name:      "diagnostics_total",
			Help:      "Diagnostics extracted from tool output",
		}, []string{"tool"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "symkt",
			Name:      "run_duration_seconds",
			Help:      "Wall time of tool invocations in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"tool"}),
	}
}

// RecordRun records one finished invocation.
func (r *Recorder) RecordRun(tool, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(tool, outcome).Inc()
	r.duration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// RecordDiagnostics adds n extracted diagnostics for tool.
func (r *Recorder) RecordDiagnostics(tool string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.diagnostics.WithLabelValues(tool).Add(float64(n))
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
