package observer

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PromMetricsRecorder exports compile/run observations as Prometheus
// metrics.
type PromMetricsRecorder struct {
	compiles        *prometheus.CounterVec
	runs            *prometheus.CounterVec
	compileDuration *prometheus.HistogramVec
	runDuration     *prometheus.HistogramVec
}

// NewPromMetricsRecorder registers the judge metrics on the given registerer.
func NewPromMetricsRecorder(reg prometheus.Registerer) *PromMetricsRecorder {
	r := &PromMetricsRecorder{
		compiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "judge",
			Name:      "compiles_total",
			Help:      "Compilations by language, success and cache state.",
		}, []string{"language", "ok", "cached"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "judge",
			Name:      "runs_total",
			Help:      "Test case executions by language and status.",
		}, []string{"language", "status"}),
		compileDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "judge",
			Name:      "compile_duration_ms",
			Help:      "Compilation wall time in milliseconds.",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 12),
		}, []string{"language"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "judge",
			Name:      "run_duration_ms",
			Help:      "Test case wall time in milliseconds.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
		}, []string{"language"}),
	}
	reg.MustRegister(r.compiles, r.runs, r.compileDuration, r.runDuration)
	return r
}

func (r *PromMetricsRecorder) ObserveCompile(_ context.Context, languageID string, ok bool, cached bool, timeMs int64) {
	r.compiles.WithLabelValues(languageID, strconv.FormatBool(ok), strconv.FormatBool(cached)).Inc()
	if !cached {
		r.compileDuration.WithLabelValues(languageID).Observe(float64(timeMs))
	}
}

func (r *PromMetricsRecorder) ObserveRun(_ context.Context, languageID string, status string, timeMs int64) {
	r.runs.WithLabelValues(languageID, status).Inc()
	r.runDuration.WithLabelValues(languageID).Observe(float64(timeMs))
}
