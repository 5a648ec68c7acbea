// Package observer defines logging and metrics hooks for judge execution.
package observer

import "context"

// MetricsRecorder records compile and run observations.
type MetricsRecorder interface {
	ObserveCompile(ctx context.Context, languageID string, ok bool, cached bool, timeMs int64)
	ObserveRun(ctx context.Context, languageID string, status string, timeMs int64)
}

// NoopMetricsRecorder discards all observations.
type NoopMetricsRecorder struct{}

func (NoopMetricsRecorder) ObserveCompile(context.Context, string, bool, bool, int64) {}

func (NoopMetricsRecorder) ObserveRun(context.Context, string, string, int64) {}
