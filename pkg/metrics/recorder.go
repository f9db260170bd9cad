// Package metrics provides Prometheus-based metrics recording for
// conversation truncation operations.
package metrics

import "time"

// Recorder defines the interface for recording truncation metrics.
type Recorder interface {
	// ObserveTruncation records one completed truncation pass.
	ObserveTruncation(model string, removedMessages, evictedTokens int, budgetMet bool, duration time.Duration)

	// IncOverBudget counts passes that ended above the token budget
	// because every remaining message was protected.
	IncOverBudget(model string)
}

// NoopRecorder implements Recorder with no-op behavior for when metrics are disabled.
type NoopRecorder struct{}

// Nop returns a no-op metrics recorder that discards all metrics.
func Nop() Recorder {
	return &NoopRecorder{}
}

// ObserveTruncation does nothing in the no-op recorder.
func (n *NoopRecorder) ObserveTruncation(_ string, _, _ int, _ bool, _ time.Duration) {}

// IncOverBudget does nothing in the no-op recorder.
func (n *NoopRecorder) IncOverBudget(_ string) {}
