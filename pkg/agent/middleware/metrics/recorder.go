// Package metrics records per-request metrics for LLM client operations.
package metrics

import "time"

// Recorder records LLM request metrics.
type Recorder interface {
	// ObserveRequest records a completed LLM request.
	ObserveRequest(
		model, sessionID string,
		promptTokens, completionTokens int,
		success bool,
		errorType string,
		duration time.Duration,
	)
}

// NoopRecorder discards all metrics.
type NoopRecorder struct{}

// Nop returns a no-op recorder.
func Nop() Recorder {
	return &NoopRecorder{}
}

// ObserveRequest does nothing.
func (n *NoopRecorder) ObserveRequest(_, _ string, _, _ int, _ bool, _ string, _ time.Duration) {}

// multiRecorder fans out to several recorders.
type multiRecorder []Recorder

// Multi combines recorders; each receives every observation.
func Multi(recorders ...Recorder) Recorder {
	return multiRecorder(recorders)
}

func (m multiRecorder) ObserveRequest(model, sessionID string, promptTokens, completionTokens int, success bool, errorType string, duration time.Duration) {
	for _, r := range m {
		r.ObserveRequest(model, sessionID, promptTokens, completionTokens, success, errorType, duration)
	}
}
