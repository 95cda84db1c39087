package interview

// Recorder receives interview events. pkg/metrics provides a Prometheus
// implementation.
type Recorder interface {
	EvaluationOutcome(outcome string)
	FollowUpIssued(origin string)
	PhaseTransition(from, to string)
}

type nopRecorder struct{}

func (nopRecorder) EvaluationOutcome(string) {}
func (nopRecorder) FollowUpIssued(string) {}
func (nopRecorder) PhaseTransition(string, string) {}

// NopRecorder returns a Recorder that drops every event.
func NopRecorder() Recorder { return nopRecorder{} }
