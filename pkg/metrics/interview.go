package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// InterviewRecorder counts interview events in Prometheus. It satisfies
// interview.Recorder.
type InterviewRecorder struct {
	evaluations *prometheus.CounterVec
	followUps   *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewInterviewRecorder registers the interview collectors on reg.
func NewInterviewRecorder(reg prometheus.Registerer) *InterviewRecorder {
	factory := promauto.With(reg)
	return &InterviewRecorder{
		evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interview_evaluations_total",
				Help: "Adaptive follow-up evaluations by outcome",
			},
			[]string{"outcome"},
		),
		followUps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interview_follow_ups_total",
				Help: "Follow-up questions issued by origin",
			},
			[]string{"origin"},
		),
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interview_phase_transitions_total",
				Help: "Interview phase transitions",
			},
			[]string{"from", "to"},
		),
	}
}

// EvaluationOutcome counts one evaluator verdict.
func (r *InterviewRecorder) EvaluationOutcome(outcome string) {
	r.evaluations.WithLabelValues(outcome).Inc()
}

// FollowUpIssued counts one follow-up question.
func (r *InterviewRecorder) FollowUpIssued(origin string) {
	r.followUps.WithLabelValues(origin).Inc()
}

// PhaseTransition counts one phase change.
func (r *InterviewRecorder) PhaseTransition(from, to string) {
	r.transitions.WithLabelValues(from, to).Inc()
}
