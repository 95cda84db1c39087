package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInterviewRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewInterviewRecorder(reg)

	rec.EvaluationOutcome("follow_up")
	rec.EvaluationOutcome("follow_up")
	rec.EvaluationOutcome("skipped_frustration")
	rec.FollowUpIssued("policy")
	rec.PhaseTransition("core", "review")
	rec.PhaseTransition("review", "complete")

	assert.InDelta(t, 2, testutil.ToFloat64(rec.evaluations.WithLabelValues("follow_up")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.evaluations.WithLabelValues("skipped_frustration")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.followUps.WithLabelValues("policy")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(rec.followUps.WithLabelValues("adaptive")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.transitions.WithLabelValues("core", "review")), 0)

	count, err := testutil.GatherAndCount(reg, "interview_phase_transitions_total")
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestInterviewRecorderRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewInterviewRecorder(reg)

	assert.Panics(t, func() { NewInterviewRecorder(reg) })
}
