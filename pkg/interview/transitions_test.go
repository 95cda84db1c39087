package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		from, to Phase
		valid    bool
	}{
		{PhaseCore, PhaseCore, true},
		{PhaseCore, PhaseReview, true},
		{PhaseReview, PhaseComplete, true},
		{PhaseCore, PhaseComplete, false},
		{PhaseReview, PhaseCore, false},
		{PhaseReview, PhaseReview, false},
		{PhaseComplete, PhaseReview, false},
		{PhaseComplete, PhaseCore, false},
		{Phase("drafting"), PhaseCore, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidTransition(tt.from, tt.to))
		})
	}
}

func TestPhasesNeverRegress(t *testing.T) {
	order := map[Phase]int{}
	for i, p := range AllPhases() {
		order[p] = i
	}
	for _, from := range AllPhases() {
		for _, to := range ValidNextPhases(from) {
			assert.GreaterOrEqual(t, order[to], order[from], "%s -> %s", from, to)
		}
	}
	assert.Empty(t, ValidNextPhases(PhaseComplete))
	assert.False(t, IsValidPhase(PhaseNotStarted))
}

func TestQuestionsReturnsCopies(t *testing.T) {
	a := Questions()
	a[0].Text = "changed"
	a[0].Options[0].Label = "changed"

	b := Questions()
	assert.NotEqual(t, "changed", b[0].Text)
	assert.NotEqual(t, "changed", b[0].Options[0].Label)
	assert.Len(t, b, CoreTotal())
}
