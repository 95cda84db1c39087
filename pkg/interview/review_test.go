package interview

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress(t *testing.T) {
	eng := NewEngine(nil)
	st := eng.Create(nil)

	p := eng.Progress(st)
	assert.Equal(t, Progress{Phase: "core", CoreTotal: 7, EstimatedRemaining: 7}, p)

	// Follow-up on screen: the parent counts, the follow-up does not.
	_, st = submit(t, eng, st, "sim")
	p = eng.Progress(st)
	assert.Equal(t, 1, p.CoreAnswered)
	assert.Equal(t, 1, p.TotalAnswered)
	assert.Equal(t, 6, p.EstimatedRemaining)

	_, st = submit(t, eng, st, "1% ao mês")
	p = eng.Progress(st)
	assert.Equal(t, 1, p.CoreAnswered)
	assert.Equal(t, 2, p.TotalAnswered)
	assert.False(t, p.IsComplete)

	st = skipTo(t, st, "core_7")
	_, st = submit(t, eng, st, "Sofia")
	p = eng.Progress(st)
	assert.Equal(t, Progress{Phase: "review", TotalAnswered: 8, CoreAnswered: 7, CoreTotal: 7, IsComplete: true}, p)

	st, err := eng.ConfirmReview(st, "aceitamos boleto")
	require.NoError(t, err)
	p = eng.Progress(st)
	assert.Equal(t, "complete", p.Phase)
	assert.Equal(t, 8, p.TotalAnswered, "review notes are not an answer")
	assert.True(t, p.IsComplete)
}

func TestNotStartedProgress(t *testing.T) {
	p := NotStartedProgress()
	assert.Equal(t, PhaseNotStarted, p.Phase)
	assert.Zero(t, p.TotalAnswered)
	assert.Zero(t, p.CoreAnswered)
	assert.Equal(t, CoreTotal(), p.EstimatedRemaining)
	assert.False(t, p.IsComplete)
}

func reviewState(t *testing.T) State {
	t.Helper()
	eng := NewEngine(nil)
	st := skipTo(t, eng.Create(map[string]string{"company_name": "Acme"}), "core_7")
	_, st = submit(t, eng, st, "Sofia")
	require.Equal(t, PhaseReview, st.Phase)
	return st
}

func TestGetReview(t *testing.T) {
	eng := NewEngine(nil)

	_, err := eng.GetReview(eng.Create(nil))
	require.ErrorIs(t, err, ErrInvalidPhase)
	var phaseErr *PhaseError
	require.True(t, errors.As(err, &phaseErr))
	assert.Equal(t, "get_review", phaseErr.Op)
	assert.Equal(t, PhaseCore, phaseErr.Phase)

	st := reviewState(t)
	review, err := eng.GetReview(st)
	require.NoError(t, err)
	assert.False(t, review.Confirmed)
	assert.Len(t, review.Answers, 7)
	assert.Equal(t, "Acme", review.Enrichment["company_name"])

	// The projection is a copy.
	review.Answers[0].Answer = "changed"
	assert.NotEqual(t, "changed", st.Answers[0].Answer)

	st, err = eng.ConfirmReview(st, "")
	require.NoError(t, err)
	review, err = eng.GetReview(st)
	require.NoError(t, err)
	assert.True(t, review.Confirmed)
}

func TestConfirmReview(t *testing.T) {
	eng := NewEngine(nil)

	t.Run("rejected in core", func(t *testing.T) {
		st := eng.Create(nil)
		after, err := eng.ConfirmReview(st, "notas")
		require.ErrorIs(t, err, ErrInvalidPhase)
		assert.Equal(t, PhaseCore, after.Phase)
		assert.Empty(t, after.Answers)
	})

	t.Run("blank notes are dropped", func(t *testing.T) {
		st := reviewState(t)
		done, err := eng.ConfirmReview(st, "   ")
		require.NoError(t, err)
		assert.Equal(t, PhaseComplete, done.Phase)
		assert.Len(t, done.Answers, len(st.Answers))
	})

	t.Run("notes are trimmed", func(t *testing.T) {
		done, err := eng.ConfirmReview(reviewState(t), "  aceitamos cheque \n")
		require.NoError(t, err)
		last := done.Answers[len(done.Answers)-1]
		assert.Equal(t, ReviewNotesID, last.QuestionID)
		assert.Equal(t, "aceitamos cheque", last.Answer)
		assert.Equal(t, SourceText, last.Source)
	})

	t.Run("re-confirmation is allowed", func(t *testing.T) {
		done, err := eng.ConfirmReview(reviewState(t), "")
		require.NoError(t, err)
		again, err := eng.ConfirmReview(done, "mais uma coisa")
		require.NoError(t, err)
		assert.Equal(t, PhaseComplete, again.Phase)
		assert.Len(t, again.Answers, len(done.Answers)+1)
	})
}
