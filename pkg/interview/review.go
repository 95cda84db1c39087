package interview

import "strings"

// PhaseNotStarted is reported by callers when no interview exists yet.
const PhaseNotStarted = "not_started"

// Progress summarizes how far an interview has gone.
type Progress struct {
	Phase              string `json:"phase"`
	TotalAnswered      int    `json:"total_answered"`
	CoreAnswered       int    `json:"core_answered"`
	CoreTotal          int    `json:"core_total"`
	EstimatedRemaining int    `json:"estimated_remaining"`
	IsComplete         bool   `json:"is_complete"`
}

// NotStartedProgress is the summary for a session without interview state.
func NotStartedProgress() Progress {
	return Progress{
		Phase:              PhaseNotStarted,
		CoreTotal:          CoreTotal(),
		EstimatedRemaining: CoreTotal(),
	}
}

// Progress computes the summary. A core question on screen but not yet
// answered is not counted, and follow-ups never count as core.
func (e *Engine) Progress(state State) Progress {
	total := CoreTotal()
	answered := total - len(state.CoreQuestionsRemaining)
	if state.Phase == PhaseCore && state.CurrentQuestion != nil && !state.CurrentQuestion.IsFollowUp() {
		answered--
	}
	if answered < 0 {
		answered = 0
	}

	totalAnswered := 0
	for i := range state.Answers {
		if state.Answers[i].QuestionID != ReviewNotesID {
			totalAnswered++
		}
	}

	remaining := 0
	if state.Phase == PhaseCore {
		remaining = total - answered
	}

	return Progress{
		Phase:              string(state.Phase),
		TotalAnswered:      totalAnswered,
		CoreAnswered:       answered,
		CoreTotal:          total,
		EstimatedRemaining: remaining,
		IsComplete:         state.IsFinished(),
	}
}

// Review is the read-only projection shown before confirmation.
type Review struct {
	Answers    []Answer          `json:"answers"`
	Enrichment map[string]string `json:"enrichment_data"`
	Confirmed  bool              `json:"confirmed"`
}

// GetReview returns the answers and enrichment for confirmation. Only allowed
// in review or complete.
func (e *Engine) GetReview(state State) (Review, error) {
	if !state.IsFinished() {
		return Review{}, &PhaseError{Op: "get_review", Phase: state.Phase}
	}
	c := state.Clone()
	return Review{
		Answers:    c.Answers,
		Enrichment: c.Enrichment,
		Confirmed:  state.Phase == PhaseComplete,
	}, nil
}

// ConfirmReview completes the interview. Non-blank notes are appended to the
// ledger under ReviewNotesID. Confirming twice is allowed.
func (e *Engine) ConfirmReview(state State, notes string) (State, error) {
	if !state.IsFinished() {
		return state, &PhaseError{Op: "confirm_review", Phase: state.Phase}
	}

	next := state.Clone()
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		next.Answers = append(next.Answers, Answer{
			QuestionID:   ReviewNotesID,
			Answer:       trimmed,
			Source:       SourceText,
			QuestionText: reviewNotesQuestion,
		})
	}
	if next.Phase != PhaseComplete {
		if err := e.transition(&next, PhaseComplete); err != nil {
			return state, err
		}
	}
	return next, nil
}
