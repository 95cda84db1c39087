package interview

import (
	"context"
	"fmt"
	"strings"

	"onboarding/pkg/logx"
)

// MaxFollowUpsCap is the hard limit on follow-ups per core question.
const MaxFollowUpsCap = 1

const reviewNotesQuestion = "Observações adicionais"

// Engine runs interview operations over State values. It holds no per-session
// data and is safe for concurrent use.
type Engine struct {
	evaluator    Evaluator
	recorder     Recorder
	logger       *logx.Logger
	maxFollowUps int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMaxFollowUps sets the follow-up cap, clamped to [0, MaxFollowUpsCap].
// Zero disables all follow-ups.
func WithMaxFollowUps(n int) EngineOption {
	return func(e *Engine) {
		switch {
		case n < 0:
			n = 0
		case n > MaxFollowUpsCap:
			n = MaxFollowUpsCap
		}
		e.maxFollowUps = n
	}
}

// WithRecorder reports follow-ups and phase transitions to r.
func WithRecorder(r Recorder) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithLogger overrides the engine logger.
func WithLogger(l *logx.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine. A nil evaluator disables adaptive follow-ups.
func NewEngine(evaluator Evaluator, opts ...EngineOption) *Engine {
	if evaluator == nil {
		evaluator = NewLLMEvaluator(nil)
	}
	e := &Engine{
		evaluator:    evaluator,
		recorder:     NopRecorder(),
		logger:       logx.NewLogger("interview"),
		maxFollowUps: MaxFollowUpsCap,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Create builds a fresh interview showing the first catalog question.
func (e *Engine) Create(enrichment map[string]string) State {
	st := State{
		Enrichment:             make(map[string]string, len(enrichment)),
		CoreQuestionsRemaining: Questions(),
		Answers:                []Answer{},
		Phase:                  PhaseCore,
	}
	for k, v := range enrichment {
		st.Enrichment[k] = v
	}
	st = e.popNext(st)
	e.logger.Info("Interview created with %d core questions (%d enrichment fields)", CoreTotal(), len(st.Enrichment))
	return st
}

// Advance pops the next core question, or moves to review when none remain.
// It returns nil once the question phase is over.
func (e *Engine) Advance(state State) (*Question, State, error) {
	if state.IsFinished() {
		return nil, state, nil
	}
	if state.Phase != PhaseCore {
		return nil, state, &PhaseError{Op: "advance", Phase: state.Phase}
	}

	next := state.Clone()
	next.NeedsFollowUp = false
	next.FollowUpQuestion = nil
	next.FollowUpCount = 0

	if len(next.CoreQuestionsRemaining) == 0 {
		next.CurrentQuestion = nil
		if err := e.transition(&next, PhaseReview); err != nil {
			return nil, state, err
		}
		return nil, next, nil
	}

	next = e.popNext(next)
	return cloneQuestionPtr(next.CurrentQuestion), next, nil
}

// popNext sets the head of the remaining list as current. st must be owned
// by the caller.
func (e *Engine) popNext(st State) State {
	q := applyPreFill(st.CoreQuestionsRemaining[0], st.Enrichment)
	st.CoreQuestionsRemaining = st.CoreQuestionsRemaining[1:]
	st.CurrentQuestion = &q
	if q.PreFilledValue != "" {
		e.logger.Debug("Question %s pre-filled from enrichment", q.ID)
	}
	return st
}

// GetCurrentOrAdvance returns the current question, advancing only when none is
// shown. Calling it twice returns the same question.
func (e *Engine) GetCurrentOrAdvance(state State) (*Question, State, error) {
	if state.IsFinished() {
		return nil, state, nil
	}
	if state.CurrentQuestion != nil {
		return cloneQuestionPtr(state.CurrentQuestion), state, nil
	}
	return e.Advance(state)
}

// SubmitAnswer records the answer to the current question and returns the next
// question: a follow-up, the next core question, or nil when review begins.
//
// Evaluator failures never surface here. If ctx is cancelled during the
// evaluation, ctx.Err() is returned with the input state unchanged.
func (e *Engine) SubmitAnswer(ctx context.Context, state State, questionID, answer string, source Source) (*Question, State, error) {
	if state.IsFinished() {
		return nil, state, &PhaseError{Op: "submit_answer", Phase: state.Phase}
	}
	current := state.CurrentQuestion
	if current == nil || current.ID != questionID {
		expected := ""
		if current != nil {
			expected = current.ID
		}
		return nil, state, &QuestionMismatchError{Expected: expected, Got: questionID}
	}
	switch source {
	case "":
		source = SourceText
	case SourceText, SourceAudio:
	default:
		return nil, state, fmt.Errorf("%w: %q", ErrInvalidSource, source)
	}

	prior := state.Answers
	next := state.Clone()
	next.Answers = append(next.Answers, Answer{
		QuestionID:   current.ID,
		Answer:       answer,
		Source:       source,
		QuestionText: current.Text,
	})
	logx.Debug(ctx, "interview", "answer recorded for %s (%d in ledger)", current.ID, len(next.Answers))

	// 1. Optional core questions never branch.
	if !current.Required && !current.IsFollowUp() {
		return e.Advance(next)
	}

	// 2. Policy questions answered affirmatively get their canned follow-up.
	if next.FollowUpCount < e.maxFollowUps {
		if fu, ok := resolvePolicyFollowUp(current, answer, next.FollowUpCount+1); ok {
			shown := e.showFollowUp(&next, fu)
			return shown, next, nil
		}
	}

	// 3. Policy follow-ups never chain.
	if current.Origin == OriginPolicy {
		return e.Advance(next)
	}

	// 4. Adaptive evaluation for deep-dive questions under the cap.
	if next.FollowUpCount < e.maxFollowUps && current.DeepDive {
		decision := e.evaluator.Evaluate(ctx, current.Text, answer, prior)
		if err := ctx.Err(); err != nil {
			return nil, state, err
		}
		if decision.NeedsFollowUp && strings.TrimSpace(decision.FollowUpText) != "" {
			fu := adaptiveFollowUp(current, strings.TrimSpace(decision.FollowUpText), next.FollowUpCount+1)
			shown := e.showFollowUp(&next, fu)
			return shown, next, nil
		}
	}

	// 5. Move on.
	return e.Advance(next)
}

// showFollowUp makes fu the current question of st.
func (e *Engine) showFollowUp(st *State, fu Question) *Question {
	st.CurrentQuestion = &fu
	st.FollowUpQuestion = cloneQuestionPtr(&fu)
	st.NeedsFollowUp = true
	st.FollowUpCount++
	e.logger.Info("Follow-up %s issued (%s)", fu.ID, fu.Origin)
	e.recorder.FollowUpIssued(string(fu.Origin))
	return cloneQuestionPtr(&fu)
}
