package interview

import (
	"encoding/json"
	"fmt"
)

// Marshal encodes state as the persisted snapshot document.
func Marshal(state State) ([]byte, error) {
	st := state.Clone()
	data, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal interview state: %w", err)
	}
	return data, nil
}

// Unmarshal restores a snapshot. Missing collections default to empty and a
// missing phase defaults to core. Documents that break the state invariants
// return an error wrapping ErrCorruptSnapshot.
func Unmarshal(data []byte) (State, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	if st.Enrichment == nil {
		st.Enrichment = map[string]string{}
	}
	if st.CoreQuestionsRemaining == nil {
		st.CoreQuestionsRemaining = []Question{}
	}
	if st.Answers == nil {
		st.Answers = []Answer{}
	}
	if st.Phase == "" {
		st.Phase = PhaseCore
	}
	if err := Validate(st); err != nil {
		return State{}, err
	}
	return st, nil
}

// Validate checks the at-rest invariants of st.
func Validate(st State) error {
	corrupt := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrCorruptSnapshot, fmt.Sprintf(format, args...))
	}

	if !IsValidPhase(st.Phase) {
		return corrupt("unknown phase %q", st.Phase)
	}
	if st.IsFinished() {
		if st.CurrentQuestion != nil {
			return corrupt("phase %s with a current question", st.Phase)
		}
		if len(st.CoreQuestionsRemaining) > 0 {
			return corrupt("phase %s with %d questions remaining", st.Phase, len(st.CoreQuestionsRemaining))
		}
	} else if st.CurrentQuestion == nil {
		return corrupt("phase %s without a current question", st.Phase)
	}
	if st.FollowUpCount < 0 || st.FollowUpCount > MaxFollowUpsCap {
		return corrupt("follow_up_count %d out of range", st.FollowUpCount)
	}

	seen := make(map[string]bool, len(st.CoreQuestionsRemaining)+1)
	check := func(q *Question) error {
		if q.ID == "" {
			return corrupt("question without identifier")
		}
		if seen[q.ID] {
			return corrupt("duplicate question %s", q.ID)
		}
		seen[q.ID] = true
		return nil
	}
	if st.CurrentQuestion != nil {
		if err := check(st.CurrentQuestion); err != nil {
			return err
		}
	}
	for i := range st.CoreQuestionsRemaining {
		if err := check(&st.CoreQuestionsRemaining[i]); err != nil {
			return err
		}
	}
	for i := range st.Answers {
		if st.Answers[i].QuestionID == "" {
			return corrupt("answer %d without question identifier", i)
		}
	}
	return nil
}
