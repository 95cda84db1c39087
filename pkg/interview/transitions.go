package interview

import "fmt"

// validTransitions defines the interview phase machine.
//
//nolint:gochecknoglobals // Intentional package-level constant for state machine definition
var validTransitions = map[Phase][]Phase{
	PhaseCore: {
		PhaseCore,   // next catalog question
		PhaseReview, // catalog exhausted
	},
	PhaseReview: {
		PhaseComplete, // explicit confirmation only
	},
	PhaseComplete: {
		// Terminal
	},
}

// IsValidTransition checks if a phase transition is allowed.
func IsValidTransition(from, to Phase) bool {
	allowed, exists := validTransitions[from]
	if !exists {
		return false
	}
	for _, p := range allowed {
		if p == to {
			return true
		}
	}
	return false
}

// AllPhases returns every phase in lifecycle order.
func AllPhases() []Phase {
	return []Phase{PhaseCore, PhaseReview, PhaseComplete}
}

// IsValidPhase checks if p is a known phase.
func IsValidPhase(p Phase) bool {
	_, ok := validTransitions[p]
	return ok
}

// ValidNextPhases returns the phases reachable from p.
func ValidNextPhases(p Phase) []Phase {
	return validTransitions[p]
}

// transition moves st to phase to, reporting the change to the recorder.
func (e *Engine) transition(st *State, to Phase) error {
	from := st.Phase
	if !IsValidTransition(from, to) {
		return fmt.Errorf("%w: transition %s -> %s", ErrInvalidPhase, from, to)
	}
	st.Phase = to
	if from != to {
		e.logger.Info("Interview phase %s -> %s", from, to)
		e.recorder.PhaseTransition(string(from), string(to))
	}
	return nil
}
