package interview

import (
	"errors"
	"fmt"
)

var (
	// ErrQuestionMismatch is returned when an answer targets a question other than the current one.
	ErrQuestionMismatch = errors.New("question mismatch")
	// ErrInvalidPhase is returned when an operation is not allowed in the current phase.
	ErrInvalidPhase = errors.New("invalid phase")
	// ErrCorruptSnapshot is returned when a persisted state cannot be restored.
	ErrCorruptSnapshot = errors.New("corrupt interview snapshot")
	// ErrInvalidSource is returned for an unknown answer source.
	ErrInvalidSource = errors.New("invalid answer source")
)

// QuestionMismatchError reports the expected and submitted question IDs.
type QuestionMismatchError struct {
	Expected string
	Got      string
}

func (e *QuestionMismatchError) Error() string {
	expected := e.Expected
	if expected == "" {
		expected = "none"
	}
	return fmt.Sprintf("question ID mismatch: expected '%s', got '%s'", expected, e.Got)
}

func (e *QuestionMismatchError) Unwrap() error { return ErrQuestionMismatch }

// PhaseError reports an operation rejected in the given phase.
type PhaseError struct {
	Op    string
	Phase Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s not allowed in phase %q", e.Op, e.Phase)
}

func (e *PhaseError) Unwrap() error { return ErrInvalidPhase }
