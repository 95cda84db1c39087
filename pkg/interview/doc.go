// Package interview is the onboarding questionnaire engine.
//
// The engine is a finite-state machine over an immutable State value:
// every operation takes a State and returns a new one, so callers persist the
// returned snapshot (see Marshal) and nothing is shared between requests.
//
//	core ──advance──▶ core        (next catalog question)
//	core ──advance──▶ review      (catalog exhausted)
//	review ─confirm─▶ complete    (explicit only)
//
// After each answer a branching pipeline decides between a deterministic
// policy follow-up, an adaptive follow-up proposed by an Evaluator, or moving
// on to the next catalog question. At most one follow-up is attached to any
// core question.
package interview
