package interview

import (
	"fmt"
	"strings"
)

// policyFollowUps holds the canned follow-up for each yes/no policy question.
//
//nolint:gochecknoglobals // author-time constants
var policyFollowUps = map[string]string{
	"core_1": "Como os juros são calculados? Informe a taxa e a periodicidade (ex: 1% ao mês).",
	"core_2": "Qual o valor da multa e a partir de quando ela é aplicada?",
	"core_3": "Quais são os limites de desconto que o agente pode oferecer?",
	"core_4": "Em quantas parcelas o agente pode dividir a dívida e qual o valor mínimo de cada parcela?",
}

// isAffirmative reports whether answer is exactly an affirmative token after
// trimming and lowercasing. "sim." does not match.
func isAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "sim", "yes":
		return true
	}
	return false
}

// followUpID names the n-th follow-up of a parent question.
func followUpID(parentID string, n int) string {
	return fmt.Sprintf("followup_%s_%d", parentID, n)
}

// resolvePolicyFollowUp returns the deterministic follow-up for q when q is a
// policy question and answer is affirmative. It never fails.
func resolvePolicyFollowUp(q *Question, answer string, seq int) (Question, bool) {
	if q.IsFollowUp() {
		return Question{}, false
	}
	text, ok := policyFollowUps[q.ID]
	if !ok || !isAffirmative(answer) {
		return Question{}, false
	}
	return Question{
		ID:            followUpID(q.ID, seq),
		Text:          text,
		Kind:          KindText,
		Required:      true,
		SupportsAudio: true,
		Phase:         QuestionPhaseFollowUp,
		ParentID:      q.ID,
		Origin:        OriginPolicy,
	}, true
}

// adaptiveFollowUp builds the evaluator-proposed follow-up for q.
func adaptiveFollowUp(q *Question, text string, seq int) Question {
	parent := q.ID
	if q.ParentID != "" {
		parent = q.ParentID
	}
	return Question{
		ID:            followUpID(parent, seq),
		Text:          text,
		Kind:          KindText,
		SupportsAudio: true,
		Phase:         QuestionPhaseFollowUp,
		ParentID:      parent,
		Origin:        OriginAdaptive,
	}
}
