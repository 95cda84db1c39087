package interview

// Phase is the interview lifecycle stage.
type Phase string

const (
	PhaseCore     Phase = "core"
	PhaseReview   Phase = "review"
	PhaseComplete Phase = "complete"
)

// QuestionPhase tags where a question came from.
type QuestionPhase string

const (
	QuestionPhaseCore     QuestionPhase = "core"
	QuestionPhaseFollowUp QuestionPhase = "follow_up"
)

// AnswerKind is the input a question expects.
type AnswerKind string

const (
	KindText        AnswerKind = "text"
	KindSelect      AnswerKind = "select"
	KindMultiSelect AnswerKind = "multiselect"
)

// Origin identifies which resolver produced a follow-up.
type Origin string

const (
	OriginPolicy   Origin = "policy"
	OriginAdaptive Origin = "adaptive"
)

// Source is how an answer was captured. Audio is transcribed upstream.
type Source string

const (
	SourceText  Source = "text"
	SourceAudio Source = "audio"
)

// ReviewNotesID is the reserved ledger identifier for notes added at review.
const ReviewNotesID = "review_notes"

// Option is one choice of a select or multiselect question.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Question is one prompt shown to the respondent.
type Question struct {
	ID             string        `json:"question_id"`
	Text           string        `json:"question_text"`
	Kind           AnswerKind    `json:"question_type"`
	Options        []Option      `json:"options"`
	PreFilledValue string        `json:"pre_filled_value,omitempty"`
	Required       bool          `json:"is_required"`
	DeepDive       bool          `json:"supports_deep_dive"`
	SupportsAudio  bool          `json:"supports_audio"`
	Phase          QuestionPhase `json:"phase"`
	ContextHint    string        `json:"context_hint,omitempty"`

	// Follow-ups only.
	ParentID string `json:"parent_id,omitempty"`
	Origin   Origin `json:"origin,omitempty"`
}

// IsFollowUp reports whether q was synthesized after an answer.
func (q Question) IsFollowUp() bool {
	return q.Phase == QuestionPhaseFollowUp
}

// clone returns a copy that shares no slices with q.
func (q Question) clone() Question {
	if q.Options != nil {
		q.Options = append([]Option(nil), q.Options...)
	}
	return q
}

func cloneQuestionPtr(q *Question) *Question {
	if q == nil {
		return nil
	}
	c := q.clone()
	return &c
}

// Answer is one ledger entry. QuestionText is denormalized so context can be
// rendered without the catalog.
type Answer struct {
	QuestionID   string `json:"question_id"`
	Answer       string `json:"answer"`
	Source       Source `json:"source"`
	QuestionText string `json:"question_text"`
}

// State is the whole serializable machine. Treat it as a value: engine
// operations never modify their input.
type State struct {
	Enrichment             map[string]string `json:"enrichment_data"`
	CoreQuestionsRemaining []Question        `json:"core_questions_remaining"`
	CurrentQuestion        *Question         `json:"current_question"`
	Answers                []Answer          `json:"answers"`
	Phase                  Phase             `json:"phase"`
	NeedsFollowUp          bool              `json:"needs_follow_up"`
	FollowUpQuestion       *Question         `json:"follow_up_question"`
	FollowUpCount          int               `json:"follow_up_count"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Enrichment = make(map[string]string, len(s.Enrichment))
	for k, v := range s.Enrichment {
		out.Enrichment[k] = v
	}
	out.CoreQuestionsRemaining = make([]Question, len(s.CoreQuestionsRemaining))
	for i := range s.CoreQuestionsRemaining {
		out.CoreQuestionsRemaining[i] = s.CoreQuestionsRemaining[i].clone()
	}
	out.Answers = append(make([]Answer, 0, len(s.Answers)+1), s.Answers...)
	out.CurrentQuestion = cloneQuestionPtr(s.CurrentQuestion)
	out.FollowUpQuestion = cloneQuestionPtr(s.FollowUpQuestion)
	return out
}

// IsFinished reports whether the question phase is over.
func (s State) IsFinished() bool {
	return s.Phase == PhaseReview || s.Phase == PhaseComplete
}
