// Package onboarding runs interview operations against stored sessions: load
// the snapshot, apply one engine operation, persist the result.
package onboarding

import (
	"context"
	"errors"
	"fmt"

	"onboarding/pkg/interview"
	"onboarding/pkg/logx"
	"onboarding/pkg/persistence"
)

var (
	// ErrInterviewNotStarted is returned for operations on a session without interview.
	ErrInterviewNotStarted = errors.New("interview not started")
	// ErrInterviewStarted is returned when enrichment changes after the interview began.
	ErrInterviewStarted = errors.New("interview already started")
)

// SessionStore is the persistence the service needs.
type SessionStore interface {
	CreateSession(ctx context.Context, companyName, companyWebsite string, enrichment map[string]string) (*persistence.Session, error)
	GetSession(ctx context.Context, sessionID string) (*persistence.Session, error)
	UpdateEnrichment(ctx context.Context, sessionID string, expectedVersion int64, enrichment map[string]string) (int64, error)
	SaveInterview(ctx context.Context, u persistence.InterviewUpdate) (int64, error)
	ListAnswers(ctx context.Context, sessionID string) ([]persistence.AnswerRecord, error)
}

// Service is safe for concurrent use; concurrent writes to one session are
// serialized by the store's version check.
type Service struct {
	store  SessionStore
	engine *interview.Engine
	logger *logx.Logger
}

// NewService creates a service.
func NewService(store SessionStore, engine *interview.Engine) *Service {
	return &Service{
		store:  store,
		engine: engine,
		logger: logx.NewLogger("onboarding"),
	}
}

// StartSession creates a session with optional enrichment data.
func (s *Service) StartSession(ctx context.Context, companyName, companyWebsite string, enrichment map[string]string) (*persistence.Session, error) {
	session, err := s.store.CreateSession(ctx, companyName, companyWebsite, enrichment)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return session, nil
}

// Session returns the stored session.
func (s *Service) Session(ctx context.Context, sessionID string) (*persistence.Session, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return session, nil
}

// SetEnrichment replaces the enrichment data of a session whose interview has
// not started.
func (s *Service) SetEnrichment(ctx context.Context, sessionID string, enrichment map[string]string) error {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.HasInterview() {
		return ErrInterviewStarted
	}
	if _, err := s.store.UpdateEnrichment(ctx, sessionID, session.Version, enrichment); err != nil {
		return fmt.Errorf("update enrichment of %s: %w", sessionID, err)
	}
	return nil
}

// load returns the session and its decoded interview state.
func (s *Service) load(ctx context.Context, sessionID string) (*persistence.Session, interview.State, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, interview.State{}, err
	}
	if !session.HasInterview() {
		return session, interview.State{}, ErrInterviewNotStarted
	}
	state, err := interview.Unmarshal(session.InterviewState)
	if err != nil {
		return nil, interview.State{}, fmt.Errorf("session %s: %w", sessionID, err)
	}
	return session, state, nil
}

// save writes state with a compare-and-swap on the loaded version.
func (s *Service) save(ctx context.Context, session *persistence.Session, state interview.State) error {
	data, err := interview.Marshal(state)
	if err != nil {
		return err
	}
	status := persistence.SessionStatusInterviewing
	if state.IsFinished() {
		status = persistence.SessionStatusInterviewed
	}

	answers := make([]persistence.AnswerRecord, len(state.Answers))
	for i, a := range state.Answers {
		answers[i] = persistence.AnswerRecord{
			Seq:          i,
			QuestionID:   a.QuestionID,
			QuestionText: a.QuestionText,
			Answer:       a.Answer,
			Source:       string(a.Source),
		}
	}

	version, err := s.store.SaveInterview(ctx, persistence.InterviewUpdate{
		SessionID:       session.ID,
		ExpectedVersion: session.Version,
		State:           data,
		Status:          status,
		Answers:         answers,
	})
	if err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	if status != session.Status {
		s.logger.Info("Session %s status %s -> %s", session.ID, session.Status, status)
	}
	session.Version = version
	session.Status = status
	return nil
}

// NextQuestion returns the question to show, creating the interview on the
// first call. It returns nil once the questions are over.
func (s *Service) NextQuestion(ctx context.Context, sessionID string) (*interview.Question, error) {
	session, state, err := s.load(ctx, sessionID)
	switch {
	case errors.Is(err, ErrInterviewNotStarted):
		state = s.engine.Create(session.Enrichment)
		if err := s.save(ctx, session, state); err != nil {
			return nil, err
		}
		s.logger.Info("Interview started for session %s", sessionID)
		q := *state.CurrentQuestion
		return &q, nil
	case err != nil:
		return nil, err
	}

	q, next, err := s.engine.GetCurrentOrAdvance(state)
	if err != nil {
		return nil, err
	}
	if next.Phase != state.Phase {
		if err := s.save(ctx, session, next); err != nil {
			return nil, err
		}
	}
	return q, nil
}

// SubmitResult is the outcome of one answer.
type SubmitResult struct {
	Next     *interview.Question `json:"next_question"`
	Progress interview.Progress  `json:"progress"`
}

// Submit records an answer and persists the new state.
func (s *Service) Submit(ctx context.Context, sessionID, questionID, answer string, source interview.Source) (*SubmitResult, error) {
	session, state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	q, next, err := s.engine.SubmitAnswer(logx.WithSession(ctx, sessionID), state, questionID, answer, source)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, session, next); err != nil {
		return nil, err
	}
	return &SubmitResult{Next: q, Progress: s.engine.Progress(next)}, nil
}

// Progress summarizes the interview, reporting not_started when there is none.
func (s *Service) Progress(ctx context.Context, sessionID string) (interview.Progress, error) {
	_, state, err := s.load(ctx, sessionID)
	if errors.Is(err, ErrInterviewNotStarted) {
		return interview.NotStartedProgress(), nil
	}
	if err != nil {
		return interview.Progress{}, err
	}
	return s.engine.Progress(state), nil
}

// Review returns the review projection.
func (s *Service) Review(ctx context.Context, sessionID string) (interview.Review, error) {
	_, state, err := s.load(ctx, sessionID)
	if err != nil {
		return interview.Review{}, err
	}
	return s.engine.GetReview(state)
}

// ConfirmReview completes the interview with optional notes.
func (s *Service) ConfirmReview(ctx context.Context, sessionID, notes string) (interview.Review, error) {
	session, state, err := s.load(ctx, sessionID)
	if err != nil {
		return interview.Review{}, err
	}
	next, err := s.engine.ConfirmReview(state, notes)
	if err != nil {
		return interview.Review{}, err
	}
	if err := s.save(ctx, session, next); err != nil {
		return interview.Review{}, err
	}
	s.logger.Info("Interview confirmed for session %s", sessionID)
	return s.engine.GetReview(next)
}

// Answers returns the stored ledger.
func (s *Service) Answers(ctx context.Context, sessionID string) ([]persistence.AnswerRecord, error) {
	if _, err := s.Session(ctx, sessionID); err != nil {
		return nil, err
	}
	answers, err := s.store.ListAnswers(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list answers of %s: %w", sessionID, err)
	}
	return answers, nil
}
