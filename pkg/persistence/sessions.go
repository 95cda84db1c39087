package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrSessionNotFound is returned when a requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrConcurrentUpdate is returned when a save carries a stale version.
	ErrConcurrentUpdate = errors.New("session was modified concurrently")
)

// Session status constants.
const (
	SessionStatusCreated      = "created"
	SessionStatusInterviewing = "interviewing"
	SessionStatusInterviewed  = "interviewed"
)

// Session is one onboarding session row.
type Session struct {
	ID             string            `json:"session_id"`
	CompanyName    string            `json:"company_name"`
	CompanyWebsite string            `json:"company_website"`
	Status         string            `json:"status"`
	Enrichment     map[string]string `json:"enrichment_data"`
	InterviewState []byte            `json:"-"` // nil until the interview starts
	Version        int64             `json:"version"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// HasInterview reports whether an interview snapshot is stored.
func (s *Session) HasInterview() bool {
	return len(s.InterviewState) > 0
}

// AnswerRecord is one denormalized ledger entry.
type AnswerRecord struct {
	Seq          int       `json:"seq"`
	QuestionID   string    `json:"question_id"`
	QuestionText string    `json:"question_text"`
	Answer       string    `json:"answer"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
}

// InterviewUpdate is a compare-and-swap write of an interview snapshot.
type InterviewUpdate struct {
	SessionID       string
	ExpectedVersion int64
	State           []byte
	Status          string
	// Answers is the full ledger. Entries past those already stored are appended.
	Answers []AnswerRecord
}

func validStatus(status string) bool {
	switch status {
	case SessionStatusCreated, SessionStatusInterviewing, SessionStatusInterviewed:
		return true
	}
	return false
}

// timestampFormat is fixed-width so stored timestamps sort as text.
const timestampFormat = "2006-01-02T15:04:05.000000000Z"

func now() string {
	return time.Now().UTC().Format(timestampFormat)
}

// CreateSession inserts a new session with a generated ID.
func (s *Store) CreateSession(ctx context.Context, companyName, companyWebsite string, enrichment map[string]string) (*Session, error) {
	if enrichment == nil {
		enrichment = map[string]string{}
	}
	enrichmentJSON, err := json.Marshal(enrichment)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal enrichment: %w", err)
	}

	id := uuid.NewString()
	ts := now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, company_name, company_website, status, enrichment_json, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?)
	`, id, companyName, companyWebsite, SessionStatusCreated, string(enrichmentJSON), ts, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("Created session %s for %q", id, companyName)
	return s.GetSession(ctx, id)
}

const sessionColumns = `session_id, company_name, company_website, status, enrichment_json,
	interview_state_json, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanSession scans a session row into a Session struct.
func scanSession(row rowScanner) (*Session, error) {
	var (
		session        Session
		enrichmentJSON string
		stateJSON      sql.NullString
		createdAt      string
		updatedAt      string
	)
	err := row.Scan(&session.ID, &session.CompanyName, &session.CompanyWebsite, &session.Status,
		&enrichmentJSON, &stateJSON, &session.Version, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	if err := json.Unmarshal([]byte(enrichmentJSON), &session.Enrichment); err != nil {
		return nil, fmt.Errorf("failed to decode enrichment of session %s: %w", session.ID, err)
	}
	if session.Enrichment == nil {
		session.Enrichment = map[string]string{}
	}
	if stateJSON.Valid && stateJSON.String != "" {
		session.InterviewState = []byte(stateJSON.String)
	}
	if session.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at of session %s: %w", session.ID, err)
	}
	if session.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at of session %s: %w", session.ID, err)
	}
	return &session, nil
}

// GetSession returns a session by ID.
// Returns ErrSessionNotFound if the session does not exist.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE session_id = ?`, sessionID)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// ListSessions returns sessions newest first, optionally filtered by status.
func (s *Store) ListSessions(ctx context.Context, status string) ([]*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []*Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

// UpdateEnrichment replaces the enrichment data, returning the new version.
func (s *Store) UpdateEnrichment(ctx context.Context, sessionID string, expectedVersion int64, enrichment map[string]string) (int64, error) {
	if enrichment == nil {
		enrichment = map[string]string{}
	}
	enrichmentJSON, err := json.Marshal(enrichment)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal enrichment: %w", err)
	}

	var newVersion int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE sessions SET enrichment_json = ?, version = version + 1, updated_at = ?
			WHERE session_id = ? AND version = ?
		`, string(enrichmentJSON), now(), sessionID, expectedVersion)
		if err != nil {
			return fmt.Errorf("failed to update enrichment: %w", err)
		}
		if err := checkSwapped(ctx, tx, result, sessionID); err != nil {
			return err
		}
		newVersion = expectedVersion + 1
		return nil
	})
	return newVersion, err
}

// SaveInterview stores the snapshot if the row is still at ExpectedVersion and
// appends new ledger entries, all in one transaction. It returns the new version.
func (s *Store) SaveInterview(ctx context.Context, u InterviewUpdate) (int64, error) {
	if !validStatus(u.Status) {
		return 0, fmt.Errorf("invalid session status %q", u.Status)
	}

	var newVersion int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		ts := now()
		result, err := tx.ExecContext(ctx, `
			UPDATE sessions SET interview_state_json = ?, status = ?, version = version + 1, updated_at = ?
			WHERE session_id = ? AND version = ?
		`, string(u.State), u.Status, ts, u.SessionID, u.ExpectedVersion)
		if err != nil {
			return fmt.Errorf("failed to save interview: %w", err)
		}
		if err := checkSwapped(ctx, tx, result, u.SessionID); err != nil {
			return err
		}

		var stored int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM interview_answers WHERE session_id = ?`, u.SessionID,
		).Scan(&stored); err != nil {
			return fmt.Errorf("failed to count answers: %w", err)
		}
		for i := stored; i < len(u.Answers); i++ {
			a := u.Answers[i]
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO interview_answers (session_id, seq, question_id, question_text, answer, source, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, u.SessionID, i, a.QuestionID, a.QuestionText, a.Answer, a.Source, ts); err != nil {
				return fmt.Errorf("failed to append answer %d: %w", i, err)
			}
		}

		newVersion = u.ExpectedVersion + 1
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug("Saved interview for session %s (version %d, status %s)", u.SessionID, newVersion, u.Status)
	return newVersion, nil
}

// checkSwapped turns a zero-row conditional update into ErrSessionNotFound or
// ErrConcurrentUpdate.
func checkSwapped(ctx context.Context, tx *sql.Tx, result sql.Result, sessionID string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE session_id = ?`, sessionID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	return ErrConcurrentUpdate
}

// ListAnswers returns the stored ledger of a session in order.
func (s *Store) ListAnswers(ctx context.Context, sessionID string) ([]AnswerRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, question_id, question_text, answer, source, created_at
		FROM interview_answers
		WHERE session_id = ?
		ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var answers []AnswerRecord
	for rows.Next() {
		var (
			a         AnswerRecord
			createdAt string
		)
		if err := rows.Scan(&a.Seq, &a.QuestionID, &a.QuestionText, &a.Answer, &a.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		if a.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse answer timestamp: %w", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate answers: %w", err)
	}
	return answers, nil
}
