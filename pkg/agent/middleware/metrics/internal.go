package metrics

import (
	"sync"
	"time"
)

// InternalRecorder aggregates LLM usage per session in memory.
type InternalRecorder struct {
	sessions map[string]*SessionUsage
	mu       sync.RWMutex
}

// SessionUsage is the aggregated LLM usage of one interview session.
type SessionUsage struct {
	SessionID        string    `json:"session_id"`
	PromptTokens     int64     `json:"prompt_tokens"`
	CompletionTokens int64     `json:"completion_tokens"`
	RequestCount     int64     `json:"request_count"`
	FailedCount      int64     `json:"failed_count"`
	LastUpdated      time.Time `json:"last_updated"`
}

// NewInternalRecorder returns an empty recorder.
func NewInternalRecorder() *InternalRecorder {
	return &InternalRecorder{sessions: make(map[string]*SessionUsage)}
}

// ObserveRequest aggregates a request under its session. Requests without a
// session are ignored.
func (r *InternalRecorder) ObserveRequest(
	_, sessionID string,
	promptTokens, completionTokens int,
	success bool,
	_ string,
	_ time.Duration,
) {
	if sessionID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	usage, exists := r.sessions[sessionID]
	if !exists {
		usage = &SessionUsage{SessionID: sessionID}
		r.sessions[sessionID] = usage
	}
	usage.RequestCount++
	if success {
		usage.PromptTokens += int64(promptTokens)
		usage.CompletionTokens += int64(completionTokens)
	} else {
		usage.FailedCount++
	}
	usage.LastUpdated = time.Now()
}

// GetSessionUsage returns a copy of a session's usage, or nil.
func (r *InternalRecorder) GetSessionUsage(sessionID string) *SessionUsage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if usage, exists := r.sessions[sessionID]; exists {
		cp := *usage
		return &cp
	}
	return nil
}

// Reset clears all usage.
func (r *InternalRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = make(map[string]*SessionUsage)
}
