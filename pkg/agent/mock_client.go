package agent

import (
	"context"
	"fmt"
	"sync"

	"onboarding/pkg/agent/llm"
)

// MockLLMClient replays scripted responses and errors in order and records the
// requests it receives.
type MockLLMClient struct {
	responses []llm.CompletionResponse
	errors    []error
	requests  []llm.CompletionRequest
	mu        sync.Mutex
}

// NewMockLLMClient creates a mock. For call i, a non-nil errors[i] wins over
// responses[i].
func NewMockLLMClient(responses []llm.CompletionResponse, errors []error) *MockLLMClient {
	return &MockLLMClient{responses: responses, errors: errors}
}

// NewMockLLMClientWithContent scripts plain content responses.
func NewMockLLMClientWithContent(contents ...string) *MockLLMClient {
	responses := make([]llm.CompletionResponse, len(contents))
	for i, c := range contents {
		responses[i] = llm.CompletionResponse{Content: c, StopReason: "end_turn"}
	}
	return NewMockLLMClient(responses, nil)
}

// Complete returns the next scripted result.
func (m *MockLLMClient) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := len(m.requests)
	m.requests = append(m.requests, req)

	if err := ctx.Err(); err != nil {
		return llm.CompletionResponse{}, err
	}
	if i < len(m.errors) && m.errors[i] != nil {
		return llm.CompletionResponse{}, m.errors[i]
	}
	if i >= len(m.responses) {
		return llm.CompletionResponse{}, fmt.Errorf("mock client: no more responses")
	}
	return m.responses[i], nil
}

// GetModelName returns a fixed model name.
func (m *MockLLMClient) GetModelName() string {
	return "mock-model"
}

// CallCount returns how many times Complete was called.
func (m *MockLLMClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of the received requests.
func (m *MockLLMClient) Requests() []llm.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llm.CompletionRequest(nil), m.requests...)
}
