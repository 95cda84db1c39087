package interview

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboarding/pkg/agent"
	"onboarding/pkg/agent/llm"
	"onboarding/pkg/agent/llmerrors"
)

func TestDetectFrustration(t *testing.T) {
	tests := []struct {
		text   string
		phrase string
		found  bool
	}{
		{"Isso é óbvio", "isso é óbvio", true},
		{"CANSEI dessas perguntas", "cansei", true},
		{"Já respondi isso antes", "já respondi isso", true},
		{"ok, chega de perguntas por hoje", "chega de perguntas", true},
		{"Vendemos planos de academia", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			phrase, found := DetectFrustration(tt.text)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.phrase, phrase)
		})
	}
}

func TestParseDecision(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    FollowUpDecision
		wantErr bool
	}{
		{
			name:    "follow-up",
			content: `{"needs_follow_up": true, "follow_up_question": " Qual o ticket médio? ", "reason": "vago"}`,
			want:    FollowUpDecision{NeedsFollowUp: true, FollowUpText: "Qual o ticket médio?", Reason: "vago", Outcome: OutcomeFollowUp},
		},
		{
			name:    "sufficient",
			content: `{"needs_follow_up": false, "follow_up_question": null, "reason": "completa"}`,
			want:    FollowUpDecision{Reason: "completa", Outcome: OutcomeSufficient},
		},
		{
			name:    "fenced",
			content: "```json\n{\"needs_follow_up\": false}\n```",
			want:    FollowUpDecision{Outcome: OutcomeSufficient},
		},
		{name: "not json", content: "Sim, precisa de mais detalhes.", wantErr: true},
		{name: "missing decision", content: `{"reason": "?"}`, wantErr: true},
		{name: "wrong type", content: `{"needs_follow_up": "yes"}`, wantErr: true},
		{name: "follow-up without text", content: `{"needs_follow_up": true}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDecision(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, llmerrors.Is(err, llmerrors.ErrorTypeBadPrompt))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateRequestShape(t *testing.T) {
	mock := agent.NewMockLLMClientWithContent(sufficientJSON)
	ev := NewLLMEvaluator(mock)

	decision := ev.Evaluate(context.Background(), "Como funciona a cobrança?", "Ligamos no dia 5", nil)
	assert.Equal(t, OutcomeSufficient, decision.Outcome)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	req := reqs[0]
	assert.True(t, req.JSONMode)
	assert.InDelta(t, 0.3, req.Temperature, 1e-6)
	assert.Equal(t, llm.DefaultMaxTokens, req.MaxTokens)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "needs_follow_up")
	assert.Equal(t, llm.RoleUser, req.Messages[1].Role)
	assert.Contains(t, req.Messages[1].Content, "## Pergunta feita\nComo funciona a cobrança?")
	assert.Contains(t, req.Messages[1].Content, noPriorAnswers)
}

func TestEvaluateOutcomes(t *testing.T) {
	tests := []struct {
		name      string
		client    llm.LLMClient
		answer    string
		want      Outcome
		wantCalls int
	}{
		{"disabled", nil, "Planos", OutcomeDisabled, 0},
		{"frustrated", agent.NewMockLLMClientWithContent(followUpJSON), "que saco", OutcomeSkippedFrustration, 0},
		{"follow-up", agent.NewMockLLMClientWithContent(followUpJSON), "Planos", OutcomeFollowUp, 1},
		{"sufficient", agent.NewMockLLMClientWithContent(sufficientJSON), "Planos", OutcomeSufficient, 1},
		{"error", agent.NewMockLLMClient(nil, []error{errors.New("status 503")}), "Planos", OutcomeError, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			ev := NewLLMEvaluator(tt.client, WithEvaluatorRecorder(rec))

			decision := ev.Evaluate(context.Background(), "O que vende?", tt.answer, nil)
			assert.Equal(t, tt.want, decision.Outcome)
			assert.Equal(t, tt.want == OutcomeFollowUp, decision.NeedsFollowUp)
			assert.Equal(t, []string{string(tt.want)}, rec.outcomes)
			if mock, ok := tt.client.(*agent.MockLLMClient); ok {
				assert.Equal(t, tt.wantCalls, mock.CallCount())
			}
		})
	}
}

func TestEvaluateErrorIsClassified(t *testing.T) {
	mock := agent.NewMockLLMClient(nil, []error{errors.New("dial tcp: connection refused")})
	decision := NewLLMEvaluator(mock).Evaluate(context.Background(), "Q", "A", nil)

	require.Error(t, decision.Err)
	assert.True(t, llmerrors.Is(decision.Err, llmerrors.ErrorTypeServiceUnavailable))
}

func TestRenderContext(t *testing.T) {
	prior := []Answer{
		{QuestionID: "core_1", QuestionText: "Cobra juros?", Answer: "sim"},
		{QuestionID: "followup_core_1_1", QuestionText: "", Answer: "1% ao mês"},
		{QuestionID: "core_7", QuestionText: "Nome do agente?", Answer: "  "},
	}
	ev := NewLLMEvaluator(nil, WithMaxContextTokens(0))

	got := ev.renderContext(prior)
	assert.Equal(t, "- Cobra juros?: sim\n- followup_core_1_1: 1% ao mês", got)
	assert.Equal(t, noPriorAnswers, ev.renderContext(nil))
}

func TestRenderContextDropsOldestOverBudget(t *testing.T) {
	prior := []Answer{
		{QuestionText: "Q1", Answer: strings.Repeat("a", 40)},
		{QuestionText: "Q2", Answer: strings.Repeat("b", 40)},
	}
	// A nil counter estimates 4 characters per token: one line is 11 tokens,
	// both are 23.
	ev := NewLLMEvaluator(nil, WithTokenCounter(nil), WithMaxContextTokens(15))

	got := ev.renderContext(prior)
	assert.NotContains(t, got, "Q1")
	assert.Contains(t, got, "- Q2: ")

	tiny := NewLLMEvaluator(nil, WithTokenCounter(nil), WithMaxContextTokens(2))
	assert.Equal(t, noPriorAnswers, tiny.renderContext(prior))
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"  {\"a\":1}\n", `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}```", `{"a":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripCodeFence(tt.in))
	}
}
