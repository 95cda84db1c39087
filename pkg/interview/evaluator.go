package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"onboarding/pkg/agent/llm"
	"onboarding/pkg/agent/llmerrors"
	"onboarding/pkg/logx"
	"onboarding/pkg/utils"
)

// Outcome labels how an evaluation ended.
type Outcome string

const (
	OutcomeSkippedFrustration Outcome = "skipped_frustration"
	OutcomeDisabled           Outcome = "disabled"
	OutcomeError              Outcome = "error"
	OutcomeFollowUp           Outcome = "follow_up"
	OutcomeSufficient         Outcome = "sufficient"
)

const (
	defaultMaxContextTokens = 2000
	noPriorAnswers          = "Nenhuma resposta anterior."
)

// FollowUpDecision is the evaluator verdict for one answer.
type FollowUpDecision struct {
	NeedsFollowUp bool
	FollowUpText  string
	Reason        string
	Outcome       Outcome
	// Err is the classified failure when Outcome is OutcomeError. It is
	// informational only and never surfaces to the caller.
	Err error
}

// Evaluator decides whether an answer needs one adaptive follow-up.
// Implementations fail open: every failure is a decision without follow-up.
type Evaluator interface {
	Evaluate(ctx context.Context, questionText, answerText string, prior []Answer) FollowUpDecision
}

// frustrationPhrases signal an impatient respondent. Matched as lowercase
// substrings.
//
//nolint:gochecknoglobals // author-time constants
var frustrationPhrases = []string{
	"você deveria saber",
	"vocês deveriam saber",
	"não é trabalho seu",
	"isso vocês que sabem",
	"isso é óbvio",
	"já respondi isso",
	"já disse isso",
	"não vou repetir",
	"chega de perguntas",
	"cansei",
	"que saco",
	"isso é básico",
	"pergunta sem sentido",
}

// DetectFrustration returns the first frustration phrase found in text.
func DetectFrustration(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, phrase := range frustrationPhrases {
		if strings.Contains(lower, phrase) {
			return phrase, true
		}
	}
	return "", false
}

const evaluationSystemPrompt = `Você avalia respostas de empresas durante a configuração de um agente de cobrança.
Decida se a resposta do cliente precisa de UMA pergunta de aprofundamento.

## Regras
1. Peça aprofundamento somente quando faltar informação ESPECÍFICA da empresa: produtos, políticas ou processos próprios.
2. Nunca aprofunde conhecimento genérico de cobrança. O agente já sabe cobrar, negociar e lidar com objeções.
3. Se o cliente demonstrar impaciência ou irritação, responda needs_follow_up = false.
4. Se a resposta já for clara e suficiente, responda needs_follow_up = false.
5. A pergunta de aprofundamento deve ser curta, natural, em português e tratar de um único ponto.

## Formato da resposta
Responda apenas com um objeto JSON:
{"needs_follow_up": true ou false, "follow_up_question": "pergunta ou null", "reason": "motivo curto"}`

const evaluationUserPrompt = `## Pergunta feita
%s

## Resposta do cliente
%s

## Contexto (respostas anteriores)
%s

## Instrução
Avalie se a resposta acima precisa de aprofundamento seguindo as regras.`

// LLMEvaluator asks a text-generation service for the decision. A nil client
// disables it.
type LLMEvaluator struct {
	client           llm.LLMClient
	counter          *utils.TokenCounter
	recorder         Recorder
	logger           *logx.Logger
	temperature      float32
	maxTokens        int
	maxContextTokens int
}

// EvaluatorOption configures an LLMEvaluator.
type EvaluatorOption func(*LLMEvaluator)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) EvaluatorOption {
	return func(e *LLMEvaluator) { e.temperature = t }
}

// WithMaxTokens sets the response token limit.
func WithMaxTokens(n int) EvaluatorOption {
	return func(e *LLMEvaluator) {
		if n > 0 {
			e.maxTokens = n
		}
	}
}

// WithMaxContextTokens bounds the prior-answers summary. Zero disables the bound.
func WithMaxContextTokens(n int) EvaluatorOption {
	return func(e *LLMEvaluator) { e.maxContextTokens = n }
}

// WithTokenCounter overrides the tokenizer used to bound the context.
func WithTokenCounter(c *utils.TokenCounter) EvaluatorOption {
	return func(e *LLMEvaluator) { e.counter = c }
}

// WithEvaluatorRecorder reports each outcome to r.
func WithEvaluatorRecorder(r Recorder) EvaluatorOption {
	return func(e *LLMEvaluator) {
		if r != nil {
			e.recorder = r
		}
	}
}

// NewLLMEvaluator creates an evaluator over client.
func NewLLMEvaluator(client llm.LLMClient, opts ...EvaluatorOption) *LLMEvaluator {
	e := &LLMEvaluator{
		client:           client,
		counter:          utils.DefaultCounter(),
		recorder:         NopRecorder(),
		logger:           logx.NewLogger("evaluator"),
		temperature:      llm.TemperatureDefault,
		maxTokens:        llm.DefaultMaxTokens,
		maxContextTokens: defaultMaxContextTokens,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enabled reports whether a client is configured.
func (e *LLMEvaluator) Enabled() bool {
	return e.client != nil
}

// Evaluate makes at most one call and never retries.
func (e *LLMEvaluator) Evaluate(ctx context.Context, questionText, answerText string, prior []Answer) FollowUpDecision {
	decision := e.evaluate(ctx, questionText, answerText, prior)
	e.recorder.EvaluationOutcome(string(decision.Outcome))
	logx.Debug(ctx, "evaluator", "outcome=%s reason=%q", decision.Outcome, decision.Reason)
	return decision
}

func (e *LLMEvaluator) evaluate(ctx context.Context, questionText, answerText string, prior []Answer) FollowUpDecision {
	if phrase, ok := DetectFrustration(answerText); ok {
		e.logger.Info("Frustration signal %q detected, skipping follow-up evaluation", phrase)
		return FollowUpDecision{Outcome: OutcomeSkippedFrustration, Reason: "frustration signal"}
	}

	if e.client == nil {
		return FollowUpDecision{Outcome: OutcomeDisabled, Reason: "evaluator not configured"}
	}

	req := llm.CompletionRequest{
		Messages: []llm.CompletionMessage{
			llm.NewSystemMessage(evaluationSystemPrompt),
			llm.NewUserMessage(e.RenderPrompt(questionText, answerText, prior)),
		},
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
		JSONMode:    true,
	}

	resp, err := e.client.Complete(ctx, req)
	if err != nil {
		classified := llmerrors.Classify(err, 0, e.client.GetModelName())
		e.logger.Warn("Follow-up evaluation failed (%s), continuing without follow-up: %v", classified.Type, err)
		return FollowUpDecision{Outcome: OutcomeError, Err: classified}
	}

	decision, err := parseDecision(resp.Content)
	if err != nil {
		e.logger.Warn("Follow-up evaluation returned an unusable decision, continuing without follow-up: %v", err)
		return FollowUpDecision{Outcome: OutcomeError, Err: err}
	}
	return decision
}

// RenderPrompt builds the user message for one evaluation.
func (e *LLMEvaluator) RenderPrompt(questionText, answerText string, prior []Answer) string {
	return fmt.Sprintf(evaluationUserPrompt, questionText, answerText, e.renderContext(prior))
}

// renderContext lists prior answers, dropping the oldest until the summary fits
// maxContextTokens.
func (e *LLMEvaluator) renderContext(prior []Answer) string {
	lines := make([]string, 0, len(prior))
	for _, a := range prior {
		if strings.TrimSpace(a.Answer) == "" {
			continue
		}
		question := a.QuestionText
		if question == "" {
			question = a.QuestionID
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", question, a.Answer))
	}

	if e.maxContextTokens > 0 {
		for len(lines) > 0 && !e.counter.ValidateTokenLimit(strings.Join(lines, "\n"), e.maxContextTokens) {
			lines = lines[1:]
		}
	}
	if len(lines) == 0 {
		return noPriorAnswers
	}
	return strings.Join(lines, "\n")
}

type decisionPayload struct {
	NeedsFollowUp    *bool   `json:"needs_follow_up"`
	FollowUpQuestion *string `json:"follow_up_question"`
	Reason           string  `json:"reason"`
}

// parseDecision decodes the service response. A missing needs_follow_up, or a
// follow-up request without text, is malformed.
func parseDecision(content string) (FollowUpDecision, error) {
	var payload decisionPayload
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &payload); err != nil {
		return FollowUpDecision{}, llmerrors.NewMalformedResponseError(err, content)
	}
	if payload.NeedsFollowUp == nil {
		return FollowUpDecision{}, llmerrors.NewMalformedResponseError(errors.New("missing needs_follow_up"), content)
	}
	if !*payload.NeedsFollowUp {
		return FollowUpDecision{Outcome: OutcomeSufficient, Reason: payload.Reason}, nil
	}

	text := ""
	if payload.FollowUpQuestion != nil {
		text = strings.TrimSpace(*payload.FollowUpQuestion)
	}
	if text == "" {
		return FollowUpDecision{}, llmerrors.NewMalformedResponseError(errors.New("needs_follow_up without follow_up_question"), content)
	}
	return FollowUpDecision{
		NeedsFollowUp: true,
		FollowUpText:  text,
		Reason:        payload.Reason,
		Outcome:       OutcomeFollowUp,
	}, nil
}

// stripCodeFence removes a markdown fence some models wrap JSON in.
func stripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
