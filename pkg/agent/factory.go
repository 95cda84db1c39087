// Package agent builds the text-generation client used by the adaptive
// follow-up evaluator.
package agent

import (
	"fmt"

	"onboarding/pkg/agent/internal/llmimpl/anthropic"
	"onboarding/pkg/agent/internal/llmimpl/google"
	"onboarding/pkg/agent/internal/llmimpl/ollama"
	"onboarding/pkg/agent/internal/llmimpl/openaiofficial"
	"onboarding/pkg/agent/llm"
	"onboarding/pkg/agent/middleware/metrics"
	"onboarding/pkg/agent/middleware/resilience/timeout"
	"onboarding/pkg/config"
	"onboarding/pkg/logx"
)

// CredentialLookup resolves the credential for a provider.
type CredentialLookup func(provider string) (string, error)

// LLMClientFactory creates evaluator clients with their middleware chain.
type LLMClientFactory struct {
	config          config.EvaluatorConfig
	metricsRecorder metrics.Recorder
	credentials     CredentialLookup
	logger          *logx.Logger
}

// NewLLMClientFactory creates a factory. A nil recorder disables LLM metrics.
func NewLLMClientFactory(cfg config.EvaluatorConfig, recorder metrics.Recorder) *LLMClientFactory {
	if recorder == nil {
		recorder = metrics.Nop()
	}
	return &LLMClientFactory{
		config:          cfg,
		metricsRecorder: recorder,
		credentials:     config.GetAPIKey,
		logger:          logx.NewLogger("llm-factory"),
	}
}

// WithCredentials replaces the credential lookup.
func (f *LLMClientFactory) WithCredentials(lookup CredentialLookup) *LLMClientFactory {
	f.credentials = lookup
	return f
}

// CreateEvaluatorClient returns the wrapped client, or nil with no error when
// the evaluator is disabled or no credential is configured. A nil client is the
// evaluator's "not available" input.
func (f *LLMClientFactory) CreateEvaluatorClient() (llm.LLMClient, error) {
	if !f.config.Enabled {
		f.logger.Info("Adaptive evaluator disabled by configuration")
		return nil, nil //nolint:nilnil // nil client means disabled
	}

	provider, err := f.config.EvaluatorProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to determine provider for model %s: %w", f.config.Model, err)
	}

	credential, err := f.credentials(provider)
	if err != nil || credential == "" {
		f.logger.Warn("No credential for provider %s, adaptive follow-ups disabled", provider)
		return nil, nil //nolint:nilnil // nil client means disabled
	}

	rawClient, err := newRawClient(provider, credential, f.config.Model)
	if err != nil {
		return nil, err
	}

	// Metrics -> Timeout -> RawClient. No retries: a failed evaluation is final.
	client := llm.Chain(rawClient,
		metrics.Middleware(f.metricsRecorder, nil, f.logger),
		timeout.Middleware(f.config.Timeout),
	)
	f.logger.Info("Adaptive evaluator using %s (%s)", f.config.Model, provider)
	return client, nil
}

func newRawClient(provider, credential, model string) (llm.LLMClient, error) {
	switch provider {
	case config.ProviderOpenAI:
		return openaiofficial.NewOfficialClientWithModel(credential, model), nil
	case config.ProviderAnthropic:
		return anthropic.NewClaudeClientWithModel(credential, model), nil
	case config.ProviderGoogle:
		return google.NewGeminiClientWithModel(credential, model), nil
	case config.ProviderOllama:
		return ollama.NewOllamaClientWithModel(credential, model), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
