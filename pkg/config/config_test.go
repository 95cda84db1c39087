package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := ReadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabasePath, cfg.DatabasePath)
	assert.True(t, cfg.Evaluator.Enabled)
	assert.Equal(t, DefaultModel, cfg.Evaluator.Model)
	assert.InDelta(t, DefaultTemperature, cfg.Evaluator.Temperature, 1e-9)
	assert.Equal(t, DefaultEvaluatorTimeout, cfg.Evaluator.Timeout)
	assert.Equal(t, 1, cfg.Interview.FollowUpCap())
}

func TestReadConfigParsesYAML(t *testing.T) {
	t.Setenv("ONBOARDING_TEST_DB", "/var/lib/onboarding/sessions.db")
	path := writeFile(t, "onboarding.yaml", `
database_path: ${ONBOARDING_TEST_DB}
metrics_addr: ":9102"
evaluator:
  enabled: false
  model: claude-haiku-4-5
  timeout: 5s
  max_context_tokens: 300
interview:
  max_follow_ups_per_question: 0
`)

	cfg, err := ReadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/onboarding/sessions.db", cfg.DatabasePath)
	assert.Equal(t, ":9102", cfg.MetricsAddr)
	assert.False(t, cfg.Evaluator.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Evaluator.Timeout)
	assert.Equal(t, 300, cfg.Evaluator.MaxContextTokens)
	assert.Equal(t, 0, cfg.Interview.FollowUpCap())

	provider, err := cfg.Evaluator.EvaluatorProvider()
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, provider)
}

func TestReadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"cap above one", "interview:\n  max_follow_ups_per_question: 2\n", "max_follow_ups_per_question"},
		{"negative cap", "interview:\n  max_follow_ups_per_question: -1\n", "max_follow_ups_per_question"},
		{"unknown provider", "evaluator:\n  provider: acme\n", "unknown evaluator provider"},
		{"unknown model", "evaluator:\n  model: mystery-1\n", "unknown model"},
		{"bad temperature", "evaluator:\n  temperature: 3\n", "temperature"},
		{"bad yaml", "evaluator: [", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadConfig(writeFile(t, "c.yaml", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestGetConfigRequiresLoad(t *testing.T) {
	SetConfigForTesting(nil)
	_, err := GetConfig()
	assert.Error(t, err)

	require.NoError(t, LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")))
	t.Cleanup(func() { SetConfigForTesting(nil) })

	cfg, err := GetConfig()
	require.NoError(t, err)
	cfg.DatabasePath = "mutated.db"

	again, err := GetConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultDatabasePath, again.DatabasePath)
}

func TestGetModelProvider(t *testing.T) {
	tests := []struct {
		model    string
		provider string
		wantErr  bool
	}{
		{"gpt-4.1-mini", ProviderOpenAI, false},
		{"claude-sonnet-4-5", ProviderAnthropic, false},
		{"gemini-2.5-flash", ProviderGoogle, false},
		{"llama3.2", ProviderOllama, false},
		{"gpt-5-preview", ProviderOpenAI, false},
		{"unknown-model", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			provider, err := GetModelProvider(tt.model)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.provider, provider)
		})
	}
}

func TestGetAPIKey(t *testing.T) {
	SetDecryptedSecrets(nil)
	t.Cleanup(func() { SetDecryptedSecrets(nil) })

	t.Setenv(EnvOpenAIAPIKey, "sk-env")
	key, err := GetAPIKey(ProviderOpenAI)
	require.NoError(t, err)
	assert.Equal(t, "sk-env", key)

	t.Setenv(EnvAnthropicAPIKey, "")
	_, err = GetAPIKey(ProviderAnthropic)
	assert.Error(t, err)

	t.Setenv(EnvOllamaHost, "")
	host, err := GetAPIKey(ProviderOllama)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", host)

	_, err = GetAPIKey("acme")
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), ".env")))

	t.Setenv("ONBOARDING_ENV_PRESET", "kept")
	path := writeFile(t, ".env", "ONBOARDING_ENV_LOADED=yes\nONBOARDING_ENV_PRESET=overwritten\n")
	t.Cleanup(func() { os.Unsetenv("ONBOARDING_ENV_LOADED") })

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "yes", os.Getenv("ONBOARDING_ENV_LOADED"))
	assert.Equal(t, "kept", os.Getenv("ONBOARDING_ENV_PRESET"))
}
