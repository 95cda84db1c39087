// Package config provides configuration loading, validation and credential
// lookup for the onboarding interview.
//
// A single global Config is held in memory behind a RWMutex. GetConfig returns
// it BY VALUE so callers cannot mutate shared state; tests install their own
// with SetConfigForTesting.
//
//	if err := config.LoadConfig("onboarding.yaml"); err != nil { ... }
//	cfg, err := config.GetConfig()
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"onboarding/pkg/logx"
)

// Provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
	ProviderOllama    = "ollama"
)

// Environment variables holding provider credentials.
const (
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvGoogleAPIKey    = "GOOGLE_GENAI_API_KEY"
	EnvOllamaHost      = "OLLAMA_HOST"
)

const (
	// DefaultConfigFile is read when no --config flag is given.
	DefaultConfigFile = "onboarding.yaml"
	// ProjectConfigDir holds the encrypted secrets file.
	ProjectConfigDir = ".onboarding"

	DefaultDatabasePath     = "onboarding.db"
	DefaultModel            = "gpt-4.1-mini"
	DefaultTemperature      = 0.3
	DefaultMaxTokens        = 512
	DefaultEvaluatorTimeout = 30 * time.Second
	DefaultMaxContextTokens = 2000
	DefaultMaxFollowUps     = 1

	// MaxFollowUpsPerQuestionCap bounds interview.max_follow_ups_per_question.
	MaxFollowUpsPerQuestionCap = 1

	defaultOllamaHost = "http://localhost:11434"
)

//nolint:gochecknoglobals // Intentional singleton pattern for config management
var (
	config *Config
	logger *logx.Logger
	mu     sync.RWMutex
)

func getLogger() *logx.Logger {
	if logger == nil {
		logger = logx.NewLogger("config")
	}
	return logger
}

// ModelInfo contains static information about a known model.
type ModelInfo struct {
	Provider         string
	MaxContextTokens int
	MaxOutputTokens  int
}

// KnownModels maps model names to their provider. Unknown models fall back to
// ProviderPatterns.
//
//nolint:gochecknoglobals // static model registry
var KnownModels = map[string]ModelInfo{
	"gpt-4.1-mini": {
		Provider:         ProviderOpenAI,
		MaxContextTokens: 1047576,
		MaxOutputTokens:  32768,
	},
	"gpt-4.1": {
		Provider:         ProviderOpenAI,
		MaxContextTokens: 1047576,
		MaxOutputTokens:  32768,
	},
	"gpt-4o-mini": {
		Provider:         ProviderOpenAI,
		MaxContextTokens: 128000,
		MaxOutputTokens:  16384,
	},
	"claude-sonnet-4-5": {
		Provider:         ProviderAnthropic,
		MaxContextTokens: 200000,
		MaxOutputTokens:  8192,
	},
	"claude-haiku-4-5": {
		Provider:         ProviderAnthropic,
		MaxContextTokens: 200000,
		MaxOutputTokens:  8192,
	},
	"gemini-2.5-flash": {
		Provider:         ProviderGoogle,
		MaxContextTokens: 1048576,
		MaxOutputTokens:  65536,
	},
}

// ProviderPattern infers a provider from a model name prefix.
type ProviderPattern struct {
	Prefix   string
	Provider string
}

//nolint:gochecknoglobals // inference rules
var ProviderPatterns = []ProviderPattern{
	{"claude", ProviderAnthropic},
	{"gpt", ProviderOpenAI},
	{"o3", ProviderOpenAI},
	{"o4", ProviderOpenAI},
	{"gemini", ProviderGoogle},
	{"llama", ProviderOllama},
	{"qwen", ProviderOllama},
	{"mistral", ProviderOllama},
	{"ollama:", ProviderOllama},
}

// GetModelProvider returns the API provider for a model, checking KnownModels
// before ProviderPatterns.
func GetModelProvider(modelName string) (string, error) {
	if info, exists := KnownModels[modelName]; exists {
		return info.Provider, nil
	}
	for i := range ProviderPatterns {
		if strings.HasPrefix(modelName, ProviderPatterns[i].Prefix) {
			return ProviderPatterns[i].Provider, nil
		}
	}
	return "", fmt.Errorf("unknown model '%s': no known provider mapping or pattern match", modelName)
}

// EvaluatorConfig configures the adaptive follow-up evaluator.
type EvaluatorConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Model            string        `yaml:"model"`
	Provider         string        `yaml:"provider,omitempty"` // empty = inferred from model
	Temperature      float64       `yaml:"temperature"`
	MaxTokens        int           `yaml:"max_tokens"`
	Timeout          time.Duration `yaml:"timeout"`
	MaxContextTokens int           `yaml:"max_context_tokens"`
}

// InterviewConfig configures the branching engine.
type InterviewConfig struct {
	MaxFollowUpsPerQuestion *int `yaml:"max_follow_ups_per_question,omitempty"`
}

// FollowUpCap returns the configured cap, defaulting to DefaultMaxFollowUps.
func (c InterviewConfig) FollowUpCap() int {
	if c.MaxFollowUpsPerQuestion == nil {
		return DefaultMaxFollowUps
	}
	return *c.MaxFollowUpsPerQuestion
}

// Config is the complete configuration file.
type Config struct {
	DatabasePath  string          `yaml:"database_path"`
	MetricsAddr   string          `yaml:"metrics_addr,omitempty"`
	PrometheusURL string          `yaml:"prometheus_url,omitempty"`
	Debug         bool            `yaml:"debug"`
	Evaluator     EvaluatorConfig `yaml:"evaluator"`
	Interview     InterviewConfig `yaml:"interview"`
}

// GetConfig returns the current global config BY VALUE.
func GetConfig() (Config, error) {
	mu.RLock()
	defer mu.RUnlock()
	if config == nil {
		return Config{}, fmt.Errorf("config not initialized - call LoadConfig first")
	}
	return *config, nil
}

// SetConfigForTesting sets the global config. Pass nil to reset.
func SetConfigForTesting(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	config = cfg
}

// LoadConfig reads the YAML file at path into the global singleton. A missing
// file yields the defaults. ${VAR} placeholders are expanded from the
// environment before parsing.
func LoadConfig(path string) error {
	loaded, err := ReadConfig(path)
	if err != nil {
		return err
	}
	mu.Lock()
	config = loaded
	mu.Unlock()
	return nil
}

// ReadConfig parses, defaults and validates a config file without touching the
// global instance.
func ReadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		getLogger().Info("Config file %s not found, using defaults", path)
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		getLogger().Info("Loading config from %s", path)
		if err := yaml.Unmarshal([]byte(expandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	applyDefaults(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnv(s string) string {
	return envVarRegex.ReplaceAllStringFunc(s, func(match string) string {
		if value := os.Getenv(match[2 : len(match)-1]); value != "" {
			return value
		}
		return match
	})
}

// DefaultConfig returns a config with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{
		Evaluator: EvaluatorConfig{Enabled: true},
	}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = DefaultDatabasePath
	}
	ev := &cfg.Evaluator
	if ev.Model == "" {
		ev.Model = DefaultModel
	}
	if ev.Temperature == 0 {
		ev.Temperature = DefaultTemperature
	}
	if ev.MaxTokens == 0 {
		ev.MaxTokens = DefaultMaxTokens
	}
	if ev.Timeout == 0 {
		ev.Timeout = DefaultEvaluatorTimeout
	}
	if ev.MaxContextTokens == 0 {
		ev.MaxContextTokens = DefaultMaxContextTokens
	}
}

func validateConfig(cfg *Config) error {
	if n := cfg.Interview.FollowUpCap(); n < 0 || n > MaxFollowUpsPerQuestionCap {
		return fmt.Errorf("interview.max_follow_ups_per_question must be between 0 and %d, got %d", MaxFollowUpsPerQuestionCap, n)
	}
	ev := cfg.Evaluator
	if ev.Temperature < 0 || ev.Temperature > 2 {
		return fmt.Errorf("evaluator.temperature must be between 0 and 2, got %v", ev.Temperature)
	}
	if ev.MaxTokens < 0 || ev.MaxContextTokens < 0 || ev.Timeout < 0 {
		return fmt.Errorf("evaluator limits must not be negative")
	}
	if ev.Provider != "" {
		switch ev.Provider {
		case ProviderOpenAI, ProviderAnthropic, ProviderGoogle, ProviderOllama:
		default:
			return fmt.Errorf("unknown evaluator provider: %s", ev.Provider)
		}
	} else if _, err := GetModelProvider(ev.Model); err != nil {
		return err
	}
	return nil
}

// EvaluatorProvider returns the explicit provider or the one inferred from the model.
func (c EvaluatorConfig) EvaluatorProvider() (string, error) {
	if c.Provider != "" {
		return c.Provider, nil
	}
	return GetModelProvider(c.Model)
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file without overriding
// variables already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	getLogger().Debug("Loaded environment from %s", path)
	return nil
}

// GetAPIKey returns the credential for a provider from the decrypted secrets
// file or the environment. For Ollama it returns the host URL.
func GetAPIKey(provider string) (string, error) {
	var envVar string
	switch provider {
	case ProviderAnthropic:
		envVar = EnvAnthropicAPIKey
	case ProviderOpenAI:
		envVar = EnvOpenAIAPIKey
	case ProviderGoogle:
		envVar = EnvGoogleAPIKey
	case ProviderOllama:
		if host, err := GetSecret(EnvOllamaHost); err == nil && host != "" {
			return host, nil
		}
		return defaultOllamaHost, nil
	default:
		return "", fmt.Errorf("unknown provider: %s", provider)
	}

	key, err := GetSecret(envVar)
	if err == nil && key != "" {
		return key, nil
	}
	return "", fmt.Errorf("API key not found: %s not found in secrets file or environment variables", envVar)
}
