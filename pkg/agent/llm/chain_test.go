package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingClient struct {
	calls int
}

func (c *recordingClient) Complete(_ context.Context, req CompletionRequest) (CompletionResponse, error) {
	c.calls++
	return CompletionResponse{Content: req.Messages[len(req.Messages)-1].Content}, nil
}

func (c *recordingClient) GetModelName() string { return "recording" }

func tagging(tag string, order *[]string) Middleware {
	return func(next LLMClient) LLMClient {
		return WrapClient(func(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
			*order = append(*order, tag)
			return next.Complete(ctx, req)
		}, next.GetModelName)
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	base := &recordingClient{}
	client := Chain(base, tagging("outer", &order), tagging("inner", &order))

	resp, err := client.Complete(context.Background(), NewCompletionRequest([]CompletionMessage{NewUserMessage("oi")}))
	require.NoError(t, err)

	assert.Equal(t, "oi", resp.Content)
	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.Equal(t, 1, base.calls)
	assert.Equal(t, "recording", client.GetModelName())
}

func TestChainWithoutMiddleware(t *testing.T) {
	base := &recordingClient{}
	assert.Same(t, base, Chain(base))
}

func TestNewCompletionRequestDefaults(t *testing.T) {
	req := NewCompletionRequest(nil)
	assert.Equal(t, DefaultMaxTokens, req.MaxTokens)
	assert.InDelta(t, TemperatureDefault, req.Temperature, 1e-6)
	assert.False(t, req.JSONMode)
}

func TestSplitSystem(t *testing.T) {
	system, rest := SplitSystem([]CompletionMessage{
		NewSystemMessage("a"),
		NewUserMessage("u"),
		NewSystemMessage("b"),
	})
	assert.Equal(t, "a\n\nb", system)
	require.Len(t, rest, 1)
	assert.Equal(t, RoleUser, rest[0].Role)
}

func TestLLMConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LLMConfig
		wantErr bool
	}{
		{"valid", LLMConfig{APIKey: "k", ModelName: "m", MaxTokens: 10, Temperature: 0.3}, false},
		{"no key", LLMConfig{ModelName: "m", MaxTokens: 10}, true},
		{"no model", LLMConfig{APIKey: "k", MaxTokens: 10}, true},
		{"zero tokens", LLMConfig{APIKey: "k", ModelName: "m"}, true},
		{"hot", LLMConfig{APIKey: "k", ModelName: "m", MaxTokens: 10, Temperature: 2.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
