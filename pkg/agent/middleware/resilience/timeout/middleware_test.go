package timeout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"onboarding/pkg/agent/llm"
)

type blockingClient struct{}

func (blockingClient) Complete(ctx context.Context, _ llm.CompletionRequest) (llm.CompletionResponse, error) {
	<-ctx.Done()
	return llm.CompletionResponse{}, ctx.Err()
}

func (blockingClient) GetModelName() string { return "blocking" }

func TestMiddlewareAppliesDeadline(t *testing.T) {
	client := llm.Chain(blockingClient{}, Middleware(20*time.Millisecond))

	start := time.Now()
	_, err := client.Complete(context.Background(), llm.NewCompletionRequest(nil))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, "blocking", client.GetModelName())
}

func TestMiddlewareDisabled(t *testing.T) {
	base := blockingClient{}
	assert.Equal(t, llm.LLMClient(base), Middleware(0)(base))
}
