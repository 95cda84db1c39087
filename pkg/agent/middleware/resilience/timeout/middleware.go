// Package timeout bounds each LLM request with a deadline.
package timeout

import (
	"context"
	"time"

	"onboarding/pkg/agent/llm"
)

// Middleware gives every Complete call its own deadline. A non-positive
// duration disables the bound.
func Middleware(duration time.Duration) llm.Middleware {
	return func(next llm.LLMClient) llm.LLMClient {
		if duration <= 0 {
			return next
		}
		return llm.WrapClient(
			func(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
				timeoutCtx, cancel := context.WithTimeout(ctx, duration)
				defer cancel()
				return next.Complete(timeoutCtx, req)
			},
			next.GetModelName,
		)
	}
}
