// Package metrics records interview events in Prometheus and queries the
// aggregated results back.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

// InterviewStats aggregates interview metrics across all sessions.
type InterviewStats struct {
	Evaluations         map[string]int64 `json:"evaluations"`
	FollowUps           map[string]int64 `json:"follow_ups"`
	InterviewsReviewed  int64            `json:"interviews_reviewed"`
	InterviewsConfirmed int64            `json:"interviews_confirmed"`
}

// ModelUsage aggregates evaluator token usage for one model.
type ModelUsage struct {
	Model            string `json:"model"`
	Requests         int64  `json:"requests"`
	FailedRequests   int64  `json:"failed_requests"`
	PromptTokens     int64  `json:"prompt_tokens"`
	CompletionTokens int64  `json:"completion_tokens"`
	TotalTokens      int64  `json:"total_tokens"`
}

// QueryService provides methods to query metrics from Prometheus.
type QueryService struct {
	client   api.Client
	queryAPI v1.API
}

// NewQueryService creates a new metrics query service.
func NewQueryService(prometheusURL string) (*QueryService, error) {
	client, err := api.NewClient(api.Config{
		Address: prometheusURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client: %w", err)
	}

	return &QueryService{
		client:   client,
		queryAPI: v1.NewAPI(client),
	}, nil
}

// vector runs an instant query and returns its samples.
func (q *QueryService) vector(ctx context.Context, query string) (model.Vector, error) {
	result, _, err := q.queryAPI.Query(ctx, query, time.Now())
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", query, err)
	}
	vector, ok := result.(model.Vector)
	if !ok {
		return nil, nil
	}
	return vector, nil
}

// scalar returns the first sample of an aggregate query, or 0.
func (q *QueryService) scalar(ctx context.Context, query string) (int64, error) {
	vector, err := q.vector(ctx, query)
	if err != nil {
		return 0, err
	}
	if len(vector) == 0 {
		return 0, nil
	}
	return int64(vector[0].Value), nil
}

// byLabel sums a query result into label value -> count.
func (q *QueryService) byLabel(ctx context.Context, query string, label model.LabelName) (map[string]int64, error) {
	vector, err := q.vector(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(vector))
	for _, sample := range vector {
		out[string(sample.Metric[label])] += int64(sample.Value)
	}
	return out, nil
}

// GetInterviewStats retrieves evaluator outcomes, follow-ups and phase counts.
func (q *QueryService) GetInterviewStats(ctx context.Context) (*InterviewStats, error) {
	evaluations, err := q.byLabel(ctx, `sum by (outcome) (interview_evaluations_total)`, "outcome")
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluations: %w", err)
	}
	followUps, err := q.byLabel(ctx, `sum by (origin) (interview_follow_ups_total)`, "origin")
	if err != nil {
		return nil, fmt.Errorf("failed to query follow-ups: %w", err)
	}
	reviewed, err := q.scalar(ctx, `sum(interview_phase_transitions_total{to="review"})`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviewed interviews: %w", err)
	}
	confirmed, err := q.scalar(ctx, `sum(interview_phase_transitions_total{to="complete"})`)
	if err != nil {
		return nil, fmt.Errorf("failed to query confirmed interviews: %w", err)
	}

	return &InterviewStats{
		Evaluations:         evaluations,
		FollowUps:           followUps,
		InterviewsReviewed:  reviewed,
		InterviewsConfirmed: confirmed,
	}, nil
}

// GetModelUsage retrieves evaluator request and token totals broken down by model.
func (q *QueryService) GetModelUsage(ctx context.Context) (map[string]*ModelUsage, error) {
	result := make(map[string]*ModelUsage)
	usage := func(name string) *ModelUsage {
		u, ok := result[name]
		if !ok {
			u = &ModelUsage{Model: name}
			result[name] = u
		}
		return u
	}

	tokens, err := q.vector(ctx, `sum by (model, type) (llm_tokens_total)`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens: %w", err)
	}
	for _, sample := range tokens {
		u := usage(string(sample.Metric["model"]))
		switch sample.Metric["type"] {
		case "prompt":
			u.PromptTokens += int64(sample.Value)
		case "completion":
			u.CompletionTokens += int64(sample.Value)
		}
	}

	requests, err := q.vector(ctx, `sum by (model, status) (llm_requests_total)`)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	for _, sample := range requests {
		u := usage(string(sample.Metric["model"]))
		u.Requests += int64(sample.Value)
		if sample.Metric["status"] == "error" {
			u.FailedRequests += int64(sample.Value)
		}
	}

	for _, u := range result {
		u.TotalTokens = u.PromptTokens + u.CompletionTokens
	}
	return result, nil
}
