package metrics

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePrometheus answers instant queries from a table keyed by query text.
func fakePrometheus(t *testing.T, results map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/api/v1/query") {
			http.NotFound(w, r)
			return
		}
		result, ok := results[r.FormValue("query")]
		if !ok {
			result = "[]"
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"success","data":{"resultType":"vector","result":%s}}`, result)
	}))
}

func sample(labels, value string) string {
	return fmt.Sprintf(`{"metric":{%s},"value":[1760400000,%q]}`, labels, value)
}

func TestGetInterviewStats(t *testing.T) {
	srv := fakePrometheus(t, map[string]string{
		`sum by (outcome) (interview_evaluations_total)`: "[" +
			sample(`"outcome":"follow_up"`, "3") + "," +
			sample(`"outcome":"sufficient"`, "5") + "]",
		`sum by (origin) (interview_follow_ups_total)`: "[" +
			sample(`"origin":"policy"`, "4") + "]",
		`sum(interview_phase_transitions_total{to="review"})`:   "[" + sample("", "2") + "]",
		`sum(interview_phase_transitions_total{to="complete"})`: "[" + sample("", "1") + "]",
	})
	defer srv.Close()

	q, err := NewQueryService(srv.URL)
	require.NoError(t, err)

	stats, err := q.GetInterviewStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"follow_up": 3, "sufficient": 5}, stats.Evaluations)
	assert.Equal(t, map[string]int64{"policy": 4}, stats.FollowUps)
	assert.Equal(t, int64(2), stats.InterviewsReviewed)
	assert.Equal(t, int64(1), stats.InterviewsConfirmed)
}

func TestGetInterviewStatsEmpty(t *testing.T) {
	srv := fakePrometheus(t, nil)
	defer srv.Close()

	q, err := NewQueryService(srv.URL)
	require.NoError(t, err)

	stats, err := q.GetInterviewStats(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stats.Evaluations)
	assert.Zero(t, stats.InterviewsConfirmed)
}

func TestGetModelUsage(t *testing.T) {
	srv := fakePrometheus(t, map[string]string{
		`sum by (model, type) (llm_tokens_total)`: "[" +
			sample(`"model":"gpt-4.1-mini","type":"prompt"`, "1200") + "," +
			sample(`"model":"gpt-4.1-mini","type":"completion"`, "300") + "]",
		`sum by (model, status) (llm_requests_total)`: "[" +
			sample(`"model":"gpt-4.1-mini","status":"success"`, "9") + "," +
			sample(`"model":"gpt-4.1-mini","status":"error"`, "1") + "]",
	})
	defer srv.Close()

	q, err := NewQueryService(srv.URL)
	require.NoError(t, err)

	usage, err := q.GetModelUsage(context.Background())
	require.NoError(t, err)
	require.Contains(t, usage, "gpt-4.1-mini")
	assert.Equal(t, &ModelUsage{
		Model:            "gpt-4.1-mini",
		Requests:         10,
		FailedRequests:   1,
		PromptTokens:     1200,
		CompletionTokens: 300,
		TotalTokens:      1500,
	}, usage["gpt-4.1-mini"])
}

func TestQueryServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"status":"error","errorType":"bad_data","error":"parse error"}`)
	}))
	defer srv.Close()

	q, err := NewQueryService(srv.URL)
	require.NoError(t, err)

	_, err = q.GetInterviewStats(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evaluations")
}
