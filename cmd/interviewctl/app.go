package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"onboarding/pkg/agent"
	llmmetrics "onboarding/pkg/agent/middleware/metrics"
	"onboarding/pkg/config"
	"onboarding/pkg/interview"
	"onboarding/pkg/logx"
	"onboarding/pkg/metrics"
	"onboarding/pkg/onboarding"
	"onboarding/pkg/persistence"
)

// app holds the wired components of one command invocation.
type app struct {
	cfg      config.Config
	store    *persistence.Store
	service  *onboarding.Service
	usage    *llmmetrics.InternalRecorder
	registry *prometheus.Registry
	metrics  *http.Server
	logger   *logx.Logger
}

// newApp opens the store and wires the engine. withEvaluator builds the LLM
// client; read-only commands skip it.
func newApp(withEvaluator bool) (*app, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}

	store, err := persistence.Open(cfg.DatabasePath)
	if err != nil {
		return nil, logx.Wrap(err, "open session store")
	}

	a := &app{
		cfg:      cfg,
		store:    store,
		usage:    llmmetrics.NewInternalRecorder(),
		registry: prometheus.NewRegistry(),
		logger:   logx.NewLogger("interviewctl"),
	}
	interviewRecorder := metrics.NewInterviewRecorder(a.registry)

	evaluator := interview.NewLLMEvaluator(nil, interview.WithEvaluatorRecorder(interviewRecorder))
	if withEvaluator {
		llmRecorder := llmmetrics.Multi(llmmetrics.NewPrometheusRecorder(a.registry), a.usage)
		c, err := agent.NewLLMClientFactory(cfg.Evaluator, llmRecorder).CreateEvaluatorClient()
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		evaluator = interview.NewLLMEvaluator(c,
			interview.WithTemperature(float32(cfg.Evaluator.Temperature)),
			interview.WithMaxTokens(cfg.Evaluator.MaxTokens),
			interview.WithMaxContextTokens(cfg.Evaluator.MaxContextTokens),
			interview.WithEvaluatorRecorder(interviewRecorder),
		)
	}

	engine := interview.NewEngine(evaluator,
		interview.WithMaxFollowUps(cfg.Interview.FollowUpCap()),
		interview.WithRecorder(interviewRecorder),
	)
	a.service = onboarding.NewService(store, engine)
	return a, nil
}

// startMetrics serves /metrics and /healthz when metrics_addr is configured.
func (a *app) startMetrics() {
	if a.cfg.MetricsAddr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{Registry: a.registry}))
	mux.Handle("/healthz", healthHandler(a.store.DB()))
	a.metrics = &http.Server{
		Addr:              a.cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("Metrics server stopped: %v", err)
		}
	}()
	a.logger.Info("Serving metrics on %s/metrics", a.cfg.MetricsAddr)
}

func (a *app) close() {
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.metrics.Shutdown(ctx)
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("%v", err)
	}
}

// sessionUsageLine summarizes evaluator usage for a session.
func (a *app) sessionUsageLine(sessionID string) string {
	u := a.usage.GetSessionUsage(sessionID)
	if u == nil || u.RequestCount == 0 {
		return ""
	}
	return fmt.Sprintf("Evaluator: %d requests (%d failed), %d prompt + %d completion tokens",
		u.RequestCount, u.FailedCount, u.PromptTokens, u.CompletionTokens)
}
