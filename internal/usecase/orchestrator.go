// Package usecase contains application business logic services.
package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hireloop/ai-hiring-evaluator/internal/adapter/observability"
	"github.com/hireloop/ai-hiring-evaluator/internal/config"
	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
)

// Orchestrator runs a task's provider chain in order until one succeeds.
// Providers without credentials are skipped without a call. Sequential by
// construction; a round never fans out.
type Orchestrator struct {
	providers map[string]domain.Provider
	order     map[domain.TaskKind][]string
	timeouts  map[domain.TaskKind]time.Duration
	cache     domain.JudgmentCache
}

// NewOrchestrator wires the provider chains and timeout classes from config.
// cache may be nil to disable judgment caching.
func NewOrchestrator(cfg config.Config, cache domain.JudgmentCache, providers ...domain.Provider) *Orchestrator {
	byName := make(map[string]domain.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Orchestrator{
		providers: byName,
		order: map[domain.TaskKind][]string{
			domain.TaskAnswerAnalysis: cfg.AnswerProviders,
			domain.TaskQuestionGen:    cfg.QuestionProviders,
			domain.TaskAssignment:     cfg.GradingProviders,
			domain.TaskRecommendation: cfg.GradingProviders,
			domain.TaskResumeScoring:  cfg.ResumeProviders,
			domain.TaskPlagiarism:     cfg.ResumeProviders,
		},
		timeouts: map[domain.TaskKind]time.Duration{
			domain.TaskAnswerAnalysis: cfg.AnalysisTimeout,
			domain.TaskQuestionGen:    cfg.GenerationTimeout,
			domain.TaskAssignment:     cfg.GenerationTimeout,
			domain.TaskRecommendation: cfg.GenerationTimeout,
			domain.TaskResumeScoring:  cfg.AnalysisTimeout,
			domain.TaskPlagiarism:     cfg.AnalysisTimeout,
			domain.TaskVision:         cfg.MediaTimeout,
			domain.TaskAudio:          cfg.MediaTimeout,
		},
		cache: cache,
	}
}

// Run invokes the task's providers in order and returns the first raw
// response. Exhaustion of the whole chain is ErrAllProvidersExhausted.
func (o *Orchestrator) Run(ctx domain.Context, task domain.TaskKind, req domain.PromptRequest) (string, domain.JudgmentSource, error) {
	ctx, span := otel.Tracer("usecase").Start(ctx, "orchestrator.run")
	defer span.End()
	span.SetAttributes(attribute.String("task", string(task)))

	timeout := o.timeouts[task]
	var lastErr error
	for _, name := range o.order[task] {
		p, ok := o.providers[name]
		if !ok {
			slog.Debug("provider not registered", slog.String("provider", name), slog.String("task", string(task)))
			continue
		}
		if !p.Available() {
			slog.Debug("provider skipped, not configured", slog.String("provider", name), slog.String("task", string(task)))
			continue
		}

		callCtx := ctx
		cancel := func() {}
		if timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, timeout)
		}
		start := time.Now()
		out, err := p.Invoke(callCtx, req)
		cancel()
		observability.ObserveAIRequest(name, string(task), time.Since(start), err)
		if err != nil {
			slog.Warn("provider call failed",
				slog.String("provider", name),
				slog.String("task", string(task)),
				slog.Any("error", err))
			lastErr = err
			continue
		}
		slog.Debug("provider call succeeded",
			slog.String("provider", name),
			slog.String("task", string(task)),
			slog.Duration("duration", time.Since(start)))
		return out, domain.JudgmentSource(name), nil
	}
	if lastErr != nil {
		return "", "", fmt.Errorf("op=orchestrator.Run: task=%s: %w: last error: %v", task, domain.ErrAllProvidersExhausted, lastErr)
	}
	return "", "", fmt.Errorf("op=orchestrator.Run: task=%s: %w: no providers configured", task, domain.ErrAllProvidersExhausted)
}

// Judge runs the chain and extracts a structured judgment, consulting the
// cache first so identical inputs skip provider spend.
func (o *Orchestrator) Judge(ctx domain.Context, task domain.TaskKind, req domain.PromptRequest) (domain.Judgment, error) {
	key := judgmentKey(task, req)
	if o.cache != nil {
		if j, ok, err := o.cache.Get(ctx, key); err == nil && ok {
			slog.Debug("judgment cache hit", slog.String("task", string(task)))
			return j, nil
		}
	}

	raw, source, err := o.Run(ctx, task, req)
	if err != nil {
		return domain.Judgment{}, err
	}

	j, layer := Extract(raw)
	j.Source = source
	observability.ExtractionLayerTotal.WithLabelValues(string(layer)).Inc()

	if o.cache != nil {
		if err := o.cache.Set(ctx, key, j); err != nil {
			slog.Warn("judgment cache set failed", slog.Any("error", err))
		}
	}
	return j, nil
}

func judgmentKey(task domain.TaskKind, req domain.PromptRequest) string {
	h := sha256.Sum256([]byte(string(task) + "|" + req.System + "|" + req.User))
	return hex.EncodeToString(h[:])
}
