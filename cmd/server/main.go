// Command server starts the AI hiring evaluator HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/hireloop/ai-hiring-evaluator/internal/adapter/ai"
	"github.com/hireloop/ai-hiring-evaluator/internal/adapter/cache"
	"github.com/hireloop/ai-hiring-evaluator/internal/adapter/httpserver"
	"github.com/hireloop/ai-hiring-evaluator/internal/adapter/observability"
	"github.com/hireloop/ai-hiring-evaluator/internal/adapter/repo/memory"
	"github.com/hireloop/ai-hiring-evaluator/internal/adapter/repo/postgres"
	"github.com/hireloop/ai-hiring-evaluator/internal/app"
	"github.com/hireloop/ai-hiring-evaluator/internal/config"
	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
	"github.com/hireloop/ai-hiring-evaluator/internal/service/fingerprint"
	"github.com/hireloop/ai-hiring-evaluator/internal/service/questionbank"
	"github.com/hireloop/ai-hiring-evaluator/internal/usecase"
)

// redisPinger adapts *redis.Client to the readiness check surface.
type redisPinger struct{ c *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.c.Ping(ctx).Err() }

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()

	// Inference providers. Each one self-reports availability from its own
	// configuration, so constructing the full set is harmless.
	hf := ai.NewHuggingFace(cfg)
	providers := []domain.Provider{
		ai.NewOpenRouter(cfg),
		ai.NewDeepSeek(cfg),
		hf,
		ai.NewOllama(cfg),
	}
	if cfg.GeminiAPIKey != "" {
		gem, err := ai.NewGemini(ctx, cfg)
		if err != nil {
			slog.Warn("gemini client init failed", slog.Any("error", err))
		} else {
			defer func() { _ = gem.Close() }()
			providers = append(providers, gem)
		}
	}
	if cfg.IsDev() && !anyAvailable(providers) {
		slog.Warn("no inference provider configured, falling back to stub responses")
		providers = append(providers, ai.NewStub())
	}

	// Judgment cache (optional).
	var rdb *redis.Client
	var judgments domain.JudgmentCache
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass})
		judgments = cache.NewJudgmentCache(rdb, cfg.CacheTTL)
	}

	// Fingerprint corpus: PostgreSQL when configured, in-memory otherwise.
	var store domain.FingerprintStore
	var dbPinger app.Pinger
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("db connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		repo := postgres.NewFingerprintRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			slog.Error("db schema setup failed", slog.Any("error", err))
			os.Exit(1)
		}
		store = repo
		dbPinger = pool
	} else {
		slog.Warn("DATABASE_URL not set, resume fingerprints are in-memory only")
		store = memory.NewFingerprintStore()
	}

	bank, err := questionbank.Load(cfg.QuestionBankPath)
	if err != nil {
		slog.Error("question bank load failed", slog.Any("error", err))
		os.Exit(1)
	}

	orch := usecase.NewOrchestrator(cfg, judgments, providers...)
	engine := fingerprint.NewEngine(store, cfg.SimilarityThreshold)

	var redisCheckSrc app.RedisPinger
	if rdb != nil {
		redisCheckSrc = redisPinger{c: rdb}
	}
	dbCheck, redisCheck := app.BuildReadinessChecks(dbPinger, redisCheckSrc)

	srv := httpserver.NewServer(cfg,
		usecase.NewInterviewService(orch),
		usecase.NewQuestionService(cfg, orch, bank),
		usecase.NewAssignmentService(orch),
		usecase.NewResumeService(orch, engine),
		usecase.NewProctorService(cfg, hf),
		dbCheck, redisCheck)

	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port), slog.String("env", cfg.AppEnv))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}

func anyAvailable(providers []domain.Provider) bool {
	for _, p := range providers {
		if p.Available() {
			return true
		}
	}
	return false
}
