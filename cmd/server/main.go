// Command server starts the interview evaluation HTTP API.
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
	"time"

	"github.com/redis/go-redis/v9"

	httpserver "github.com/fairyhunter13/interview-eval/internal/adapter/httpserver"
	"github.com/fairyhunter13/interview-eval/internal/adapter/observability"
	"github.com/fairyhunter13/interview-eval/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/interview-eval/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/interview-eval/internal/app"
	"github.com/fairyhunter13/interview-eval/internal/config"
	"github.com/fairyhunter13/interview-eval/internal/service/ratelimiter"
	"github.com/fairyhunter13/interview-eval/internal/usecase"
)

func main() {
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
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	questionRepo := postgres.NewQuestionRepo(pool)
	submissionRepo := postgres.NewSubmissionRepo(pool)
	resultRepo := postgres.NewResultRepo(pool)

	if cfg.DataRetentionDays > 0 {
		cleanupSvc := postgres.NewCleanupService(pool, cfg.DataRetentionDays)
		go cleanupSvc.RunPeriodic(ctx, cfg.CleanupInterval)
		slog.Info("cleanup service started",
			slog.Int("retention_days", cfg.DataRetentionDays),
			slog.Duration("interval", cfg.CleanupInterval))
	}

	producer, err := redpanda.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		slog.Error("queue producer connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := producer.Close(); err != nil {
			slog.Error("failed to close queue producer", slog.Any("error", err))
		}
	}()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() { _ = rdb.Close() }()
	limiter := ratelimiter.NewRedisLuaLimiter(rdb, pool, map[string]ratelimiter.BucketConfig{
		"submit": ratelimiter.NewBucketConfigFromPerMinute(cfg.RateLimitPerMin),
	})
	if err := limiter.WarmFromPostgres(ctx); err != nil {
		slog.Warn("rate limit warm-up failed", slog.Any("error", err))
	}

	submitSvc := usecase.NewSubmitService(questionRepo, submissionRepo, producer)
	transcriptSvc := usecase.NewTranscriptService(submitSvc, cfg.MaxAnswerBytes)
	resultSvc := usecase.NewResultService(submissionRepo, resultRepo)
	questionSvc := usecase.NewQuestionService(questionRepo)

	dbCheck, redisCheck, kafkaCheck := app.BuildReadinessChecks(pool, rdb, producer)

	srv := httpserver.NewServer(cfg, submitSvc, transcriptSvc, resultSvc, questionSvc, dbCheck, redisCheck, kafkaCheck)
	handler := app.BuildRouter(cfg, srv, limiter)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
