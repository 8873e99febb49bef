// Command worker consumes evaluation tasks from the queue and scores
// submitted answers.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fairyhunter13/interview-eval/internal/adapter/observability"
	"github.com/fairyhunter13/interview-eval/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/interview-eval/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/interview-eval/internal/config"
	"github.com/fairyhunter13/interview-eval/internal/eval"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(":9090", mux); err != nil {
			slog.Error("worker metrics server error", slog.Any("error", err))
		}
	}()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	slog.Info("starting worker", slog.String("env", cfg.AppEnv))

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("database connection failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	questionRepo := postgres.NewQuestionRepo(pool)
	submissionRepo := postgres.NewSubmissionRepo(pool)
	resultRepo := postgres.NewResultRepo(pool)

	var engineOpts []eval.Option
	if cfg.ScoreJitter {
		engineOpts = append(engineOpts, eval.WithJitter(eval.NewBoundedJitter(cfg.ScoreJitterSeed)))
	}
	engine := eval.NewEngine(engineOpts...)

	handler := redpanda.NewEvaluationHandler(questionRepo, submissionRepo, resultRepo, engine)
	maxElapsed, initial, maxInterval, multiplier := cfg.RetryBackoff()
	handler.NewBackOff = func() backoff.BackOff {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = initial
		bo.MaxInterval = maxInterval
		bo.MaxElapsedTime = maxElapsed
		bo.Multiplier = multiplier
		return bo
	}

	minWorkers := cfg.WorkerMinWorkers
	if minWorkers < 1 {
		minWorkers = 1
	}
	maxWorkers := cfg.WorkerMaxWorkers
	if maxWorkers < minWorkers {
		maxWorkers = minWorkers
	}
	slog.Info("worker scaling configuration",
		slog.Int("min_workers", minWorkers),
		slog.Int("max_workers", maxWorkers))

	worker, err := redpanda.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup, handler, minWorkers, maxWorkers)
	if err != nil {
		slog.Error("redpanda consumer init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := worker.Close(); err != nil {
			slog.Error("failed to close worker", slog.Any("error", err))
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		slog.Info("starting redpanda consumer")
		if err := worker.Start(runCtx); err != nil {
			slog.Error("worker error", slog.Any("error", err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigCh
	slog.Info("signal received, shutting down", slog.String("signal", sig.String()))
	cancel()
	time.Sleep(500 * time.Millisecond)
	slog.Info("worker stopped")
}
