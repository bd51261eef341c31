package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/corpsite/corpsite/internal/app"
	"github.com/corpsite/corpsite/internal/observability"
	"github.com/corpsite/corpsite/internal/platform/cache"
	"github.com/corpsite/corpsite/internal/platform/db"
	"github.com/corpsite/corpsite/internal/rbac"
	"github.com/corpsite/corpsite/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: int32(cfg.WorkerConcurrency) + 1})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	rbacService := rbac.NewService(rbac.NewRepository(pool), rbac.NewHierarchy(cfg.RoleLevels), logger)
	bootstrapJob := jobs.NewBootstrapJob(rbacService, logger, observability.NewMetrics())

	var cron []jobs.CronRegistration
	if cfg.BootstrapCron != "" {
		task, err := jobs.NewBootstrapTask(jobs.BootstrapPayload{Reason: "cron"})
		if err != nil {
			logger.Error("build bootstrap task", slog.Any("error", err))
			os.Exit(1)
		}
		cron = append(cron, jobs.CronRegistration{Spec: cfg.BootstrapCron, Task: task, Options: []asynq.Option{asynq.MaxRetry(3)}})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   cache.AsynqOpts(cache.Options{Addr: cfg.RedisAddr}),
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskRBACBootstrap, Handler: bootstrapJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started", slog.Int("concurrency", cfg.WorkerConcurrency), slog.Bool("cron", len(cron) > 0))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
