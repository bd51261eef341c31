package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/corpsite/corpsite/internal/app"
	"github.com/corpsite/corpsite/internal/observability"
	"github.com/corpsite/corpsite/internal/platform/cache"
	"github.com/corpsite/corpsite/internal/platform/db"
	"github.com/corpsite/corpsite/internal/rbac"
	"github.com/corpsite/corpsite/internal/rbac/snapshot"
	"github.com/corpsite/corpsite/internal/roles"
	"github.com/corpsite/corpsite/internal/users"
	"github.com/corpsite/corpsite/internal/view"
	"github.com/corpsite/corpsite/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
	slog.SetDefault(logger)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisOpts := cache.Options{Addr: cfg.RedisAddr}
	var redisClient *redis.Client
	if client, err := cache.New(ctx, redisOpts); err != nil {
		logger.Warn("redis unavailable, snapshot store and job queue disabled", slog.Any("error", err))
	} else {
		redisClient = client
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()
	hierarchy := rbac.NewHierarchy(cfg.RoleLevels)

	rbacService := rbac.NewService(rbac.NewRepository(dbpool), hierarchy, logger)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger, Recorder: metrics}

	if cfg.BootstrapOnStart {
		if _, err := rbacService.SetupDefaultPermissions(ctx); err != nil {
			logger.Error("rbac bootstrap", slog.Any("error", err))
			os.Exit(1)
		}
	}

	rolesService := roles.NewService(roles.NewRepository(dbpool), rbacService, hierarchy, logger)
	usersService := users.NewService(users.NewRepository(dbpool), rbacService, logger)

	engine, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	var (
		snapshotStore *snapshot.RedisStore
		jobClient     *jobs.Client
		inspector     *asynq.Inspector
	)
	if redisClient != nil {
		snapshotStore = snapshot.NewRedisStore(redisClient, hierarchy, cfg.SnapshotTTL)
		jobClient = jobs.NewClient(cache.AsynqOpts(redisOpts))
		defer func() {
			if err := jobClient.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}()
		inspector = asynq.NewInspector(cache.AsynqOpts(redisOpts))
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("job inspector close", slog.Any("error", err))
			}
		}()
	}

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Database:        dbpool,
		RBACHandler:     rbac.NewHandler(logger, rbacService, rbacMiddleware),
		RolesHandler:    roles.NewHandler(logger, rolesService, rbacMiddleware),
		UsersHandler:    users.NewHandler(logger, usersService, rbacMiddleware),
		ViewHandler:     view.NewHandler(logger, engine, rbacService, hierarchy),
		SnapshotHandler: snapshot.NewHandler(logger, rbacService, hierarchy, snapshotStore).WithRecorder(metrics),
		JobHandler:      jobs.NewHandler(inspector, jobClient, rbacMiddleware, logger),
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
