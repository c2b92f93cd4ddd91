package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"

	"github.com/weks-labs/rewards-bot/internal/bot"
	"github.com/weks-labs/rewards-bot/internal/dedup"
	apperrors "github.com/weks-labs/rewards-bot/internal/errors"
	"github.com/weks-labs/rewards-bot/internal/health"
	"github.com/weks-labs/rewards-bot/internal/jobs"
	jobhandlers "github.com/weks-labs/rewards-bot/internal/jobs/handlers"
	"github.com/weks-labs/rewards-bot/internal/ledger"
	"github.com/weks-labs/rewards-bot/internal/lifecycle"
	"github.com/weks-labs/rewards-bot/internal/ratelimit"
	"github.com/weks-labs/rewards-bot/internal/reward"
	"github.com/weks-labs/rewards-bot/internal/server"
	"github.com/weks-labs/rewards-bot/pkg/config"
	"github.com/weks-labs/rewards-bot/pkg/graceful"
	"github.com/weks-labs/rewards-bot/pkg/logger"
	appredis "github.com/weks-labs/rewards-bot/pkg/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			slog.Error("failed to initialize sentry", slog.Any("error", err))
			os.Exit(1)
		}
		defer sentry.Flush(2 * time.Second)
	}

	log := logger.New(logger.Options{
		Level:         cfg.LogLevel,
		SentryEnabled: cfg.Sentry.Enabled,
		File:          cfg.Log.File,
		MaxSizeMB:     cfg.Log.MaxSizeMB,
		MaxBackups:    cfg.Log.MaxBackups,
		MaxAgeDays:    cfg.Log.MaxAgeDays,
	})
	slog.SetDefault(log)

	log.Info("starting rewards bot",
		slog.String("env", cfg.AppEnv),
		slog.String("bot_mode", cfg.Bot.Mode),
		slog.String("http_port", cfg.Server.Port),
	)

	config.Watch(v, log, func(next *config.Config) {
		// Only logging verbosity is applied live; transport and store
		// settings require a restart.
		log.Info("config reloaded", slog.String("log_level", next.LogLevel))
	})

	redisClient, err := appredis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}

	store := ledger.NewRedisStore(redisClient, log)
	errHandler := apperrors.NewHandler(log, cfg.Sentry.Enabled)

	tb, err := bot.NewTelebot(cfg.Bot)
	if err != nil {
		log.Error("failed to connect to telegram", slog.Any("error", err))
		os.Exit(1)
	}

	processor := reward.NewProcessor(store, reward.Config{
		DailyCap:      cfg.Rewards.DailyCap,
		CoinsPerUnit:  cfg.Rewards.CoinsPerCorrect,
		ReferralBonus: cfg.Rewards.ReferralBonus,
	}, bot.NewNotifier(tb), log)

	b := bot.New(tb, cfg.Bot, bot.Dependencies{
		Processor:  processor,
		Deduper:    dedup.New(redisClient, log),
		ErrHandler: errHandler,
		Log:        log,
	})

	var limiter ratelimit.Limiter
	switch cfg.RateLimit.Backend {
	case "memory":
		limiter = ratelimit.NewMemoryLimiter()
	default:
		limiter = ratelimit.NewRedisLimiter(redisClient, log)
	}

	checker := health.NewChecker(log)
	checker.AddCheck("redis", health.NewRedisChecker(redisClient.Client))
	checker.AddCheck("telegram", health.NewTelegramChecker(tb))

	api := server.New(server.Options{
		Processor:  processor,
		BotToken:   cfg.Bot.Token,
		Health:     checker,
		Limiter:    limiter,
		RateLimit:  cfg.RateLimit,
		ErrHandler: errHandler,
		Log:        log,
	})

	httpServer := graceful.NewServer(log, &http.Server{
		Addr:    cfg.Server.Port,
		Handler: api.Handler(),
	}, cfg.Server.ShutdownTimeout)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	scheduler := jobs.NewScheduler(redisOpt, cfg.Jobs.ReconcileCron, log)
	if err := scheduler.RegisterTasks(); err != nil {
		log.Error("failed to register scheduled tasks", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Run()

	worker := jobs.NewWorker(redisOpt, log)
	worker.RegisterHandler(jobs.TaskTypeLeaderboardReconcile, jobhandlers.NewReconcileHandler(store, log))
	go func() {
		if err := worker.Run(); err != nil {
			log.Error("jobs worker stopped", slog.Any("error", err))
		}
	}()

	go b.Start()

	go func() {
		if err := httpServer.ListenAndServe(ctx); err != nil {
			log.Error("http server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdown := lifecycle.NewShutdown(log)
	shutdown.Register("bot", func(context.Context) error {
		b.Stop()
		return nil
	})
	shutdown.Register("scheduler", func(context.Context) error {
		scheduler.Shutdown()
		return nil
	})
	shutdown.Register("jobs-worker", func(context.Context) error {
		worker.Shutdown()
		return nil
	})
	shutdown.Register("redis", func(context.Context) error {
		return redisClient.Close()
	})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown completed with errors", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("rewards bot stopped")
}
