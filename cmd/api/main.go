package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/waterbot/cmd/mainconfig"
	"github.com/wolfman30/waterbot/internal/admin"
	"github.com/wolfman30/waterbot/internal/api/router"
	"github.com/wolfman30/waterbot/internal/app/bootstrap"
	appconfig "github.com/wolfman30/waterbot/internal/config"
	"github.com/wolfman30/waterbot/pkg/logging"
)

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting waterbot API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"user_store", cfg.UserStore,
		"scheduler_mode", cfg.SchedulerMode,
	)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	fmt.Println("Server exited gracefully")
}

func run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) error {
	store, err := mainconfig.OpenUserStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}

	registry, metricsHandler := setupMetrics()
	bot, err := bootstrap.BuildBot(cfg, store, redisClient, registry, logger)
	if err != nil {
		return err
	}

	scheduler, err := bootstrap.BuildScheduler(cfg, bot.Notifier, logger.With("component", "scheduler"))
	if err != nil {
		return err
	}
	if scheduler != nil {
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	handler := router.New(&router.Config{
		Logger:          logger,
		Webhook:         bot.WebhookHandler(cfg, logger),
		AdminHandler:    admin.NewHandler(store, bot.Notifier, logger.With("component", "admin")),
		AdminAuthSecret: cfg.AdminJWTSecret,
		AdminRateLimit:  cfg.AdminRateLimit,
		AdminBurst:      cfg.AdminBurst,
		MetricsHandler:  metricsHandler,
		HealthChecks:    healthChecks(store, redisClient),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.WebhookTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func setupMetrics() (*prometheus.Registry, http.Handler) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func healthChecks(store *mainconfig.UserStore, redisClient *redis.Client) map[string]router.HealthCheck {
	checks := map[string]router.HealthCheck{}
	if store != nil && store.Ping != nil {
		checks["user_store"] = store.Ping
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	return checks
}
