package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/app"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/bot"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/detector"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/dispatch"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/metrics"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/platform/config"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/platform/logging"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/policy"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/server"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/session"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/state"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/telegram"
	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/woo"
)

const productFetchLimit = 50

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// slog is not initialized yet
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// setupState prefers Postgres when DATABASE_URL is set; without it the
// durable state lives in memory and resets on restart.
func setupState(ctx context.Context, cfg *config.Config) (domain.StateRepository, func()) {
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, settings and alert history will not survive restarts")
		return state.NewMemory(), func() {}
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	repo, err := state.NewPostgres(ctx, pool)
	if err != nil {
		slog.Error("Failed to prepare state storage", "error", err)
		os.Exit(1)
	}
	return repo, pool.Close
}

func setupSessions(ctx context.Context, cfg *config.Config, clock clockwork.Clock) (domain.SessionRepository, func()) {
	if cfg.RedisURL == "" {
		return session.NewMemory(cfg.SessionTTL, clock), func() {}
	}

	opts, err := goredis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to parse REDIS_URL", "error", err)
		os.Exit(1)
	}
	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return session.NewRedis(client, cfg.SessionTTL, clock), func() { _ = client.Close() }
}

func main() {
	clock := clockwork.NewRealClock()
	cfg := setupConfig()

	logging.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stateRepo, closeState := setupState(ctx, cfg)
	defer closeState()

	sessions, closeSessions := setupSessions(ctx, cfg, clock)
	defer closeSessions()

	admins, err := config.AdminList(cfg.AdminIDs)
	if err != nil {
		slog.Error("Invalid admin allow-list", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	store, err := woo.New(cfg.StoreURL, cfg.StoreKey, cfg.StoreSecret, cfg.RequestTimeout, cfg.StoreRateLimit)
	if err != nil {
		slog.Error("Failed to create store client", "error", err)
		os.Exit(1)
	}
	transport := telegram.New(cfg.BotToken, cfg.RequestTimeout)

	records, err := stateRepo.AlertRecords(ctx)
	if err != nil {
		slog.Error("Failed to load alert records", "error", err)
		os.Exit(1)
	}

	engine := policy.NewEngine(cfg.OutageThreshold, records)
	det := detector.New(store, clock, productFetchLimit, cfg.OrderFetchLimit)
	disp := dispatch.New(transport, cfg.AlertChat, clock, m)
	pollSvc := app.NewService(det, engine, disp, stateRepo, clock, cfg.PollInterval, m)

	router := bot.NewRouter(store, stateRepo, sessions, admins, cfg.PageSize, cfg.OrderFetchLimit)
	srv := server.NewServer(router, transport, cfg.WebhookKey, cfg.Port, registry, m)

	go pollSvc.Run(ctx)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
		slog.Info("Shutdown signal received, cleaning up...")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	slog.Info("Shutdown complete")
}
