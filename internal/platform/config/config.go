package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	StoreURL       string        `env:"WOOCOMMERCE_STORE_URL"`
	StoreKey       string        `env:"WOOCOMMERCE_API_KEY"`
	StoreSecret    string        `env:"WOOCOMMERCE_API_SECRET"`
	RequestTimeout time.Duration `env:"STORE_REQUEST_TIMEOUT" default:"10s"`
	StoreRateLimit float64       `env:"STORE_RATE_LIMIT" default:"5"`

	BotToken   string `env:"TELEGRAM_BOT_TOKEN"`
	AlertChat  int64  `env:"TELEGRAM_CHAT_ID"`
	AdminIDs   string `env:"ADMIN_IDS"`
	WebhookKey string `env:"WEBHOOK_SECRET"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	PollInterval    time.Duration `env:"POLL_INTERVAL" default:"1h"`
	OrderFetchLimit int           `env:"ORDER_FETCH_LIMIT" default:"10"`
	OutageThreshold int           `env:"OUTAGE_THRESHOLD" default:"3"`
	PageSize        int           `env:"PAGE_SIZE" default:"5"`
	SessionTTL      time.Duration `env:"SESSION_TTL" default:"15m"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"WOOCOMMERCE_STORE_URL":  cfg.StoreURL,
		"WOOCOMMERCE_API_KEY":    cfg.StoreKey,
		"WOOCOMMERCE_API_SECRET": cfg.StoreSecret,
		"TELEGRAM_BOT_TOKEN":     cfg.BotToken,
		"ADMIN_IDS":              cfg.AdminIDs,
		"WEBHOOK_SECRET":         cfg.WebhookKey,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if cfg.AlertChat == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	if cfg.OutageThreshold < 1 {
		return fmt.Errorf("OUTAGE_THRESHOLD must be at least 1")
	}
	if cfg.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be at least 1")
	}
	if _, err := AdminList(cfg.AdminIDs); err != nil {
		return err
	}

	return nil
}

// AdminList parses the comma-separated ADMIN_IDS allow-list.
func AdminList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_IDS contains invalid entry %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("ADMIN_IDS must contain at least one numeric ID")
	}
	return ids, nil
}
