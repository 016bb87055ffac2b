package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultEndpoint       = "https://practicum.yandex.ru/api/user_api/homework_statuses/"
	DefaultPollInterval   = 10 * time.Minute
	MinPollInterval       = time.Second
	DefaultRequestTimeout = 30 * time.Second
	DefaultSendRatePerSec = 1
)

// ErrMissingSetting is returned when a required setting is absent from the environment.
var ErrMissingSetting = errors.New("required setting is not set")

// AppConfig holds all configuration for the application
type AppConfig struct {
	PracticumToken   string
	PracticumURL     string
	TelegramToken    string
	TelegramChatID   int64
	PollInterval     time.Duration
	RequestTimeout   time.Duration
	InitialCursor    int64
	HasInitialCursor bool // false means "start from the current time"
	SendRatePerSec   int
	MetricsAddr      string // empty disables the /metrics endpoint
	LogLevel         string
	Environment      string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.PracticumToken = os.Getenv("PRACTICUM_TOKEN")
	if cfg.PracticumToken == "" {
		return nil, fmt.Errorf("PRACTICUM_TOKEN: %w", ErrMissingSetting)
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN: %w", ErrMissingSetting)
	}

	chatIDStr := os.Getenv("TELEGRAM_CHAT_ID")
	if chatIDStr == "" {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID: %w", ErrMissingSetting)
	}
	cfg.TelegramChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
	}

	cfg.PracticumURL = os.Getenv("PRACTICUM_ENDPOINT")
	if cfg.PracticumURL == "" {
		cfg.PracticumURL = DefaultEndpoint
	}

	cfg.PollInterval, err = durationOrDefault("POLL_INTERVAL", DefaultPollInterval, MinPollInterval)
	if err != nil {
		return nil, err
	}
	cfg.RequestTimeout, err = durationOrDefault("REQUEST_TIMEOUT", DefaultRequestTimeout, 0)
	if err != nil {
		return nil, err
	}

	if cursorStr := os.Getenv("INITIAL_CURSOR"); cursorStr != "" {
		cfg.InitialCursor, err = strconv.ParseInt(cursorStr, 10, 64)
		if err != nil || cfg.InitialCursor < 0 {
			return nil, fmt.Errorf("invalid INITIAL_CURSOR %q: must be a non-negative integer", cursorStr)
		}
		cfg.HasInitialCursor = true
	}

	cfg.SendRatePerSec = DefaultSendRatePerSec
	if rateStr := os.Getenv("TELEGRAM_RATE_PER_SEC"); rateStr != "" {
		cfg.SendRatePerSec, err = strconv.Atoi(rateStr)
		if err != nil || cfg.SendRatePerSec <= 0 {
			return nil, fmt.Errorf("invalid TELEGRAM_RATE_PER_SEC %q: must be a positive integer", rateStr)
		}
	}

	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	return cfg, nil
}

// StartCursor returns the cursor the poll loop begins with.
func (c *AppConfig) StartCursor(now time.Time) int64 {
	if c.HasInitialCursor {
		return c.InitialCursor
	}
	return now.Unix()
}

// durationOrDefault parses key as a positive duration of at least floor.
func durationOrDefault(key string, def, floor time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	if d < floor {
		return 0, fmt.Errorf("invalid %s %q: must be at least %s", key, raw, floor)
	}
	return d, nil
}
