package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	defaultAppName        = "WalletBot"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultLogFormat      = "json"
	defaultShutdownDelay  = 10 * time.Second
	defaultSessionTTL     = 5 * time.Minute
	defaultDedupeTTL      = 24 * time.Hour
	defaultHistoryLimit   = 5
	defaultRatePerMinute  = 30
	defaultMaxFundAmount  = "10000"
	maxFundAmountEnvVar   = "MAX_FUND_AMOUNT"
	historyLimitEnvVar    = "HISTORY_LIMIT"
	ratePerMinuteEnvVar   = "RATE_LIMIT_PER_MINUTE"
	sessionSecondsEnvVar  = "SESSION_TTL_SECONDS"
	sessionDurationEnvVar = "SESSION_TTL"
	dedupeSecondsEnvVar   = "UPDATE_DEDUPE_TTL_SECONDS"
	dedupeDurationEnvVar  = "UPDATE_DEDUPE_TTL"
	shutdownSecondsEnvVar = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurEnvVar     = "SHUTDOWN_TIMEOUT"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName            string        `validate:"required"`
	AppEnv             string        `validate:"required"`
	Port               string        `validate:"required"`
	LogLevel           string        `validate:"oneof=debug info warn error"`
	LogFormat          string        `validate:"oneof=json text"`
	BotToken           string        `validate:"required"`
	WebhookSecret      string
	DatabaseURL        string
	RedisURL           string
	MaxFundAmount      decimal.Decimal
	HistoryLimit       int           `validate:"min=1,max=100"`
	RateLimitPerMinute int           `validate:"gte=0"`
	SessionTTL         time.Duration `validate:"gt=0"`
	UpdateDedupeTTL    time.Duration `validate:"gt=0"`
	ShutdownPeriod     time.Duration `validate:"gt=0"`
}

// Load reads an optional .env file, then populates a Config from the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		AppName:       getEnv("APP_NAME", defaultAppName),
		AppEnv:        getEnv("APP_ENV", defaultAppEnv),
		Port:          getEnv("PORT", defaultPort),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", defaultLogFormat)),
		BotToken:      os.Getenv("BOT_TOKEN"),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
	}

	var err error
	if cfg.MaxFundAmount, err = decimal.NewFromString(getEnv(maxFundAmountEnvVar, defaultMaxFundAmount)); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", maxFundAmountEnvVar, err)
	}
	if cfg.HistoryLimit, err = intFromEnv(historyLimitEnvVar, defaultHistoryLimit); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitPerMinute, err = intFromEnv(ratePerMinuteEnvVar, defaultRatePerMinute); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = durationFromEnv(sessionSecondsEnvVar, sessionDurationEnvVar, defaultSessionTTL); err != nil {
		return Config{}, err
	}
	if cfg.UpdateDedupeTTL, err = durationFromEnv(dedupeSecondsEnvVar, dedupeDurationEnvVar, defaultDedupeTTL); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownPeriod, err = durationFromEnv(shutdownSecondsEnvVar, shutdownDurEnvVar, defaultShutdownDelay); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !c.MaxFundAmount.IsPositive() {
		return fmt.Errorf("invalid config: %s must be greater than 0", maxFundAmountEnvVar)
	}
	return nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the app runs in a local development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func intFromEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

// durationFromEnv prefers a whole number of seconds and falls back to a Go
// duration string.
func durationFromEnv(secondsKey, durationKey string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(secondsKey); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(durationKey); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationKey, err)
		}
		return d, nil
	}
	return fallback, nil
}
