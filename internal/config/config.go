package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

type Config struct {
	Port        string     `env:"PORT" envDefault:"3000"`
	Environment string     `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string     `env:"LOG_LEVEL" envDefault:"info"`
	LogLevel    slog.Level `env:"-"`

	// Battle state persistence
	DataDir        string        `env:"RAMDEUS_DATA_DIR"`
	StoreBackend   string        `env:"STORE_BACKEND" envDefault:"file"`
	RedisURL       string        `env:"REDIS_URL" envDefault:"localhost:6379"`
	RedisKeyPrefix string        `env:"REDIS_KEY_PREFIX" envDefault:"battlestate"`
	LockWait       time.Duration `env:"LOCK_WAIT" envDefault:"5s"`
	LockTTL        time.Duration `env:"LOCK_TTL" envDefault:"10s"`

	// Discord application
	PublicKey    string `env:"PUBLIC_KEY"`
	AppID        string `env:"APP_ID"`
	DiscordToken string `env:"DISCORD_TOKEN"`
	DevGuildID   string `env:"DEV_GUILD_ID"`

	// Azure OpenAI
	AzureResource   string `env:"AZURE_AI_RESOURCE"`
	AzureKey        string `env:"AZURE_AI_KEY"`
	AzureDeployment string `env:"AZURE_AI_DEPLOYMENT" envDefault:"gpt-4.1"`
	AzureAPIVersion string `env:"AZURE_AI_API_VERSION" envDefault:"2024-10-21"`

	AdminToken    string        `env:"ADMIN_TOKEN"`
	AdviceTimeout time.Duration `env:"ADVICE_TIMEOUT" envDefault:"60s"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no usable fallback.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	switch c.StoreBackend {
	case BackendFile:
	case BackendRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when STORE_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendFile, BackendRedis, c.StoreBackend))
	}
	if c.PublicKey != "" && c.AppID == "" {
		errs = append(errs, errors.New("APP_ID is required when PUBLIC_KEY is set"))
	}
	if c.LockWait <= 0 {
		errs = append(errs, errors.New("LOCK_WAIT must be positive"))
	}
	if c.LockTTL <= 0 {
		errs = append(errs, errors.New("LOCK_TTL must be positive"))
	}
	if c.AdviceTimeout <= 0 {
		errs = append(errs, errors.New("ADVICE_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// DiscordEnabled reports whether the interactions endpoint can verify requests.
func (c *Config) DiscordEnabled() bool {
	return c.PublicKey != ""
}

// AzureEnabled reports whether the advice command has a model to call.
func (c *Config) AzureEnabled() bool {
	return c.AzureResource != "" && c.AzureKey != ""
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
