// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	// devJWTSecret is only ever used outside production, with a warning.
	devJWTSecret = "insecure-development-secret-change-me"
)

type Config struct {
	App      AppConfig      `koanf:"app"`
	HTTP     HTTPConfig     `koanf:"http"`
	Auth     AuthConfig     `koanf:"auth"`
	Database DatabaseConfig `koanf:"database"`
	Notify   NotifyConfig   `koanf:"notify"`
	Log      LogConfig      `koanf:"log"`
}

type AppConfig struct {
	Env string `koanf:"env"`
}

type HTTPConfig struct {
	Addr            string        `koanf:"addr"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigin      string        `koanf:"cors_origin"`
}

type AuthConfig struct {
	JWTSecret Secret        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
	RateLimit float64       `koanf:"rate_limit"` // requests per second per tenant
	RateBurst int           `koanf:"rate_burst"`

	// InsecureSecret is set when the development fallback secret is in use.
	InsecureSecret bool `koanf:"-"`
}

type DatabaseConfig struct {
	Driver string `koanf:"driver"`
	URL    Secret `koanf:"url"`
	Name   string `koanf:"name"`
}

type NotifyConfig struct {
	OperatorEmail  string        `koanf:"operator_email"`
	SMTPHost       string        `koanf:"smtp_host"`
	SMTPPort       int           `koanf:"smtp_port"`
	SMTPUsername   string        `koanf:"smtp_username"`
	SMTPPassword   Secret        `koanf:"smtp_password"`
	SMTPFrom       string        `koanf:"smtp_from"`
	TelegramToken  Secret        `koanf:"telegram_token"`
	TelegramChatID int64         `koanf:"telegram_chat_id"`
	Timeout        time.Duration `koanf:"timeout"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == EnvProduction
}

// EmailEnabled reports whether SMTP delivery is configured.
func (n NotifyConfig) EmailEnabled() bool {
	return n.SMTPHost != "" && n.OperatorEmail != ""
}

// TelegramEnabled reports whether Telegram delivery is configured.
func (n NotifyConfig) TelegramEnabled() bool {
	return n.TelegramToken.IsSet() && n.TelegramChatID != 0
}

var sections = map[string]bool{
	"app": true, "http": true, "auth": true, "database": true, "notify": true, "log": true,
}

// Load reads an optional .env file, then maps environment variables onto
// Config. The first underscore separates section from field:
//
//	AUTH_JWT_SECRET  -> auth.jwt_secret
//	NOTIFY_SMTP_HOST -> notify.smtp_host
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// envKey maps an environment variable name to a koanf path. Variables
// outside the known sections are dropped.
func envKey(s string) string {
	parts := strings.SplitN(strings.ToLower(s), "_", 2)
	if len(parts) != 2 || !sections[parts[0]] {
		return ""
	}
	return parts[0] + "." + parts[1]
}

func applyDefaults(cfg *Config) {
	if cfg.App.Env == "" {
		cfg.App.Env = EnvDevelopment
	}

	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = "0.0.0.0:8080"
	}
	if cfg.HTTP.MaxBodyBytes == 0 {
		cfg.HTTP.MaxBodyBytes = 10 << 20
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.HTTP.CORSOrigin == "" {
		cfg.HTTP.CORSOrigin = "*"
	}

	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 7 * 24 * time.Hour
	}
	if cfg.Auth.RateLimit == 0 {
		cfg.Auth.RateLimit = 5
	}
	if cfg.Auth.RateBurst == 0 {
		cfg.Auth.RateBurst = 10
	}
	if !cfg.Auth.JWTSecret.IsSet() && cfg.App.Env != EnvProduction {
		cfg.Auth.JWTSecret = devJWTSecret
		cfg.Auth.InsecureSecret = true
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverMongo
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "instadm"
	}

	if cfg.Notify.SMTPPort == 0 {
		cfg.Notify.SMTPPort = 587
	}
	if cfg.Notify.SMTPFrom == "" {
		cfg.Notify.SMTPFrom = cfg.Notify.SMTPUsername
	}
	if cfg.Notify.Timeout == 0 {
		cfg.Notify.Timeout = 15 * time.Second
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.Env == EnvProduction {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if !c.Auth.JWTSecret.IsSet() {
		return errors.New("AUTH_JWT_SECRET is required in production")
	}
	if c.IsProduction() && c.Auth.InsecureSecret {
		return errors.New("development JWT secret cannot be used in production")
	}
	if c.Auth.TokenTTL < 0 {
		return fmt.Errorf("auth token ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Auth.RateLimit < 0 || c.Auth.RateBurst < 0 {
		return errors.New("auth rate limit and burst must not be negative")
	}

	switch c.Database.Driver {
	case DriverMongo, DriverPostgres:
		if !c.Database.URL.IsSet() {
			return fmt.Errorf("DATABASE_URL is required for driver %q", c.Database.Driver)
		}
	case DriverMemory:
		if c.IsProduction() {
			return errors.New("memory database driver is not allowed in production")
		}
	default:
		return fmt.Errorf("unknown database driver %q (expected mongo, postgres or memory)", c.Database.Driver)
	}

	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got %q", c.Log.Format)
	}
	if c.HTTP.MaxBodyBytes < 0 {
		return errors.New("http max body bytes must not be negative")
	}
	return nil
}
