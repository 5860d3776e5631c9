package config

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("DATABASE_DRIVER", DriverMemory)
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.App.Env)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr)
	assert.Equal(t, int64(10<<20), cfg.HTTP.MaxBodyBytes)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.True(t, cfg.Auth.InsecureSecret)
	assert.True(t, cfg.Auth.JWTSecret.IsSet())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", DriverPostgres)
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/db")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("AUTH_TOKEN_TTL", "48h")
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("NOTIFY_TELEGRAM_CHAT_ID", "12345")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@localhost:5432/db", cfg.Database.URL.Value())
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret.Value())
	assert.False(t, cfg.Auth.InsecureSecret)
	assert.Equal(t, 48*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.Equal(t, int64(12345), cfg.Notify.TelegramChatID)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", EnvProduction)
	t.Setenv("DATABASE_DRIVER", DriverMongo)
	t.Setenv("DATABASE_URL", "mongodb://localhost:27017")
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{Database: DatabaseConfig{Driver: DriverMemory}}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "redis" },
			wantErr: "unknown database driver",
		},
		{
			name:    "mongo without url",
			mutate:  func(c *Config) { c.Database.Driver = DriverMongo },
			wantErr: "DATABASE_URL",
		},
		{
			name: "memory in production",
			mutate: func(c *Config) {
				c.App.Env = EnvProduction
				c.Auth.InsecureSecret = false
			},
			wantErr: "memory database driver",
		},
		{
			name: "fallback secret in production",
			mutate: func(c *Config) {
				c.App.Env = EnvProduction
			},
			wantErr: "development JWT secret",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "auth.jwt_secret", envKey("AUTH_JWT_SECRET"))
	assert.Equal(t, "notify.smtp_host", envKey("NOTIFY_SMTP_HOST"))
	assert.Equal(t, "", envKey("PATH"))
	assert.Equal(t, "", envKey("HOME_DIR"))
}

func TestSecret_Redacted(t *testing.T) {
	s := Secret("hunter2")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "hunter2", s.Value())

	data, err := json.Marshal(struct{ S Secret }{S: s})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")

	assert.Equal(t, "", Secret("").String())
}
