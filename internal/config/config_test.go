package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg := Load()

		assert.Equal(t, "0.0.0.0", cfg.ServerHost)
		assert.Equal(t, 8080, cfg.ServerPort)
		assert.Equal(t, "postgres", cfg.DBDriver)
		assert.Equal(t, 10*time.Minute, cfg.AuthCodeTTL)
		assert.Equal(t, time.Hour, cfg.AccessTokenExpiration)
		assert.Equal(t, "keyguard", cfg.MetricsNamespace)
		assert.Equal(t, 8081, cfg.MetricsPort)
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("AUTH_CODE_TTL_SECONDS", "120")
		t.Setenv("ACCESS_TOKEN_EXPIRATION_SECONDS", "7200")
		t.Setenv("DB_DRIVER", "mysql")

		cfg := Load()

		assert.Equal(t, 9090, cfg.ServerPort)
		assert.Equal(t, 2*time.Minute, cfg.AuthCodeTTL)
		assert.Equal(t, 2*time.Hour, cfg.AccessTokenExpiration)
		assert.Equal(t, "mysql", cfg.DBDriver)
	})
}

func TestGetGinMode(t *testing.T) {
	tests := []struct {
		logLevel string
		expected string
	}{
		{"debug", "debug"},
		{"info", "release"},
		{"warn", "release"},
		{"error", "release"},
		{"unknown", "release"},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			assert.Equal(t, tt.expected, cfg.GetGinMode())
		})
	}
}
