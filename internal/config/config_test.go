package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "tunepulse-api", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, "http://localhost:3000", cfg.App.BaseURL)
	assert.Equal(t, 10, cfg.Auth.VerificationTTLMinutes)
	assert.Equal(t, 5, cfg.Auth.PasswordResetTTLMinutes)
	assert.Equal(t, 60, cfg.Auth.EmailChangeTTLMinutes)
	assert.Equal(t, 8, cfg.Auth.MinPasswordLength)
	assert.Equal(t, 3, cfg.RateLimit.ResetRequestLimit)
	assert.True(t, cfg.Postgres.RunMigrations)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9999")
	t.Setenv("AUTH_VERIFICATION_TTL_MINUTES", "25")
	t.Setenv("RATE_LIMIT_RESET_WINDOW_MINUTES", "30")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9999", cfg.App.Addr())
	assert.Equal(t, 25*time.Minute, cfg.Auth.VerificationTTL())
	assert.Equal(t, 30*time.Minute, cfg.RateLimit.ResetRequestWindow())
	assert.False(t, cfg.Postgres.RunMigrations)
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestInvalidIntFallsBack(t *testing.T) {
	t.Setenv("AUTH_MIN_PASSWORD_LENGTH", "abc")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Auth.MinPasswordLength)
}
