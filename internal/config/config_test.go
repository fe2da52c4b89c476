package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setDB(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "herbal")
	t.Setenv("DB_NAME", "herbal")
}

func TestLoad_Defaults(t *testing.T) {
	setDB(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.Security.AdminSessionTTL)
	assert.Equal(t, 14*24*time.Hour, cfg.Security.PartnerSessionTTL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.Worker.KeyUsageSync)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 20, cfg.Security.AuthFailLimit)
	assert.Equal(t, time.Minute, cfg.Security.AuthFailWindow)
	assert.Equal(t, []string{"localhost:3000", "127.0.0.1:3000"}, cfg.CORSHosts)
}

func TestLoad_Overrides(t *testing.T) {
	setDB(t)
	t.Setenv("API_KEY_USAGE_SYNC", "true")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("PARTNER_SESSION_TTL", "1h")
	t.Setenv("CORS_ALLOWED_HOSTS", " Shop.Example.com , ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Worker.KeyUsageSync)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, time.Hour, cfg.Security.PartnerSessionTTL)
	assert.Equal(t, []string{"shop.example.com"}, cfg.CORSHosts)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("DB_HOST", "")
	_, err := Load()
	assert.Error(t, err)

	setDB(t)
	t.Setenv("REQUEST_TIMEOUT", "soon")
	_, err = Load()
	assert.ErrorContains(t, err, "REQUEST_TIMEOUT")
}

func TestLoad_AuthThrottleBounds(t *testing.T) {
	setDB(t)
	t.Setenv("AUTH_FAIL_WINDOW", "0s")
	_, err := Load()
	assert.ErrorContains(t, err, "AUTH_FAIL_WINDOW")

	t.Setenv("AUTH_FAIL_WINDOW", "30s")
	t.Setenv("AUTH_FAIL_LIMIT", "0")
	_, err = Load()
	assert.ErrorContains(t, err, "AUTH_FAIL_LIMIT")

	t.Setenv("AUTH_FAIL_LIMIT", "5")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Security.AuthFailLimit)
	assert.Equal(t, 30*time.Second, cfg.Security.AuthFailWindow)
}

func TestMissingSecrets(t *testing.T) {
	cfg := &Config{Security: SecurityConfig{AdminPassword: "x", PartnerSessionSecret: "y"}}
	assert.Equal(t, []string{"ADMIN_SESSION_SECRET", "API_KEY_ENCRYPTION_SECRET"}, cfg.MissingSecrets())
}
