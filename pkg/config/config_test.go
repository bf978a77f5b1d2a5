package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/kubestro")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
}

// TestLoad_Defaults verifies the defaults with only the required stores set
func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.HealthAddr())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DefaultAdminEmail, cfg.Admin.Email)
	assert.Empty(t, cfg.Admin.Password)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.LogJSON)
}

// TestLoad_Overrides verifies environment values win over defaults
func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("KUBESTRO_PORT", "3000")
	t.Setenv("KUBESTRO_READ_TIMEOUT", "5s")
	t.Setenv("ADMIN_EMAIL", "ops@example.com")
	t.Setenv("ADMIN_PASSWORD", "S3cret-pass!")
	t.Setenv("KUBESTRO_LOG_LEVEL", "debug")
	t.Setenv("KUBESTRO_LOG_JSON", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "ops@example.com", cfg.Admin.Email)
	assert.Equal(t, "S3cret-pass!", cfg.Admin.Password)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.False(t, cfg.Observability.LogJSON)
}

// TestLoad_MissingStores verifies the required variables
func TestLoad_MissingStores(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/kubestro")
	t.Setenv("REDIS_URL", "")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")
}

// TestLoad_PortCollision verifies the two servers cannot share a port
func TestLoad_PortCollision(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("KUBESTRO_PORT", "8080")
	t.Setenv("KUBESTRO_HEALTH_PORT", "8080")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be different")
}

// TestGetEnvDuration verifies malformed durations fall back to the default
func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "not-a-duration")
	assert.Equal(t, time.Minute, getEnvDuration("TEST_DURATION", time.Minute))

	t.Setenv("TEST_DURATION", "90s")
	assert.Equal(t, 90*time.Second, getEnvDuration("TEST_DURATION", time.Minute))
}
