package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromRepositoryConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_PASSWORD", "")

	cfg, err := LoadFrom("local", ".")
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "sprint", cfg.DB.Password)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 70, cfg.Score.StreakThreshold)
	assert.Equal(t, 366, cfg.Score.LookbackDays)
	assert.Equal(t, time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, 30*time.Second, cfg.Draft.CircuitBreaker.Timeout)
}

func TestLoadFromKeepsDefaultsForMissingKeys(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte("jwt:\n  secret: s\n"), 0o600))

	cfg, err := LoadFrom("", dir)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, int64(3), cfg.Worker.ConsumerRetries)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LockoutWindow)
}

func TestLoadFromRequiresJWTSecret(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte("log:\n  level: info\n"), 0o600))
	t.Setenv("JWT_SECRET", "")

	_, err := LoadFrom("", dir)
	assert.ErrorContains(t, err, "jwt.secret")
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("DRAFT_AGENT_URL", "http://agent:9000")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("REDIS_ADDR", "cache:6379")

	cfg, err := LoadFrom("local", ".")
	require.NoError(t, err)
	assert.Equal(t, "http://agent:9000", cfg.Draft.AgentURL)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
}
