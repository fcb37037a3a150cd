package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, BackendMemory, cfg.State.Backend)
	assert.Equal(t, "local", cfg.Resolution.Transport)
	assert.Equal(t, 4, cfg.Resolution.Workers)
	assert.Equal(t, 24*time.Hour, cfg.OutcomeTTL)
	assert.Equal(t, 60, cfg.RateLimit.WriteRequests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Empty(t, cfg.AdminToken)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SOULBOUND_ADDR", ":9090")
	t.Setenv("SOULBOUND_OPERATOR_ACCOUNT", "ops.near")
	t.Setenv("SOULBOUND_STATE_BACKEND", "sqlite")
	t.Setenv("SOULBOUND_RESOLUTION_TRANSPORT", "kafka")
	t.Setenv("SOULBOUND_RESOLUTION_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SOULBOUND_RESOLUTION_TIMEOUT", "2s")
	t.Setenv("SOULBOUND_RATELIMIT_READ_REQUESTS", "10")
	t.Setenv("SOULBOUND_ADMIN_TOKEN", "ops-secret")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "ops.near", cfg.OperatorAccount)
	assert.Equal(t, BackendSQLite, cfg.State.Backend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Resolution.KafkaBrokers)
	assert.Equal(t, 2*time.Second, cfg.Resolution.Timeout)
	assert.Equal(t, 10, cfg.RateLimit.ReadRequests)
	assert.Equal(t, "ops-secret", cfg.AdminToken)
}

func TestValidate(t *testing.T) {
	t.Run("redis backend without url", func(t *testing.T) {
		t.Setenv("SOULBOUND_STATE_BACKEND", "redis")
		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("SOULBOUND_STATE_BACKEND", "etcd")
		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("kafka transport without brokers", func(t *testing.T) {
		t.Setenv("SOULBOUND_RESOLUTION_TRANSPORT", "kafka")
		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("zero rate limit window", func(t *testing.T) {
		t.Setenv("SOULBOUND_RATELIMIT_WINDOW", "0s")
		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("zero window allowed when disabled", func(t *testing.T) {
		t.Setenv("SOULBOUND_RATELIMIT_DISABLED", "true")
		t.Setenv("SOULBOUND_RATELIMIT_WINDOW", "0s")
		_, err := FromEnv()
		require.NoError(t, err)
	})
}
