package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "pos-core", cfg.ServiceName)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "9090", cfg.GRPCPort)
	assert.Equal(t, 12*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 20, cfg.NotificationWindow)
	assert.False(t, cfg.DB.Enabled)
	assert.Equal(t, "postgres", cfg.DB.User)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Second, cfg.Sync.Interval)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_TIMEZONE", "Asia/Shanghai")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DB_ENABLED", "true")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SYNC_INTERVAL", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.DB.Enabled)
	assert.Equal(t, "db.internal", cfg.Database().Host)
	assert.Equal(t, "Asia/Shanghai", cfg.Database().TimeZone)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 5*time.Second, cfg.Sync.Interval)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Shanghai", loc.String())
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("STORE_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("STORE_TIMEZONE", "UTC")
	t.Setenv("SYNC_INTERVAL", "soon")

	_, err := Load()
	assert.Error(t, err)
}
