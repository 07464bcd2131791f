package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("SYNC_MAX_ATTEMPTS", "3")
	t.Setenv("SYNC_INITIAL_BACKOFF", "250ms")
	t.Setenv("SYNC_MAX_BACKOFF", "not-a-duration")
	t.Setenv("SYNC_PAGE_SIZE", "9999")
	t.Setenv("WEBHOOK_SECRET", "shh")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, 3, cfg.SyncMaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.SyncInitialBackoff)
	assert.Equal(t, 30*time.Second, cfg.SyncMaxBackoff)
	assert.Equal(t, 250, cfg.SyncPageSize)
	assert.Equal(t, "shh", cfg.WebhookSecret)
	assert.Equal(t, "60-M", cfg.WebhookRateLimit)
}

func TestLoadConfigUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "cassandra")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
}
