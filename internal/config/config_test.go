package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 50, cfg.Sync.RateLimitPerMinute)
	assert.Equal(t, 100, cfg.Sync.BulkMaxOps)
	assert.Equal(t, "America/Belem", cfg.Business.Timezone)
	assert.Equal(t, 7, cfg.Business.RetroactiveDays)
	assert.Equal(t, 250.0, cfg.Maintenance.DefaultIntervalHours)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: memory
sync:
  rate_limit_per_minute: 10
`), 0o600))
	t.Setenv("AMC_SERVER_HTTP_PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Sync.RateLimitPerMinute)
	assert.Equal(t, 9090, cfg.Server.HTTPPort)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("AMC_DATABASE_DRIVER", "sqlite")

	_, err := Load("")
	assert.ErrorContains(t, err, "database.driver")
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5433, Database: "assets", User: "u", Password: "p"}
	assert.Equal(t, "postgres://u:p@db:5433/assets?sslmode=disable", db.DSN())
}

func TestSecrets(t *testing.T) {
	auth := AuthConfig{JWTSecretEnv: "TEST_JWT_SECRET"}
	assert.False(t, auth.IsProductionReady())

	t.Setenv("TEST_JWT_SECRET", "a-very-long-secret-that-has-over-32-chars")
	assert.True(t, auth.IsProductionReady())

	sync := SyncConfig{APIKeyEnv: "TEST_SYNC_KEY"}
	t.Setenv("TEST_SYNC_KEY", "k")
	assert.Equal(t, "k", sync.GetAPIKey())
}
