package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "wallet_ledger", cfg.Database.DBName)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, time.Hour, cfg.Rates.CacheTTL)
	assert.Equal(t, "TWD", cfg.Rates.ReferenceCurrency)
	assert.Equal(t, 15*time.Second, cfg.Classifier.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
database:
  host: db.internal
  port: 5433
  dbname: ledger_test
rates:
  cache_ttl: 30m
  reference_currency: USD
log:
  level: debug
  pretty: true
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "ledger_test", cfg.Database.DBName)
	assert.Equal(t, 30*time.Minute, cfg.Rates.CacheTTL)
	assert.Equal(t, "USD", cfg.Rates.ReferenceCurrency)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)

	// Untouched keys keep defaults.
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, 10*time.Second, cfg.Rates.Timeout)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LEDGER_DATABASE_HOST", "env-host")
	t.Setenv("LEDGER_RATES_API_KEY", "secret-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, "secret-key", cfg.Rates.APIKey)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "u", Password: "p",
		DBName: "ledger", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@localhost:5432/ledger?sslmode=disable", d.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}
