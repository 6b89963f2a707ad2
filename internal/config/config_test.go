package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
ledger:
  tables: [1, 2, 3]
  tax_rate: 0.1
storage:
  driver: sqlite
  path: /tmp/ledger.db
rabbitmq:
  enabled: true
  host: mq
  user: guest
  password: guest
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []int{1, 2, 3}, cfg.Ledger.Tables)
	assert.Equal(t, "0.1", cfg.Ledger.TaxRateDecimal().String())
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.True(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, 5672, cfg.RabbitMQ.Port)
	assert.Equal(t, "tables_topic", cfg.RabbitMQ.Exchange)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, cfg.Ledger.Tables)
	assert.Equal(t, "0.08", cfg.Ledger.TaxRateDecimal().String())
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.False(t, cfg.RabbitMQ.Enabled)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("POS_SERVER_PORT", "9100")
	t.Setenv("POS_STORAGE_DRIVER", "memory")

	cfg, err := Load(writeConfig(t, "server:\n  port: 8080\n"))
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Driver)
}

func TestValidate(t *testing.T) {
	_, err := Load(writeConfig(t, "storage:\n  driver: redis\n"))
	assert.ErrorContains(t, err, "unknown storage driver")

	_, err = Load(writeConfig(t, "ledger:\n  tax_rate: -0.5\n"))
	assert.ErrorContains(t, err, "tax_rate")

	_, err = Load(writeConfig(t, "ledger:\n  tables: [1, 0]\n"))
	assert.ErrorContains(t, err, "positive")
}
