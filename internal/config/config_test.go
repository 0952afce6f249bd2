package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
env: test
matrix_db:
  dsn: postgres://localhost/matrix
kafka_service:
  brokers: ["localhost:9092"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, 30*time.Minute, cfg.Donation.ConfirmationWindow)
	assert.Equal(t, 10*time.Minute, cfg.Donation.FreeCheckInterval)
	assert.Equal(t, "flag", cfg.Donation.CancelMode)
	assert.Equal(t, "owner", cfg.Donation.CreditPolicy)
	assert.Equal(t, "kafka", cfg.Notifier.Driver)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaService.Brokers)
	assert.Equal(t, "donation-confirmations", cfg.KafkaService.ConfirmationsTopic)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
donation:
  confirmation_window: 5m
  cancel_mode: delete
  credit_policy: second_level
notifier:
  driver: log
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.Donation.ConfirmationWindow)
	assert.Equal(t, "delete", cfg.Donation.CancelMode)
	assert.Equal(t, "second_level", cfg.Donation.CreditPolicy)
	assert.Equal(t, "log", cfg.Notifier.Driver)
}

func TestLoadRejectsUnknownCancelMode(t *testing.T) {
	path := writeConfig(t, `
donation:
  cancel_mode: purge
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "cancel_mode")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
