package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillgrid/tillgrid/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8087", cfg.AdminAddr)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.BrokerURL)
	assert.Equal(t, "tillgrid", cfg.MQTT.TopicPrefix)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
admin_addr: ":9000"
error_sounds: [chime, buzz]
mqtt:
  broker_url: tcp://broker.internal:1883
  qos: 2
redis:
  enabled: true
  ttl: 5m
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9000", cfg.AdminAddr)
	assert.Equal(t, []string{"chime", "buzz"}, cfg.ErrorSounds)
	assert.Equal(t, "tcp://broker.internal:1883", cfg.MQTT.BrokerURL)
	assert.Equal(t, byte(2), cfg.MQTT.QoS)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL.Std())
	// Untouched keys keep their defaults.
	assert.Equal(t, "tillgrid-server", cfg.MQTT.ClientID)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o644))

	t.Setenv("TILLGRID_LOG_LEVEL", "warn")
	t.Setenv("TILLGRID_MQTT_BROKER_URL", "tcp://env-broker:1883")
	t.Setenv("TILLGRID_ERROR_SOUNDS", "ding,dong")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "tcp://env-broker:1883", cfg.MQTT.BrokerURL)
	assert.Equal(t, []string{"ding", "dong"}, cfg.ErrorSounds)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := config.Load("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestDecodeDeviceSettings(t *testing.T) {
	settings, err := config.DecodeDeviceSettings(map[string]string{
		"locale":       "pt-BR",
		"error_sounds": "chime,buzz",
		"kiosk":        "true",
		"unknown_key":  "ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, "pt-BR", settings.Locale)
	assert.Equal(t, []string{"chime", "buzz"}, settings.ErrorSounds)
	assert.True(t, settings.Kiosk)
	assert.Empty(t, settings.AudioOutput)
}

func TestDecodeDeviceSettings_Empty(t *testing.T) {
	settings, err := config.DecodeDeviceSettings(nil)
	require.NoError(t, err)
	assert.Equal(t, config.DeviceSettings{}, settings)
}
