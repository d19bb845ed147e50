package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ryse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "cover", cfg.Device.Name)
	assert.Equal(t, "target-device-name", cfg.Device.NameMatch)
	assert.Equal(t, 30*time.Second, cfg.Device.ConnectTimeout)
	assert.Equal(t, 10*time.Second, cfg.Device.ScanTimeout)
	assert.Empty(t, cfg.Device.Address)
	assert.False(t, cfg.MQTT.Enabled)
	assert.Equal(t, "localhost", cfg.MQTT.Host)
	assert.Equal(t, 1883, cfg.MQTT.Port)
	assert.Equal(t, "ryse", cfg.MQTT.TopicPrefix)
	assert.Equal(t, 1, cfg.MQTT.QoS)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Run("file values override defaults", func(t *testing.T) {
		path := writeConfig(t, `
log_level: debug
device:
  address: AA:BB:CC:DD:EE:FF
  notify_uuid: a72f2805-b0bd-498b-a4d7-63f907c2a4e0
  write_uuid: a72f2804-b0bd-498b-a4d7-63f907c2a4e0
  connect_timeout: 5s
mqtt:
  enabled: true
  host: broker.local
  qos: 0
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "AA:BB:CC:DD:EE:FF", cfg.Device.Address)
		assert.Equal(t, 5*time.Second, cfg.Device.ConnectTimeout)
		assert.Equal(t, 10*time.Second, cfg.Device.ScanTimeout, "unset fields keep defaults")
		assert.Equal(t, "target-device-name", cfg.Device.NameMatch)
		assert.True(t, cfg.MQTT.Enabled)
		assert.Equal(t, "broker.local", cfg.MQTT.Host)
		assert.Equal(t, 0, cfg.MQTT.QoS, "explicit zero is kept")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading config file")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "device: [unclosed"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing config file")
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(writeConfig(t, "log_level: loud\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validating config")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "chatty" },
			wantErr: "log_level",
		},
		{
			name:    "bad notify uuid",
			mutate:  func(c *Config) { c.Device.NotifyUUID = "not-a-uuid" },
			wantErr: "device.notify_uuid",
		},
		{
			name:   "short uuid accepted",
			mutate: func(c *Config) { c.Device.WriteUUID = "2a19" },
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Device.ConnectTimeout = -time.Second },
			wantErr: "device.connect_timeout",
		},
		{
			name:    "qos out of range",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name: "mqtt port checked only when enabled",
			mutate: func(c *Config) {
				c.MQTT.Port = 0
			},
		},
		{
			name: "mqtt enabled without host",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.Host = ""
			},
			wantErr: "mqtt.host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_NewLogger(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		want     logrus.Level
	}{
		{
			name:     "creates logger with debug level",
			logLevel: "debug",
			want:     logrus.DebugLevel,
		},
		{
			name:     "creates logger with info level",
			logLevel: "info",
			want:     logrus.InfoLevel,
		},
		{
			name:     "creates logger with warn level",
			logLevel: "warn",
			want:     logrus.WarnLevel,
		},
		{
			name:     "falls back to info on unknown level",
			logLevel: "bogus",
			want:     logrus.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				LogLevel: tt.logLevel,
			}

			logger := cfg.NewLogger()

			assert.NotNil(t, logger)
			assert.Equal(t, tt.want, logger.GetLevel())

			// Verify formatter is set correctly
			formatter, ok := logger.Formatter.(*logrus.TextFormatter)
			assert.True(t, ok)
			assert.True(t, formatter.FullTimestamp)
			assert.Equal(t, time.RFC3339, formatter.TimestampFormat)
		})
	}
}

func BenchmarkDefault(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Default()
	}
}
