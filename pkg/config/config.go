package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"github.com/srg/ryse/internal/device"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	LogLevel string       `yaml:"log_level" default:"info"`
	Device   DeviceConfig `yaml:"device"`
	MQTT     MQTTConfig   `yaml:"mqtt"`
}

// DeviceConfig identifies the cover peripheral and bounds BLE operations.
// An empty Address means the device is located by name with a scan.
type DeviceConfig struct {
	Name           string        `yaml:"name" default:"cover"`
	Address        string        `yaml:"address"`
	NotifyUUID     string        `yaml:"notify_uuid"`
	WriteUUID      string        `yaml:"write_uuid"`
	NameMatch      string        `yaml:"name_match" default:"target-device-name"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" default:"30s"`
	ScanTimeout    time.Duration `yaml:"scan_timeout" default:"10s"`
}

// MQTTConfig configures the optional MQTT bridge.
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Host        string `yaml:"host" default:"localhost"`
	Port        int    `yaml:"port" default:"1883"`
	ClientID    string `yaml:"client_id" default:"ryse"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix" default:"ryse"`
	QoS         int    `yaml:"qos" default:"1"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load reads a YAML configuration file on top of the defaults and validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("log_level %q is not a valid level", c.LogLevel))
	}

	for field, uuid := range map[string]string{
		"device.notify_uuid": c.Device.NotifyUUID,
		"device.write_uuid":  c.Device.WriteUUID,
	} {
		if uuid == "" {
			continue
		}
		if _, err := device.ValidateUUID(uuid); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", field, err))
		}
	}

	if c.Device.ConnectTimeout < 0 {
		errs = append(errs, "device.connect_timeout must not be negative")
	}
	if c.Device.ScanTimeout < 0 {
		errs = append(errs, "device.scan_timeout must not be negative")
	}

	if c.MQTT.Enabled {
		if c.MQTT.Host == "" {
			errs = append(errs, "mqtt.host is required when mqtt is enabled")
		}
		if c.MQTT.Port < 1 || c.MQTT.Port > 65535 {
			errs = append(errs, "mqtt.port must be between 1 and 65535")
		}
		if c.MQTT.TopicPrefix == "" {
			errs = append(errs, "mqtt.topic_prefix is required when mqtt is enabled")
		}
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.Level())

	// Use structured logging format
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}
