// Package config loads server configuration from a YAML file with
// environment-variable overrides (TILLGRID_* vars win over the file).
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	LogLevel string `yaml:"log_level" env:"TILLGRID_LOG_LEVEL"`
	LogJSON  bool   `yaml:"log_json" env:"TILLGRID_LOG_JSON"`

	AdminAddr string `yaml:"admin_addr" env:"TILLGRID_ADMIN_ADDR"`

	StrictTransform bool     `yaml:"strict_transform" env:"TILLGRID_STRICT_TRANSFORM"`
	ErrorSounds     []string `yaml:"error_sounds" env:"TILLGRID_ERROR_SOUNDS" envSeparator:","`

	MQTT  MQTTConfig  `yaml:"mqtt"`
	Redis RedisConfig `yaml:"redis"`
}

// MQTTConfig holds broker settings for the terminal transport.
type MQTTConfig struct {
	BrokerURL   string `yaml:"broker_url" env:"TILLGRID_MQTT_BROKER_URL"`
	ClientID    string `yaml:"client_id" env:"TILLGRID_MQTT_CLIENT_ID"`
	Username    string `yaml:"username" env:"TILLGRID_MQTT_USERNAME"`
	Password    string `yaml:"password" env:"TILLGRID_MQTT_PASSWORD"`
	TopicPrefix string `yaml:"topic_prefix" env:"TILLGRID_MQTT_TOPIC_PREFIX"`
	QoS         byte   `yaml:"qos" env:"TILLGRID_MQTT_QOS"`
}

// RedisConfig holds settings for the optional status store.
type RedisConfig struct {
	Enabled  bool     `yaml:"enabled" env:"TILLGRID_REDIS_ENABLED"`
	Address  string   `yaml:"address" env:"TILLGRID_REDIS_ADDRESS"`
	Password string   `yaml:"password" env:"TILLGRID_REDIS_PASSWORD"`
	DB       int      `yaml:"db" env:"TILLGRID_REDIS_DB"`
	TTL      Duration `yaml:"ttl" env:"TILLGRID_REDIS_TTL"`
}

// Duration accepts "5m"-style values from both YAML and environment
// variables. yaml.v3 only decodes integers into time.Duration natively.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler (used by env).
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(raw))
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		AdminAddr: ":8087",
		MQTT: MQTTConfig{
			BrokerURL:   "tcp://localhost:1883",
			ClientID:    "tillgrid-server",
			TopicPrefix: "tillgrid",
			QoS:         1,
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
		},
	}
}

// Load reads configuration: defaults, then the YAML file at path (if path is
// non-empty), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
