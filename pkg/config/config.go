// Package config loads runner settings from an optional YAML file and the
// environment. Environment variables win over the file; command-line
// arguments are applied by the caller on top of both.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the variable holding the default config file path.
const EnvConfigPath = "HIGHRISE_CONFIG"

// Config is the root runtime configuration.
type Config struct {
	Endpoint          string          `yaml:"endpoint" env:"HR_WEBAPI_URL"`
	RoomID            string          `yaml:"room_id" env:"HIGHRISE_ROOM_ID"`
	APIToken          string          `yaml:"api_token" env:"HIGHRISE_API_TOKEN"`
	RequestTimeout    time.Duration   `yaml:"request_timeout" env:"HIGHRISE_REQUEST_TIMEOUT"`
	KeepaliveInterval time.Duration   `yaml:"keepalive_interval" env:"HIGHRISE_KEEPALIVE_INTERVAL"`
	FailurePolicy     string          `yaml:"failure_policy" env:"HIGHRISE_FAILURE_POLICY"`
	Reconnect         ReconnectConfig `yaml:"reconnect"`
	Logging           LoggingConfig   `yaml:"logging"`
}

// ReconnectConfig bounds how fast dropped connections are retried: Burst
// attempts at once, then one per Recharge.
type ReconnectConfig struct {
	Burst    int           `yaml:"burst" env:"HIGHRISE_RECONNECT_BURST"`
	Recharge time.Duration `yaml:"recharge" env:"HIGHRISE_RECONNECT_RECHARGE"`
}

// LoggingConfig controls structured log output format and verbosity.
type LoggingConfig struct {
	Format    string `yaml:"format" env:"HIGHRISE_LOG_FORMAT"`
	Level     string `yaml:"level" env:"HIGHRISE_LOG_LEVEL"`
	AddSource bool   `yaml:"add_source" env:"HIGHRISE_LOG_ADD_SOURCE"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Endpoint:          "wss://highrise.game/web/webapi",
		RequestTimeout:    30 * time.Second,
		KeepaliveInterval: 15 * time.Second,
		FailurePolicy:     "log",
		Reconnect: ReconnectConfig{
			Burst:    5,
			Recharge: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Format: "text",
			Level:  "info",
		},
	}
}

// Load builds a Config from the defaults, the YAML file at path and the
// environment. An empty path falls back to $HIGHRISE_CONFIG; when that is
// empty too no file is read.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
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
		return nil, fmt.Errorf("config from environment: %w", err)
	}
	return cfg, nil
}

// Validate reports settings the runner cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Endpoint == "" {
		errs = append(errs, errors.New("endpoint is required"))
	}
	if c.RoomID == "" {
		errs = append(errs, errors.New("room id is required"))
	}
	if c.APIToken == "" {
		errs = append(errs, errors.New("api token is required"))
	}
	if c.KeepaliveInterval <= 0 {
		errs = append(errs, fmt.Errorf("keepalive_interval must be positive, got %v", c.KeepaliveInterval))
	}
	if c.Reconnect.Burst <= 0 {
		errs = append(errs, fmt.Errorf("reconnect.burst must be positive, got %d", c.Reconnect.Burst))
	}
	if c.Reconnect.Recharge <= 0 {
		errs = append(errs, fmt.Errorf("reconnect.recharge must be positive, got %v", c.Reconnect.Recharge))
	}
	switch c.FailurePolicy {
	case "log", "fatal":
	default:
		errs = append(errs, fmt.Errorf("failure_policy must be log or fatal, got %q", c.FailurePolicy))
	}
	return errors.Join(errs...)
}
