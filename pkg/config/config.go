package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Config is the host process configuration. Values come from an optional
// YAML or JSON file with environment overrides applied on top; zero values
// fall back to Default.
type Config struct {
	Bus     BusConfig     `yaml:"bus" json:"bus"`
	Log     LogConfig     `yaml:"log" json:"log"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
	I18n    I18nConfig    `yaml:"i18n" json:"i18n"`
	Bridge  BridgeConfig  `yaml:"bridge" json:"bridge"`
}

// BusConfig tunes the message bus.
type BusConfig struct {
	// ChannelCapacity bounds each message type's queue.
	ChannelCapacity int `yaml:"channel_capacity" json:"channel_capacity"`

	// DeliveryTimeout bounds a single subscriber delivery, as a Go
	// duration string such as "5s". Empty disables the timeout.
	DeliveryTimeout string `yaml:"delivery_timeout" json:"delivery_timeout"`
}

// LogConfig tunes logging.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// MetricsConfig controls the optional prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
}

// I18nConfig configures the translation module.
type I18nConfig struct {
	DefaultLanguage string `yaml:"default_language" json:"default_language"`

	// TranslationsDir optionally points at a directory of JSON translation
	// files layered over the built-in tables.
	TranslationsDir string `yaml:"translations_dir" json:"translations_dir"`
}

// BridgeConfig configures the NATS bridge module.
type BridgeConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	URL     string `yaml:"url" json:"url"`
	Prefix  string `yaml:"prefix" json:"prefix"`
}

// Default returns the configuration used when no file or overrides are
// present.
func Default() *Config {
	return &Config{
		Bus: BusConfig{
			ChannelCapacity: 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
		I18n: I18nConfig{
			DefaultLanguage: "en",
		},
		Bridge: BridgeConfig{
			URL:    "nats://127.0.0.1:4222",
			Prefix: "synapse",
		},
	}
}

// Validate checks the configuration for values the host cannot run with.
func (c *Config) Validate() error {
	if c.Bus.ChannelCapacity < 1 {
		return fmt.Errorf("bus.channel_capacity must be at least 1, got %d", c.Bus.ChannelCapacity)
	}
	if _, err := c.Bus.DeliveryTimeoutDuration(); err != nil {
		return err
	}
	if c.Log.Level != "" {
		if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level %q is not a valid level", c.Log.Level)
		}
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required when metrics are enabled")
	}
	if c.I18n.DefaultLanguage == "" {
		return fmt.Errorf("i18n.default_language cannot be empty")
	}
	if c.Bridge.Enabled {
		if c.Bridge.URL == "" {
			return fmt.Errorf("bridge.url is required when the bridge is enabled")
		}
		if c.Bridge.Prefix == "" {
			return fmt.Errorf("bridge.prefix is required when the bridge is enabled")
		}
	}
	return nil
}

// DeliveryTimeoutDuration parses the configured delivery timeout. Empty
// means zero, which disables the timeout.
func (b BusConfig) DeliveryTimeoutDuration() (time.Duration, error) {
	if b.DeliveryTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(b.DeliveryTimeout)
	if err != nil {
		return 0, fmt.Errorf("bus.delivery_timeout %q is not a valid duration: %w", b.DeliveryTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("bus.delivery_timeout cannot be negative")
	}
	return d, nil
}
