// Package config carries the relay's runtime settings, loaded from an
// optional YAML file with environment overrides on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	Listen  ListenConfig  `yaml:"listen"`
	Limits  LimitsConfig  `yaml:"limits"`
	Logging LoggingConfig `yaml:"logging"`
	Stats   StatsConfig   `yaml:"stats"`
}

// ListenConfig describes the accepting endpoint and the event loop's wait.
type ListenConfig struct {
	Port          int `yaml:"port"`
	PollTimeoutMs int `yaml:"poll_timeout_ms"`
}

// LimitsConfig bounds the relay's memory: slot table size, per-client inbox
// capacity, and the formatted chat line cap. Separator is the single byte
// ending one message on the wire.
type LimitsConfig struct {
	MaxClients  int    `yaml:"max_clients"`
	InboxSize   int    `yaml:"inbox_size"`
	MaxChatLine int    `yaml:"max_chat_line"`
	Separator   string `yaml:"separator"`
}

// LoggingConfig selects log verbosity and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StatsConfig controls the periodic housekeeping report emitted from the
// event loop's idle branch.
type StatsConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalSeconds int  `yaml:"interval_seconds"`
}

// Default returns the configuration the relay runs with when nothing else
// is supplied.
func Default() *Config {
	return &Config{
		Listen: ListenConfig{
			Port:          7711,
			PollTimeoutMs: 1000,
		},
		Limits: LimitsConfig{
			MaxClients:  1000,
			InboxSize:   128,
			MaxChatLine: 256,
			Separator:   "\n",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Stats: StatsConfig{
			Enabled:         true,
			IntervalSeconds: 60,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path when
// one is given, and environment overrides, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CHATRELAY_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Listen.Port = n
		}
	}
	if v := os.Getenv("CHATRELAY_POLL_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Listen.PollTimeoutMs = n
		}
	}
	if v := os.Getenv("CHATRELAY_MAX_CLIENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.MaxClients = n
		}
	}
	if v := os.Getenv("CHATRELAY_INBOX_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.InboxSize = n
		}
	}
	if v := os.Getenv("CHATRELAY_MAX_CHAT_LINE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.MaxChatLine = n
		}
	}
	if v := os.Getenv("CHATRELAY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CHATRELAY_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("CHATRELAY_STATS_ENABLED"); v != "" {
		cfg.Stats.Enabled = v == "true"
	}
	if v := os.Getenv("CHATRELAY_STATS_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Stats.IntervalSeconds = n
		}
	}
}

// Validate rejects configurations the relay cannot run with.
func (c *Config) Validate() error {
	if c.Listen.Port < 0 || c.Listen.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Listen.Port)
	}
	if c.Listen.PollTimeoutMs <= 0 {
		return fmt.Errorf("config: poll timeout must be positive, got %d", c.Listen.PollTimeoutMs)
	}
	if c.Limits.MaxClients < 1 {
		return fmt.Errorf("config: max clients must be at least 1, got %d", c.Limits.MaxClients)
	}
	if c.Limits.InboxSize < 2 {
		return fmt.Errorf("config: inbox size must be at least 2, got %d", c.Limits.InboxSize)
	}
	if c.Limits.MaxChatLine < 1 {
		return fmt.Errorf("config: max chat line must be at least 1, got %d", c.Limits.MaxChatLine)
	}
	if len(c.Limits.Separator) != 1 {
		return fmt.Errorf("config: separator must be exactly one byte, got %q", c.Limits.Separator)
	}
	if !isValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("config: invalid log level %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: invalid log format %q", c.Logging.Format)
	}
	return nil
}

func isValidLogLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// SeparatorByte returns the message separator as a byte.
func (c *Config) SeparatorByte() byte {
	return c.Limits.Separator[0]
}

// PollTimeout returns the readiness wait bound as a duration.
func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.Listen.PollTimeoutMs) * time.Millisecond
}

// StatsInterval returns how often housekeeping reports, or zero when
// reporting is disabled.
func (c *Config) StatsInterval() time.Duration {
	if !c.Stats.Enabled {
		return 0
	}
	return time.Duration(c.Stats.IntervalSeconds) * time.Second
}
