package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	require.Equal(t, 7711, cfg.Listen.Port)
	require.Equal(t, 1000, cfg.Limits.MaxClients)
	require.Equal(t, 128, cfg.Limits.InboxSize)
	require.Equal(t, 256, cfg.Limits.MaxChatLine)
	require.Equal(t, byte('\n'), cfg.SeparatorByte())
	require.Equal(t, time.Second, cfg.PollTimeout())
	require.Equal(t, time.Minute, cfg.StatsInterval())
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	data := []byte(`
listen:
  port: 9000
  poll_timeout_ms: 250
limits:
  max_clients: 64
  inbox_size: 256
logging:
  level: debug
  format: json
stats:
  enabled: false
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Listen.Port)
	require.Equal(t, 250*time.Millisecond, cfg.PollTimeout())
	require.Equal(t, 64, cfg.Limits.MaxClients)
	require.Equal(t, 256, cfg.Limits.InboxSize)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
	require.Zero(t, cfg.StatsInterval())

	// Fields absent from the file keep their defaults.
	require.Equal(t, 256, cfg.Limits.MaxChatLine)
	require.Equal(t, "\n", cfg.Limits.Separator)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CHATRELAY_PORT", "8123")
	t.Setenv("CHATRELAY_MAX_CLIENTS", "5")
	t.Setenv("CHATRELAY_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 8123, cfg.Listen.Port)
	require.Equal(t, 5, cfg.Limits.MaxClients)
	require.Equal(t, "warn", cfg.Logging.Level)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative port", func(c *Config) { c.Listen.Port = -1 }},
		{"zero poll timeout", func(c *Config) { c.Listen.PollTimeoutMs = 0 }},
		{"zero max clients", func(c *Config) { c.Limits.MaxClients = 0 }},
		{"tiny inbox", func(c *Config) { c.Limits.InboxSize = 1 }},
		{"zero chat line", func(c *Config) { c.Limits.MaxChatLine = 0 }},
		{"empty separator", func(c *Config) { c.Limits.Separator = "" }},
		{"multi-byte separator", func(c *Config) { c.Limits.Separator = "\r\n" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
