package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent chatwidget configuration stored as
// config.toml in the .chatwidget/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version int          `toml:"version"`
	Client  ClientConfig `toml:"client"`
	Chat    ChatConfig   `toml:"chat"`
	Stub    StubConfig   `toml:"stub"`
}

// ClientConfig holds the transport client settings.
type ClientConfig struct {
	// Endpoint is the full backend URL (scheme + host + port + path).
	Endpoint string `toml:"endpoint,omitempty"`

	// Timeout is a Go duration string. Empty means no timeout.
	Timeout string `toml:"timeout,omitempty"`
}

// ChatConfig holds settings for the chat front ends.
type ChatConfig struct {
	Plain   bool `toml:"plain,omitempty"`
	NoColor bool `toml:"no_color,omitempty"`
}

// StubConfig holds settings for the development stub backend.
type StubConfig struct {
	Listen string `toml:"listen,omitempty"`
	Mode   string `toml:"mode,omitempty"`

	// Delay is a Go duration string paced between streamed chunks.
	Delay string `toml:"delay,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	desc string
	get  func(c *Config) string
	set  func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"client.endpoint": {
		desc: "Backend URL messages are posted to",
		get:  func(c *Config) string { return c.Client.Endpoint },
		set:  func(c *Config, v string) error { c.Client.Endpoint = v; return nil },
	},
	"client.timeout": {
		desc: "Bound on a whole exchange, e.g. 30s (empty: none)",
		get:  func(c *Config) string { return c.Client.Timeout },
		set: func(c *Config, v string) error {
			if err := validateDuration("client.timeout", v); err != nil {
				return err
			}
			c.Client.Timeout = v
			return nil
		},
	},
	"chat.plain": {
		desc: "Always use the line-based prompt",
		get:  func(c *Config) string { return strconv.FormatBool(c.Chat.Plain) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for chat.plain: %w", err)
			}
			c.Chat.Plain = b
			return nil
		},
	},
	"chat.no_color": {
		desc: "Render without colors",
		get:  func(c *Config) string { return strconv.FormatBool(c.Chat.NoColor) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for chat.no_color: %w", err)
			}
			c.Chat.NoColor = b
			return nil
		},
	},
	"stub.listen": {
		desc: "Listen address of the stub backend",
		get:  func(c *Config) string { return c.Stub.Listen },
		set:  func(c *Config, v string) error { c.Stub.Listen = v; return nil },
	},
	"stub.mode": {
		desc: "Stub response shape: json, sse, text or error",
		get:  func(c *Config) string { return c.Stub.Mode },
		set: func(c *Config, v string) error {
			if !IsValidStubMode(v) {
				return fmt.Errorf("invalid value for stub.mode: %q (available: %v)", v, StubModes)
			}
			c.Stub.Mode = v
			return nil
		},
	},
	"stub.delay": {
		desc: "Pause between streamed stub chunks",
		get:  func(c *Config) string { return c.Stub.Delay },
		set: func(c *Config, v string) error {
			if err := validateDuration("stub.delay", v); err != nil {
				return err
			}
			c.Stub.Delay = v
			return nil
		},
	},
}

// StubModes lists the response shapes the stub backend can produce.
var StubModes = []string{"json", "sse", "text", "error"}

// IsValidStubMode returns true if mode is one of StubModes.
func IsValidStubMode(mode string) bool {
	for _, m := range StubModes {
		if m == mode {
			return true
		}
	}
	return false
}

// validateDuration accepts an empty string (unset) or a Go duration string.
func validateDuration(key, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if d < 0 {
		return fmt.Errorf("invalid value for %s: must not be negative", key)
	}
	return nil
}
