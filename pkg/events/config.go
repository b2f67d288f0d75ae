package events

import (
	"fmt"
	"os"
	"strings"
)

// Config holds Kafka publishing settings. An empty broker list selects the
// no-op publisher.
type Config struct {
	Brokers  []string `toml:"brokers"`
	Topic    string   `toml:"topic"`
	ClientID string   `toml:"client_id"`
}

// Env maps events config fields to environment variable names for override injection.
type Env struct {
	Brokers  string
	Topic    string
	ClientID string
}

// Enabled reports whether any brokers are configured.
func (c *Config) Enabled() bool {
	return len(c.Brokers) > 0
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Brokers != nil {
		c.Brokers = overlay.Brokers
	}
	if overlay.Topic != "" {
		c.Topic = overlay.Topic
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
}

func (c *Config) loadDefaults() {
	if c.Topic == "" {
		c.Topic = "zeroecho.events"
	}
	if c.ClientID == "" {
		c.ClientID = "zeroecho"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Brokers != "" {
		if v := os.Getenv(env.Brokers); v != "" {
			c.Brokers = splitList(v)
		}
	}
	if env.Topic != "" {
		if v := os.Getenv(env.Topic); v != "" {
			c.Topic = v
		}
	}
	if env.ClientID != "" {
		if v := os.Getenv(env.ClientID); v != "" {
			c.ClientID = v
		}
	}
}

func (c *Config) validate() error {
	if c.Enabled() && c.Topic == "" {
		return fmt.Errorf("topic required when brokers are configured")
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
