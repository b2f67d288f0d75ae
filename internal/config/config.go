package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/zeroecho/pkg/cache"
	"github.com/JaimeStill/zeroecho/pkg/database"
	"github.com/JaimeStill/zeroecho/pkg/events"
	"github.com/JaimeStill/zeroecho/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvZeroEchoEnv             = "ZEROECHO_ENV"
	EnvZeroEchoShutdownTimeout = "ZEROECHO_SHUTDOWN_TIMEOUT"
	EnvZeroEchoVersion         = "ZEROECHO_VERSION"
	EnvZeroEchoLogLevel        = "ZEROECHO_LOG_LEVEL"
)

var databaseEnv = &database.Env{
	Host:            "ZEROECHO_DB_HOST",
	Port:            "ZEROECHO_DB_PORT",
	Name:            "ZEROECHO_DB_NAME",
	User:            "ZEROECHO_DB_USER",
	Password:        "ZEROECHO_DB_PASSWORD",
	SSLMode:         "ZEROECHO_DB_SSL_MODE",
	MaxOpenConns:    "ZEROECHO_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "ZEROECHO_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "ZEROECHO_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "ZEROECHO_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "ZEROECHO_STORAGE_PROVIDER",
	ContainerName:    "ZEROECHO_STORAGE_CONTAINER_NAME",
	ConnectionString: "ZEROECHO_STORAGE_CONNECTION_STRING",
	Region:           "ZEROECHO_STORAGE_REGION",
	Profile:          "ZEROECHO_STORAGE_PROFILE",
	Endpoint:         "ZEROECHO_STORAGE_ENDPOINT",
	UsePathStyle:     "ZEROECHO_STORAGE_USE_PATH_STYLE",
}

var cacheEnv = &cache.Env{
	Addr:      "ZEROECHO_CACHE_ADDR",
	Password:  "ZEROECHO_CACHE_PASSWORD",
	DB:        "ZEROECHO_CACHE_DB",
	KeyPrefix: "ZEROECHO_CACHE_KEY_PREFIX",
}

var eventsEnv = &events.Env{
	Brokers:  "ZEROECHO_EVENTS_BROKERS",
	Topic:    "ZEROECHO_EVENTS_TOPIC",
	ClientID: "ZEROECHO_EVENTS_CLIENT_ID",
}

// Config is the root configuration for the ZeroEcho service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Cache           cache.Config    `toml:"cache"`
	Events          events.Config   `toml:"events"`
	API             APIConfig       `toml:"api"`
	Scoring         ScoringConfig   `toml:"scoring"`
	Batches         BatchesConfig   `toml:"batches"`
	Intake          IntakeConfig    `toml:"intake"`
	Recovery        RecoveryConfig  `toml:"recovery"`
	LogLevel        string          `toml:"log_level"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the ZEROECHO_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvZeroEchoEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Level returns LogLevel as a slog.Level.
func (c *Config) Level() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// ParseLevel maps a level name to a slog.Level. Unknown names report false
// and fall back to info.
func ParseLevel(value string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "info":
		return slog.LevelInfo, true
	case "debug":
		return slog.LevelDebug, true
	default:
		return slog.LevelInfo, false
	}
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. Variables from a .env file in the working
// directory are loaded first; variables already set in the process win.
// If no config.toml exists, defaults and environment variables provide all
// configuration.
func Load() (*Config, error) {
	_ = godotenv.Load(DotEnvFile)

	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Cache.Merge(&overlay.Cache)
	c.Events.Merge(&overlay.Events)
	c.API.Merge(&overlay.API)
	c.Scoring.Merge(&overlay.Scoring)
	c.Batches.Merge(&overlay.Batches)
	c.Intake.Merge(&overlay.Intake)
	c.Recovery.Merge(&overlay.Recovery)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Events.Finalize(eventsEnv); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Scoring.Finalize(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if err := c.Batches.Finalize(); err != nil {
		return fmt.Errorf("batches: %w", err)
	}
	if err := c.Intake.Finalize(); err != nil {
		return fmt.Errorf("intake: %w", err)
	}
	if err := c.Recovery.Finalize(); err != nil {
		return fmt.Errorf("recovery: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvZeroEchoLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvZeroEchoShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvZeroEchoVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	if _, ok := ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("invalid log_level: %q", c.LogLevel)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvZeroEchoEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
