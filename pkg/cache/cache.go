// Package cache provides a Redis client with lifecycle coordination.
package cache

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/zeroecho/pkg/lifecycle"
)

// System manages the Redis client and lifecycle coordination.
type System interface {
	// Client returns the underlying Redis client.
	Client() *redis.Client
	// Key joins parts under the configured key prefix.
	Key(parts ...string) string
	Start(lc *lifecycle.Coordinator) error
	Ready() bool
}

type cache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
	ready  atomic.Bool
}

// New creates a cache system. No connection is made until Start runs its startup ping.
func New(cfg *Config, logger *slog.Logger) System {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeoutDuration(),
	})

	return &cache{
		client: client,
		prefix: cfg.KeyPrefix,
		logger: logger.With("system", "cache"),
	}
}

func (c *cache) Client() *redis.Client {
	return c.client
}

func (c *cache) Key(parts ...string) string {
	if c.prefix == "" {
		return strings.Join(parts, ":")
	}
	return c.prefix + ":" + strings.Join(parts, ":")
}

func (c *cache) Ready() bool {
	return c.ready.Load()
}

func (c *cache) Start(lc *lifecycle.Coordinator) error {
	c.logger.Info("starting cache connection")
	lc.Register("cache", c)

	lc.OnStartup(func() {
		if err := c.ping(lc.Context()); err != nil {
			c.logger.Error("cache ping failed", "error", err)
			return
		}
		c.ready.Store(true)
		c.logger.Info("cache connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		c.ready.Store(false)

		if err := c.client.Close(); err != nil {
			c.logger.Error("cache close failed", "error", err)
			return
		}
		c.logger.Info("cache connection closed")
	})

	return nil
}

func (c *cache) ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
