// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, blob storage, cache,
// event publishing, scheduling) that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/zeroecho/internal/config"
	"github.com/JaimeStill/zeroecho/pkg/cache"
	"github.com/JaimeStill/zeroecho/pkg/database"
	"github.com/JaimeStill/zeroecho/pkg/events"
	"github.com/JaimeStill/zeroecho/pkg/lifecycle"
	"github.com/JaimeStill/zeroecho/pkg/schedule"
	"github.com/JaimeStill/zeroecho/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Cache     cache.System
	Events    events.Publisher
	Scheduler schedule.System
}

// NewLogger creates the service text logger at the configured level.
func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := NewLogger(cfg.Level())

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(ctx, &cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Cache:     cache.New(&cfg.Cache, logger),
		Events:    events.New(&cfg.Events, logger),
		Scheduler: schedule.New(logger),
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// The scheduler starts last so jobs only run against started systems.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Cache.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("cache start failed: %w", err)
	}
	if err := i.Events.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("events start failed: %w", err)
	}
	if err := i.Scheduler.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("scheduler start failed: %w", err)
	}
	return nil
}
