// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/zeroecho/internal/config"
	"github.com/JaimeStill/zeroecho/internal/infrastructure"
	"github.com/JaimeStill/zeroecho/pkg/formatting"
	"github.com/JaimeStill/zeroecho/pkg/middleware"
	"github.com/JaimeStill/zeroecho/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware
// and registers the scheduled domain jobs.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(cfg, runtime)

	if err := domain.schedule(cfg, runtime); err != nil {
		return nil, fmt.Errorf("schedule jobs: %w", err)
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain)

	maxBody := cfg.API.MaxBodySizeBytes()

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.Recover(runtime.Logger))
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Session())
	m.Use(middleware.MaxBytes(maxBody))
	m.Use(middleware.Logger(runtime.Logger))

	runtime.Logger.Info(
		"api module configured",
		"base_path", cfg.API.BasePath,
		"max_body", formatting.FormatBytes(maxBody, 0),
	)

	return m, nil
}
