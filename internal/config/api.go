package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/zeroecho/pkg/formatting"
	"github.com/JaimeStill/zeroecho/pkg/middleware"
	"github.com/JaimeStill/zeroecho/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "ZEROECHO_CORS_ENABLED",
	Origins:          "ZEROECHO_CORS_ORIGINS",
	AllowedMethods:   "ZEROECHO_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "ZEROECHO_CORS_ALLOWED_HEADERS",
	AllowCredentials: "ZEROECHO_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "ZEROECHO_CORS_MAX_AGE",
}

var paginationEnv = &pagination.Env{
	DefaultPageSize: "ZEROECHO_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "ZEROECHO_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, request limits, CORS, and pagination settings.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize string                `toml:"max_body_size"`
	CORS        middleware.CORSConfig `toml:"cors"`
	Pagination  pagination.Config     `toml:"pagination"`
}

// MaxBodySizeBytes returns MaxBodySize in bytes. Pasted model responses are
// the largest bodies the API accepts.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return 10 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "10MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("ZEROECHO_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("ZEROECHO_API_MAX_BODY_SIZE"); v != "" {
		c.MaxBodySize = v
	}
}
