package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/JaimeStill/zeroecho/internal/scoring"
)

const (
	EnvScoringTolerance       = "ZEROECHO_SCORING_TOLERANCE"
	EnvScoringCutlineImpact   = "ZEROECHO_SCORING_CUTLINE_IMPACT"
	EnvScoringCutlineZeroEcho = "ZEROECHO_SCORING_CUTLINE_ZERO_ECHO"

	EnvBatchesBodyBudget = "ZEROECHO_BATCHES_BODY_BUDGET"
	EnvBatchesBatchSize  = "ZEROECHO_BATCHES_BATCH_SIZE"
	EnvBatchesTTL        = "ZEROECHO_BATCHES_TTL"

	EnvIntakeSources   = "ZEROECHO_INTAKE_SOURCES"
	EnvIntakeChunkSize = "ZEROECHO_INTAKE_CHUNK_SIZE"
	EnvIntakeWorkers   = "ZEROECHO_INTAKE_WORKERS"
	EnvIntakeTimeout   = "ZEROECHO_INTAKE_TIMEOUT"
	EnvIntakeSchedule  = "ZEROECHO_INTAKE_SCHEDULE"
	EnvIntakeUserAgent = "ZEROECHO_INTAKE_USER_AGENT"

	EnvRecoverySchedule = "ZEROECHO_RECOVERY_SCHEDULE"
)

// DefaultRecoverySchedule runs the orphan sweep twice an hour.
const DefaultRecoverySchedule = "@every 30m"

// ScoringConfig holds the score audit tolerance and the default edition
// cutline thresholds.
type ScoringConfig struct {
	Tolerance float64       `toml:"tolerance"`
	Cutline   CutlineConfig `toml:"cutline"`
}

// CutlineConfig holds the thresholds below (impact) or above (zero echo)
// which a classified article is cut from the edition pool.
type CutlineConfig struct {
	Impact   float64 `toml:"impact"`
	ZeroEcho float64 `toml:"zero_echo"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ScoringConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ScoringConfig) Merge(overlay *ScoringConfig) {
	if overlay.Tolerance != 0 {
		c.Tolerance = overlay.Tolerance
	}
	if overlay.Cutline.Impact != 0 {
		c.Cutline.Impact = overlay.Cutline.Impact
	}
	if overlay.Cutline.ZeroEcho != 0 {
		c.Cutline.ZeroEcho = overlay.Cutline.ZeroEcho
	}
}

func (c *ScoringConfig) loadDefaults() {
	if c.Tolerance == 0 {
		c.Tolerance = scoring.DefaultTolerance
	}
	if c.Cutline.Impact == 0 {
		c.Cutline.Impact = 5
	}
	if c.Cutline.ZeroEcho == 0 {
		c.Cutline.ZeroEcho = 5
	}
}

func (c *ScoringConfig) loadEnv() {
	floatEnv(EnvScoringTolerance, &c.Tolerance)
	floatEnv(EnvScoringCutlineImpact, &c.Cutline.Impact)
	floatEnv(EnvScoringCutlineZeroEcho, &c.Cutline.ZeroEcho)
}

func (c *ScoringConfig) validate() error {
	if c.Tolerance < 0 {
		return fmt.Errorf("tolerance must be non-negative")
	}
	if c.Cutline.Impact < 0 || c.Cutline.Impact > 10 {
		return fmt.Errorf("cutline impact must be within [0, 10]: %v", c.Cutline.Impact)
	}
	if c.Cutline.ZeroEcho < 0 || c.Cutline.ZeroEcho > 10 {
		return fmt.Errorf("cutline zero_echo must be within [0, 10]: %v", c.Cutline.ZeroEcho)
	}
	return nil
}

// BatchesConfig holds outbound prompt sizing and batch retention.
type BatchesConfig struct {
	BodyBudget int    `toml:"body_budget"`
	BatchSize  int    `toml:"batch_size"`
	TTL        string `toml:"ttl"`
}

// TTLDuration returns TTL as a time.Duration.
func (c *BatchesConfig) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *BatchesConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *BatchesConfig) Merge(overlay *BatchesConfig) {
	if overlay.BodyBudget != 0 {
		c.BodyBudget = overlay.BodyBudget
	}
	if overlay.BatchSize != 0 {
		c.BatchSize = overlay.BatchSize
	}
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
}

func (c *BatchesConfig) loadDefaults() {
	if c.BodyBudget == 0 {
		c.BodyBudget = 4000
	}
	if c.BatchSize == 0 {
		c.BatchSize = 20
	}
	if c.TTL == "" {
		c.TTL = "24h"
	}
}

func (c *BatchesConfig) loadEnv() {
	intEnv(EnvBatchesBodyBudget, &c.BodyBudget)
	intEnv(EnvBatchesBatchSize, &c.BatchSize)
	if v := os.Getenv(EnvBatchesTTL); v != "" {
		c.TTL = v
	}
}

func (c *BatchesConfig) validate() error {
	if c.BodyBudget < 1 {
		return fmt.Errorf("body_budget must be positive")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be positive")
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return fmt.Errorf("invalid ttl: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	return nil
}

// IntakeConfig holds feed collection settings. An empty Schedule leaves
// intake to the HTTP trigger.
type IntakeConfig struct {
	Sources   string `toml:"sources"`
	ChunkSize int    `toml:"chunk_size"`
	Workers   int    `toml:"workers"`
	Timeout   string `toml:"timeout"`
	Schedule  string `toml:"schedule"`
	UserAgent string `toml:"user_agent"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *IntakeConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *IntakeConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *IntakeConfig) Merge(overlay *IntakeConfig) {
	if overlay.Sources != "" {
		c.Sources = overlay.Sources
	}
	if overlay.ChunkSize != 0 {
		c.ChunkSize = overlay.ChunkSize
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.Schedule != "" {
		c.Schedule = overlay.Schedule
	}
	if overlay.UserAgent != "" {
		c.UserAgent = overlay.UserAgent
	}
}

func (c *IntakeConfig) loadDefaults() {
	if c.Sources == "" {
		c.Sources = "sources.yaml"
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = 10
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.UserAgent == "" {
		c.UserAgent = "zeroecho-intake/1.0"
	}
}

func (c *IntakeConfig) loadEnv() {
	if v := os.Getenv(EnvIntakeSources); v != "" {
		c.Sources = v
	}
	intEnv(EnvIntakeChunkSize, &c.ChunkSize)
	intEnv(EnvIntakeWorkers, &c.Workers)
	if v := os.Getenv(EnvIntakeTimeout); v != "" {
		c.Timeout = v
	}
	if v, ok := os.LookupEnv(EnvIntakeSchedule); ok {
		c.Schedule = v
	}
	if v := os.Getenv(EnvIntakeUserAgent); v != "" {
		c.UserAgent = v
	}
}

func (c *IntakeConfig) validate() error {
	if c.ChunkSize < 1 {
		return fmt.Errorf("chunk_size must be positive")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return validateSchedule(c.Schedule)
}

// RecoveryConfig holds the orphan sweep schedule. Schedule is a pointer so
// an explicit empty value can disable the sweep.
type RecoveryConfig struct {
	Schedule *string `toml:"schedule"`
}

// Spec returns the cron spec of the sweep, empty when disabled.
func (c *RecoveryConfig) Spec() string {
	if c.Schedule == nil {
		return DefaultRecoverySchedule
	}
	return *c.Schedule
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *RecoveryConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return validateSchedule(c.Spec())
}

// Merge overwrites fields explicitly set in overlay.
func (c *RecoveryConfig) Merge(overlay *RecoveryConfig) {
	if overlay.Schedule != nil {
		spec := *overlay.Schedule
		c.Schedule = &spec
	}
}

func (c *RecoveryConfig) loadDefaults() {
	if c.Schedule == nil {
		spec := DefaultRecoverySchedule
		c.Schedule = &spec
	}
}

func (c *RecoveryConfig) loadEnv() {
	if v, ok := os.LookupEnv(EnvRecoverySchedule); ok {
		c.Schedule = &v
	}
}

func validateSchedule(spec string) error {
	if spec == "" {
		return nil
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

func intEnv(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func floatEnv(name string, dst *float64) {
	if v := os.Getenv(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
