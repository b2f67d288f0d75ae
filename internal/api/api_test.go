package api_test

import (
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/JaimeStill/zeroecho/internal/api"
	"github.com/JaimeStill/zeroecho/internal/config"
	"github.com/JaimeStill/zeroecho/internal/infrastructure"
	"github.com/JaimeStill/zeroecho/pkg/cache"
	"github.com/JaimeStill/zeroecho/pkg/events"
	"github.com/JaimeStill/zeroecho/pkg/lifecycle"
	"github.com/JaimeStill/zeroecho/pkg/pagination"
	"github.com/JaimeStill/zeroecho/pkg/routes"
	"github.com/JaimeStill/zeroecho/pkg/schedule"
)

type fakeDatabase struct{}

func (fakeDatabase) Connection() *sql.DB                   { return nil }
func (fakeDatabase) Start(lc *lifecycle.Coordinator) error { return nil }
func (fakeDatabase) Ready() bool                           { return true }

func testSetup() (*config.Config, *infrastructure.Infrastructure) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{
		API: config.APIConfig{
			BasePath:   "/api",
			Pagination: pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
		},
		Scoring: config.ScoringConfig{
			Tolerance: 0.05,
			Cutline:   config.CutlineConfig{Impact: 5, ZeroEcho: 5},
		},
		Batches: config.BatchesConfig{BodyBudget: 4000, BatchSize: 20, TTL: "24h"},
		Intake:  config.IntakeConfig{Sources: "sources.yaml", ChunkSize: 10, Workers: 4, Timeout: "30s"},
	}

	infra := &infrastructure.Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Database:  fakeDatabase{},
		Cache:     cache.New(&cache.Config{Addr: "localhost:6379", KeyPrefix: "test"}, logger),
		Events:    events.New(&events.Config{}, logger),
		Scheduler: schedule.New(logger),
	}
	return cfg, infra
}

func TestGroups(t *testing.T) {
	cfg, infra := testSetup()
	domain := api.NewDomain(cfg, api.NewRuntime(cfg, infra))

	patterns := routes.Patterns(api.Groups(domain)...)

	want := []string{
		"GET /articles",
		"POST /articles/reject",
		"GET /articles/{id}/score",
		"POST /batches/prompt",
		"POST /batches/{id}/apply",
		"GET /editions/preview",
		"POST /editions/{code}/release",
		"DELETE /editions/{code}",
		"GET /recovery/orphans",
		"POST /recovery/orphans",
		"GET /prompts/{stage}/instructions",
		"GET /prompts/{stage}/effective",
		"POST /intake/run",
	}
	for _, p := range want {
		if !slices.Contains(patterns, p) {
			t.Errorf("missing route %q", p)
		}
	}

	mux := http.NewServeMux()
	routes.Register(mux, api.Groups(domain)...)
}

func TestNewModule(t *testing.T) {
	cfg, infra := testSetup()

	m, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule: %v", err)
	}

	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}

	jobs := infra.Scheduler.Jobs()
	if !slices.Contains(jobs, "recovery.sweep") {
		t.Errorf("jobs: got %v, want recovery.sweep scheduled", jobs)
	}
	if slices.Contains(jobs, "intake.run") {
		t.Errorf("jobs: got %v, intake has no schedule", jobs)
	}

	t.Run("bad request handled without storage", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/batches/prompt", strings.NewReader(`{"stage":"nope"}`))
		m.Serve(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status: got %d, want 400", rec.Code)
		}
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		m.Serve(rec, httptest.NewRequest("GET", "/api/nowhere", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("status: got %d, want 404", rec.Code)
		}
	})
}
