package editions_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/zeroecho/internal/articles"
	"github.com/JaimeStill/zeroecho/internal/editions"
	"github.com/JaimeStill/zeroecho/internal/state"
	"github.com/JaimeStill/zeroecho/pkg/pagination"
)

type mockSystem struct {
	listFn     func(ctx context.Context, page pagination.PageRequest, filters editions.Filters) (*pagination.PageResult[editions.Edition], error)
	findFn     func(ctx context.Context, code string) (*editions.Edition, error)
	indexFn    func(ctx context.Context) (editions.Index, error)
	previewFn  func(ctx context.Context) ([]editions.Entry, error)
	cutlineFn  func(ctx context.Context, cmd editions.CutlineCommand) (*editions.CutlineResult, error)
	publishFn  func(ctx context.Context, cmd editions.PublishCommand) (*editions.Edition, error)
	releaseFn  func(ctx context.Context, code string) (*editions.Edition, error)
	deleteFn   func(ctx context.Context, code string) error
	snapshotFn func(ctx context.Context, code string) (*editions.Snapshot, error)
}

func (m *mockSystem) Handler() *editions.Handler {
	return editions.NewHandler(m, slog.New(slog.NewTextHandler(io.Discard, nil)), testPagination)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters editions.Filters) (*pagination.PageResult[editions.Edition], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, code string) (*editions.Edition, error) {
	return m.findFn(ctx, code)
}

func (m *mockSystem) Index(ctx context.Context) (editions.Index, error) {
	return m.indexFn(ctx)
}

func (m *mockSystem) Preview(ctx context.Context) ([]editions.Entry, error) {
	return m.previewFn(ctx)
}

func (m *mockSystem) ApplyCutline(ctx context.Context, cmd editions.CutlineCommand) (*editions.CutlineResult, error) {
	return m.cutlineFn(ctx, cmd)
}

func (m *mockSystem) Publish(ctx context.Context, cmd editions.PublishCommand) (*editions.Edition, error) {
	return m.publishFn(ctx, cmd)
}

func (m *mockSystem) Release(ctx context.Context, code string) (*editions.Edition, error) {
	return m.releaseFn(ctx, code)
}

func (m *mockSystem) Delete(ctx context.Context, code string) error {
	return m.deleteFn(ctx, code)
}

func (m *mockSystem) Snapshot(ctx context.Context, code string) (*editions.Snapshot, error) {
	return m.snapshotFn(ctx, code)
}

var testPagination = pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

func setupMux(sys *mockSystem) *http.ServeMux {
	mux := http.NewServeMux()
	group := sys.Handler().Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	return mux
}

func serve(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, path, r))
	return rec
}

func TestHandlerRoutes(t *testing.T) {
	group := (&mockSystem{}).Handler().Routes()
	if group.Prefix != "/editions" {
		t.Errorf("prefix = %s", group.Prefix)
	}
	if len(group.Routes) != 8 {
		t.Errorf("routes = %d, want 8", len(group.Routes))
	}
}

func TestHandlerList(t *testing.T) {
	sys := &mockSystem{
		listFn: func(_ context.Context, page pagination.PageRequest, filters editions.Filters) (*pagination.PageResult[editions.Edition], error) {
			if filters.Status == nil || *filters.Status != editions.StatusPreview {
				t.Errorf("status filter = %v", filters.Status)
			}
			result := pagination.NewPageResult([]editions.Edition{{Code: "E1"}}, 1, page.Page, page.PageSize)
			return &result, nil
		},
	}

	rec := serve(setupMux(sys), http.MethodGet, "/editions?status=preview", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var result pagination.PageResult[editions.Edition]
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Total != 1 || result.Data[0].Code != "E1" {
		t.Errorf("result = %+v", result)
	}
}

func TestHandlerPreview(t *testing.T) {
	sys := &mockSystem{
		previewFn: func(context.Context) ([]editions.Entry, error) {
			return editions.Compose([]articles.Article{scored("A", 8, 2), scored("B", 3, 1)}), nil
		},
	}

	rec := serve(setupMux(sys), http.MethodGet, "/editions/preview", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var entries []editions.Entry
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 || len(entries[0].Awards) != 2 {
		t.Errorf("entries = %+v", entries)
	}
}

func TestHandlerCutline(t *testing.T) {
	var got editions.CutlineCommand
	sys := &mockSystem{
		cutlineFn: func(_ context.Context, cmd editions.CutlineCommand) (*editions.CutlineResult, error) {
			got = cmd
			return &editions.CutlineResult{Candidates: []string{"a"}}, nil
		},
	}
	mux := setupMux(sys)

	t.Run("empty body uses defaults", func(t *testing.T) {
		got = editions.CutlineCommand{}
		rec := serve(mux, http.MethodPost, "/editions/cutline", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if got.Impact != nil || got.ZeroEcho != nil {
			t.Errorf("cmd = %+v", got)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		rec := serve(mux, http.MethodPost, "/editions/cutline", `{"impact": 6, "dry_run": true}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if got.Impact == nil || *got.Impact != 6 || !got.DryRun {
			t.Errorf("cmd = %+v", got)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		rec := serve(mux, http.MethodPost, "/editions/cutline", `{"impact":`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerPublish(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"created", `{"ids": ["a", "b"], "name": "Morning"}`, nil, http.StatusCreated},
		{"malformed", `{"ids":`, nil, http.StatusBadRequest},
		{"empty", `{"ids": [], "name": "Morning"}`, editions.ErrEmptyEdition, http.StatusBadRequest},
		{"duplicate code", `{"ids": ["a"], "code": "E1", "name": "x"}`, editions.ErrDuplicate, http.StatusConflict},
		{"not classified", `{"ids": ["a"], "name": "x"}`, &state.TransitionError{From: state.Analyzed, Action: state.Publish, Target: state.Published}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{
				publishFn: func(_ context.Context, cmd editions.PublishCommand) (*editions.Edition, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &editions.Edition{Code: "2026-01-01_1", Name: cmd.Name, ArticleIDs: cmd.IDs, Status: editions.StatusPreview}, nil
				},
			}

			rec := serve(setupMux(sys), http.MethodPost, "/editions", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandlerReleaseAndDelete(t *testing.T) {
	sys := &mockSystem{
		releaseFn: func(_ context.Context, code string) (*editions.Edition, error) {
			if code == "done" {
				return nil, editions.ErrAlreadyReleased
			}
			return &editions.Edition{Code: code, Status: editions.StatusReleased}, nil
		},
		deleteFn: func(_ context.Context, code string) error {
			if code == "missing" {
				return editions.ErrNotFound
			}
			return nil
		},
	}
	mux := setupMux(sys)

	if rec := serve(mux, http.MethodPost, "/editions/E1/release", ""); rec.Code != http.StatusOK {
		t.Errorf("release status = %d", rec.Code)
	}
	if rec := serve(mux, http.MethodPost, "/editions/done/release", ""); rec.Code != http.StatusConflict {
		t.Errorf("re-release status = %d, want 409", rec.Code)
	}
	if rec := serve(mux, http.MethodDelete, "/editions/E1", ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	if rec := serve(mux, http.MethodDelete, "/editions/missing", ""); rec.Code != http.StatusNotFound {
		t.Errorf("delete missing status = %d, want 404", rec.Code)
	}
}

func TestHandlerFindAndSnapshot(t *testing.T) {
	sys := &mockSystem{
		findFn: func(_ context.Context, code string) (*editions.Edition, error) {
			if code != "E1" {
				return nil, editions.ErrNotFound
			}
			return &editions.Edition{Code: code}, nil
		},
		snapshotFn: func(_ context.Context, code string) (*editions.Snapshot, error) {
			return &editions.Snapshot{Edition: editions.Edition{Code: code}, Articles: []articles.Article{{ID: "a"}}}, nil
		},
	}
	mux := setupMux(sys)

	if rec := serve(mux, http.MethodGet, "/editions/E1", ""); rec.Code != http.StatusOK {
		t.Errorf("find status = %d", rec.Code)
	}
	if rec := serve(mux, http.MethodGet, "/editions/E9", ""); rec.Code != http.StatusNotFound {
		t.Errorf("find missing status = %d", rec.Code)
	}

	rec := serve(mux, http.MethodGet, "/editions/E1/snapshot", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("snapshot status = %d", rec.Code)
	}
	var snap editions.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Edition.Code != "E1" || len(snap.Articles) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
}
