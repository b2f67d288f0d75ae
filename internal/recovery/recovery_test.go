package recovery_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/JaimeStill/zeroecho/internal/articles"
	"github.com/JaimeStill/zeroecho/internal/editions"
	"github.com/JaimeStill/zeroecho/internal/recovery"
	"github.com/JaimeStill/zeroecho/internal/state"
	"github.com/JaimeStill/zeroecho/pkg/events"
	"github.com/JaimeStill/zeroecho/pkg/schedule"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func published(id, code string, st state.State) articles.Article {
	a := articles.Article{ID: id, Title: "title " + id, State: st, Category: "news"}
	if code != "" {
		a.EditionCode = &code
	}
	return a
}

func TestFindOrphansScenario(t *testing.T) {
	records := []articles.Article{published("X", "E1", state.Published)}

	got := recovery.FindOrphans(records, editions.Index{})
	if !slices.Equal(got, []string{"X"}) {
		t.Fatalf("FindOrphans = %v, want [X]", got)
	}

	store := newMemArticles(records...)
	sys := recovery.New(store, staticIndex{}, nil, discard)

	result := sys.Recover(context.Background(), got)
	if result.Recovered != 1 || len(result.Failures) != 0 {
		t.Fatalf("result = %+v", result)
	}

	x := store.items["X"]
	if x.State != state.Classified || x.EditionCode != nil {
		t.Errorf("X = %s edition %v, want CLASSIFIED with no edition", x.State, x.EditionCode)
	}
}

func TestDiagnose(t *testing.T) {
	ix := editions.Index{
		"E1": {"ok", "rel"},
		"E2": {"other"},
	}
	records := []articles.Article{
		published("ok", "E1", state.Published),
		published("rel", "E1", state.Released),
		published("gone", "E9", state.Released),
		published("unlisted", "E2", state.Published),
		published("blank", "", state.Published),
		published("pool", "", state.Classified),
	}

	orphans := recovery.Diagnose(records, ix)

	want := map[string]recovery.Cause{
		"gone":     recovery.CauseEditionMissing,
		"unlisted": recovery.CauseNotListed,
		"blank":    recovery.CauseNoEdition,
	}
	if len(orphans) != len(want) {
		t.Fatalf("orphans = %+v", orphans)
	}
	for _, o := range orphans {
		if want[o.ID] != o.Cause {
			t.Errorf("%s cause = %s, want %s", o.ID, o.Cause, want[o.ID])
		}
	}

	if got := recovery.FindOrphans(nil, ix); got == nil || len(got) != 0 {
		t.Errorf("FindOrphans(nil) = %#v", got)
	}
}

func TestSweep(t *testing.T) {
	newSystem := func() (*memArticles, *recordingPublisher, recovery.System) {
		store := newMemArticles(
			published("ok", "E1", state.Published),
			published("gone", "E9", state.Published),
			published("unlisted", "E1", state.Released),
		)
		pub := &recordingPublisher{}
		ix := staticIndex{"E1": {"ok"}}
		return store, pub, recovery.New(store, ix, pub, discard)
	}

	t.Run("all orphans", func(t *testing.T) {
		store, pub, sys := newSystem()

		result, err := sys.Sweep(context.Background(), nil)
		if err != nil {
			t.Fatalf("Sweep: %v", err)
		}
		if result.Recovered != 2 || result.Skipped != 0 {
			t.Errorf("result = %+v", result)
		}
		if store.items["ok"].State != state.Published {
			t.Errorf("consistent article touched: %s", store.items["ok"].State)
		}
		if len(pub.events) != 1 || pub.events[0].Type != recovery.EventRecovered {
			t.Errorf("events = %+v", pub.events)
		}
	})

	t.Run("restricted to ids", func(t *testing.T) {
		store, _, sys := newSystem()

		result, err := sys.Sweep(context.Background(), []string{"gone", "ok", "gone", " "})
		if err != nil {
			t.Fatalf("Sweep: %v", err)
		}
		if result.Requested != 2 || result.Recovered != 1 || result.Skipped != 1 {
			t.Errorf("result = %+v", result)
		}
		if store.items["unlisted"].State != state.Released {
			t.Errorf("unrequested orphan recovered")
		}
	})

	t.Run("nothing to do", func(t *testing.T) {
		store := newMemArticles(published("ok", "E1", state.Published))
		pub := &recordingPublisher{}
		sys := recovery.New(store, staticIndex{"E1": {"ok"}}, pub, discard)

		result, err := sys.Sweep(context.Background(), nil)
		if err != nil {
			t.Fatalf("Sweep: %v", err)
		}
		if result.Recovered != 0 || len(pub.events) != 0 {
			t.Errorf("result = %+v events = %d", result, len(pub.events))
		}
	})

	t.Run("index failure", func(t *testing.T) {
		sys := recovery.New(newMemArticles(), failingIndex{}, nil, discard)
		if _, err := sys.Sweep(context.Background(), nil); err == nil {
			t.Error("expected error")
		}
	})
}

func TestRecoverPerItemFailures(t *testing.T) {
	store := newMemArticles(
		published("a", "E1", state.Published),
		published("pool", "", state.Classified),
	)
	sys := recovery.New(store, staticIndex{}, nil, discard)

	result := sys.Recover(context.Background(), []string{"missing", "pool", "a"})

	if result.Recovered != 1 || len(result.Failures) != 2 {
		t.Fatalf("result = %+v", result)
	}
	if result.Failures[0].Kind != articles.KindMatch {
		t.Errorf("missing kind = %s", result.Failures[0].Kind)
	}
	if result.Failures[1].Kind != articles.KindTransition {
		t.Errorf("pool kind = %s", result.Failures[1].Kind)
	}
}

func TestSchedule(t *testing.T) {
	sys := recovery.New(newMemArticles(), staticIndex{}, nil, discard)

	s := schedule.New(discard)
	if err := sys.Schedule(s, ""); err != nil {
		t.Fatalf("disabled: %v", err)
	}
	if len(s.Jobs()) != 0 {
		t.Errorf("jobs = %v, want none", s.Jobs())
	}

	if err := sys.Schedule(s, "@every 30m"); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if !slices.Equal(s.Jobs(), []string{"recovery.sweep"}) {
		t.Errorf("jobs = %v", s.Jobs())
	}

	if err := sys.Schedule(schedule.New(discard), "not a spec"); err == nil {
		t.Error("expected invalid spec error")
	}
}

func TestHandler(t *testing.T) {
	store := newMemArticles(
		published("gone", "E9", state.Published),
		published("ok", "E1", state.Published),
	)
	sys := recovery.New(store, staticIndex{"E1": {"ok"}}, nil, discard)

	mux := http.NewServeMux()
	group := sys.Handler().Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recovery/orphans", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"gone"`) {
		t.Fatalf("scan: %d %s", rec.Code, rec.Body.String())
	}
	if store.items["gone"].State != state.Published {
		t.Fatal("scan mutated state")
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/recovery/orphans", strings.NewReader(`{"ids":`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/recovery/orphans", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("sweep: %d", rec.Code)
	}
	if store.items["gone"].State != state.Classified {
		t.Errorf("gone = %s, want CLASSIFIED", store.items["gone"].State)
	}
}

type memArticles struct {
	items map[string]*articles.Article
	order []string
}

func newMemArticles(items ...articles.Article) *memArticles {
	m := &memArticles{items: map[string]*articles.Article{}}
	for i := range items {
		a := items[i]
		m.items[a.ID] = &a
		m.order = append(m.order, a.ID)
	}
	return m
}

func (m *memArticles) ListByState(_ context.Context, states ...state.State) ([]articles.Article, error) {
	var out []articles.Article
	for _, id := range m.order {
		if slices.Contains(states, m.items[id].State) {
			out = append(out, *m.items[id])
		}
	}
	return out, nil
}

func (m *memArticles) ResetPublication(_ context.Context, id string) (*articles.Article, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", articles.ErrNotFound, id)
	}
	if err := a.ResetPublication(); err != nil {
		return nil, err
	}
	return a, nil
}

type staticIndex editions.Index

func (s staticIndex) Index(context.Context) (editions.Index, error) {
	return editions.Index(s), nil
}

type failingIndex struct{}

func (failingIndex) Index(context.Context) (editions.Index, error) {
	return nil, errors.New("database unavailable")
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}
