package articles_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/JaimeStill/zeroecho/internal/articles"
	"github.com/JaimeStill/zeroecho/internal/scoring"
	"github.com/JaimeStill/zeroecho/internal/state"
	"github.com/JaimeStill/zeroecho/pkg/repository"
)

const evidence = `{
	"IS_Analysis": {"Tier_Score": 2, "Gap_Score": 1.5, "Scope_Matrix_Score": 1, "Criticality_Total": 0.5},
	"ZES_Raw_Metrics": {"T1": 6, "T2": 7, "T3": 8, "P1": 2, "P2": 3, "P3": 4, "V1": 5, "V2": 6, "V3": 7, "Fine_Adjustment": 0.2}
}`

func TestGenerateID(t *testing.T) {
	id := articles.GenerateID("https://example.com/story")

	if len(id) != 16 {
		t.Fatalf("len = %d, want 16", len(id))
	}
	if articles.GenerateID("  https://example.com/story ") != id {
		t.Error("surrounding whitespace should not change the id")
	}
	if articles.GenerateID("https://example.com/other") == id {
		t.Error("different urls should produce different ids")
	}
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name         string
		from         state.State
		wantAdvanced bool
		wantState    state.State
		wantErr      bool
	}{
		{"collected advances", state.Collected, true, state.Analyzed, false},
		{"analyzing advances", state.Analyzing, true, state.Analyzed, false},
		{"analyzed updates in place", state.Analyzed, false, state.Analyzed, false},
		{"classified updates in place", state.Classified, false, state.Classified, false},
		{"released is illegal", state.Released, false, state.Released, true},
		{"rejected is illegal", state.Rejected, false, state.Rejected, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &articles.Article{ID: "a1", State: tt.from}
			advanced, err := a.Analyze(json.RawMessage(evidence))

			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, state.ErrIllegalTransition) {
					t.Errorf("error should be a transition error: %v", err)
				}
				if a.RawEvidence != nil {
					t.Error("failed analyze must not store evidence")
				}
				return
			}

			if advanced != tt.wantAdvanced {
				t.Errorf("advanced = %v, want %v", advanced, tt.wantAdvanced)
			}
			if a.State != tt.wantState {
				t.Errorf("state = %s, want %s", a.State, tt.wantState)
			}
			want := scoring.Result{ImpactScore: 5.0, ZeroEchoScore: 5.6, SchemaVersion: scoring.V10}
			if a.Result() != want {
				t.Errorf("scores = %+v, want %+v", a.Result(), want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	a := &articles.Article{ID: "a1", State: state.Analyzed}

	advanced, err := a.Classify(" Security ")
	if err != nil || !advanced {
		t.Fatalf("first classify: advanced=%v err=%v", advanced, err)
	}
	if a.Category != "Security" || a.State != state.Classified {
		t.Errorf("article = %+v", a)
	}

	advanced, err = a.Classify("Policy")
	if err != nil || advanced {
		t.Fatalf("reclassify: advanced=%v err=%v", advanced, err)
	}
	if a.Category != "Policy" {
		t.Errorf("category = %s, want Policy", a.Category)
	}

	if _, err := a.Classify("  "); !errors.Is(err, articles.ErrInvalidCategory) {
		t.Errorf("empty category: got %v", err)
	}

	collected := &articles.Article{ID: "a2", State: state.Collected}
	if _, err := collected.Classify("Policy"); !errors.Is(err, state.ErrIllegalTransition) {
		t.Errorf("classify collected: got %v", err)
	}
}

func TestRejectAndRestore(t *testing.T) {
	code := "2025-01-01_1"
	a := &articles.Article{ID: "a1", State: state.Published, EditionCode: &code}

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := a.Reject(state.ReasonManual, at); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if a.State != state.Rejected || a.EditionCode != nil {
		t.Errorf("after reject: %+v", a)
	}
	if a.Rejection == nil || a.Rejection.Reason != state.ReasonManual || !a.Rejection.At.Equal(at) {
		t.Errorf("rejection = %+v", a.Rejection)
	}
	if err := a.Validate(); err != nil {
		t.Errorf("invariants after reject: %v", err)
	}

	if err := a.Restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if a.State != state.Classified || a.Rejection != nil {
		t.Errorf("after restore: %+v", a)
	}
}

func TestPublicationLifecycle(t *testing.T) {
	a := &articles.Article{ID: "a1", State: state.Classified}

	if err := a.Publish(""); err == nil {
		t.Error("publish with empty code should fail")
	}
	if err := a.Publish("E1"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if a.Edition() != "E1" || a.State != state.Published {
		t.Errorf("after publish: %+v", a)
	}

	if err := a.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := a.Publish("E2"); !errors.Is(err, state.ErrIllegalTransition) {
		t.Errorf("republish released: got %v", err)
	}

	if err := a.ResetPublication(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if a.State != state.Classified || a.EditionCode != nil {
		t.Errorf("after reset: %+v", a)
	}
	if err := a.Validate(); err != nil {
		t.Errorf("invariants after reset: %v", err)
	}
}

func TestValidate(t *testing.T) {
	code := "E1"
	tests := []struct {
		name    string
		article articles.Article
		wantErr bool
	}{
		{"valid collected", articles.Article{ID: "a", State: state.Collected}, false},
		{"empty id", articles.Article{State: state.Collected}, true},
		{"unknown state", articles.Article{ID: "a", State: "LOST"}, true},
		{"score out of range", articles.Article{ID: "a", State: state.Analyzed, ImpactScore: 11}, true},
		{"evidence without version", articles.Article{ID: "a", State: state.Analyzed, RawEvidence: json.RawMessage(`{}`)}, true},
		{"edition outside publication", articles.Article{ID: "a", State: state.Classified, EditionCode: &code}, true},
		{"rejected without rejection", articles.Article{ID: "a", State: state.Rejected}, true},
		{"rejection outside rejected", articles.Article{ID: "a", State: state.Classified, Rejection: &articles.Rejection{Reason: state.ReasonManual}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.article.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, articles.ErrInvalidArticle) {
				t.Errorf("error should wrap ErrInvalidArticle: %v", err)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	_, transitionErr := state.Next(state.Released, state.Classify)

	tests := []struct {
		name string
		err  error
		want articles.FailureKind
	}{
		{"not found", fmt.Errorf("load: %w", articles.ErrNotFound), articles.KindMatch},
		{"transition", transitionErr, articles.KindTransition},
		{"conflict", fmt.Errorf("save: %w", repository.ErrConflict), articles.KindConflict},
		{"other", errors.New("connection reset"), articles.KindPersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := articles.KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	_, transitionErr := state.Next(state.Collected, state.Publish)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", articles.ErrNotFound, http.StatusNotFound},
		{"duplicate", articles.ErrDuplicate, http.StatusConflict},
		{"conflict", repository.ErrConflict, http.StatusConflict},
		{"transition", transitionErr, http.StatusUnprocessableEntity},
		{"invalid reason", articles.ErrInvalidReason, http.StatusBadRequest},
		{"no ids", articles.ErrNoIDs, http.StatusBadRequest},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := articles.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewScoreView(t *testing.T) {
	t.Run("without evidence", func(t *testing.T) {
		view := articles.NewScoreView(&articles.Article{ID: "a1", State: state.Collected}, 0)
		if view.Audit != nil || view.Drift != nil {
			t.Errorf("view should only carry stored scores: %+v", view)
		}
	})

	t.Run("stored scores drifted", func(t *testing.T) {
		a := &articles.Article{
			ID:            "a1",
			State:         state.Analyzed,
			RawEvidence:   json.RawMessage(evidence),
			ImpactScore:   5.0,
			ZeroEchoScore: 4.0,
			SchemaVersion: scoring.V10,
		}
		view := articles.NewScoreView(a, 0.05)
		if view.Audit == nil || view.Drift == nil {
			t.Fatal("view should carry audit and drift")
		}
		if !view.Drift.Drifted {
			t.Errorf("drift = %+v, want drifted", view.Drift)
		}
	})
}
