package reconcile_test

import (
	"errors"
	"testing"

	"github.com/JaimeStill/zeroecho/internal/reconcile"
)

func TestMatchPrecedence(t *testing.T) {
	mc := reconcile.MatchContext{
		Requests: reconcile.NewIndex("A1", "shared"),
		Session:  reconcile.NewIndex("S1", "shared"),
		Global:   reconcile.NewIndex("G1", "S1"),
	}

	result, err := reconcile.Match(mc, []string{" a1 ", "S1", "g1", "SHARED", "missing"})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}

	want := []struct {
		article string
		source  reconcile.Source
	}{
		{"A1", reconcile.SourceRequest},
		{"S1", reconcile.SourceSession},
		{"G1", reconcile.SourceGlobal},
		{"shared", reconcile.SourceRequest},
	}

	if len(result.Matched) != len(want) {
		t.Fatalf("matched = %d, want %d", len(result.Matched), len(want))
	}
	for i, w := range want {
		got := result.Matched[i]
		if got.ArticleID != w.article || got.Source != w.source {
			t.Errorf("matched[%d] = %+v, want %s via %s", i, got, w.article, w.source)
		}
	}

	if len(result.Unmatched) != 1 {
		t.Fatalf("unmatched = %d, want 1", len(result.Unmatched))
	}
	if u := result.Unmatched[0]; u.Index != 4 || u.AttemptedID != "missing" {
		t.Errorf("unmatched = %+v", u)
	}
}

func TestMatchPositional(t *testing.T) {
	mc := reconcile.MatchContext{
		Requests:   reconcile.NewIndex("a", "b"),
		Positional: []string{"a", "b"},
	}

	t.Run("refused without confirmation", func(t *testing.T) {
		result, err := reconcile.Match(mc, []string{"", " ", ""})
		if !errors.Is(err, reconcile.ErrPositionalRefused) {
			t.Fatalf("err = %v, want ErrPositionalRefused", err)
		}
		if len(result.Matched) != 0 {
			t.Errorf("nothing should match: %+v", result.Matched)
		}
	})

	t.Run("confirmed pairs by position", func(t *testing.T) {
		confirmed := mc
		confirmed.ConfirmPositional = true

		result, err := reconcile.Match(confirmed, []string{"", "", ""})
		if err != nil {
			t.Fatalf("Match: %v", err)
		}
		if len(result.Matched) != 2 || len(result.Unmatched) != 1 {
			t.Fatalf("result = %+v", result)
		}
		if result.Matched[1].ArticleID != "b" || result.Matched[1].Source != reconcile.SourcePosition {
			t.Errorf("matched[1] = %+v", result.Matched[1])
		}
		if result.Unmatched[0].Index != 2 {
			t.Errorf("unmatched index = %d, want 2", result.Unmatched[0].Index)
		}
	})

	t.Run("mixed ids never fall back", func(t *testing.T) {
		confirmed := mc
		confirmed.ConfirmPositional = true

		result, err := reconcile.Match(confirmed, []string{"a", ""})
		if err != nil {
			t.Fatalf("Match: %v", err)
		}
		if len(result.Matched) != 1 || result.Matched[0].Source != reconcile.SourceRequest {
			t.Errorf("matched = %+v", result.Matched)
		}
		if len(result.Unmatched) != 1 {
			t.Errorf("unmatched = %+v", result.Unmatched)
		}
	})
}

func TestMatchEmpty(t *testing.T) {
	result, err := reconcile.Match(reconcile.MatchContext{}, nil)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(result.Matched) != 0 || len(result.Unmatched) != 0 {
		t.Errorf("result = %+v", result)
	}
}

func TestBatchMissing(t *testing.T) {
	b := reconcile.NewBatch("classify", "s", []string{"A", "B", "C", "D"}, fixedNow)

	got := b.Missing([]string{"c", "A"})
	want := []string{"B", "D"}

	if len(got) != len(want) {
		t.Fatalf("missing = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("missing[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if len(b.Requests) != 4 || b.Requests["a"] != "A" {
		t.Errorf("requests = %v", b.Requests)
	}
}
