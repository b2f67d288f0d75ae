// Package articles implements the article domain: the entity and its
// lifecycle helpers, PostgreSQL persistence with optimistic versioning, and
// the operator actions exposed over HTTP.
package articles

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/JaimeStill/zeroecho/internal/scoring"
	"github.com/JaimeStill/zeroecho/internal/state"
)

// Rejection records why and when an article was rejected.
type Rejection struct {
	Reason state.Reason `json:"reason"`
	At     time.Time    `json:"at"`
}

// Article is a collected news article moving through the editorial lifecycle.
// All state changes go through its methods so scores, edition assignment, and
// rejection always agree with State.
type Article struct {
	ID            string          `json:"id"`
	URL           string          `json:"url"`
	Title         string          `json:"title"`
	Source        string          `json:"source"`
	Description   string          `json:"description"`
	Body          string          `json:"body,omitempty"`
	State         state.State     `json:"state"`
	RawEvidence   json.RawMessage `json:"raw_evidence,omitempty"`
	ImpactScore   float64         `json:"impact_score"`
	ZeroEchoScore float64         `json:"zero_echo_score"`
	SchemaVersion scoring.Version `json:"schema_version,omitempty"`
	Category      string          `json:"category,omitempty"`
	EditionCode   *string         `json:"edition_code"`
	Rejection     *Rejection      `json:"rejection,omitempty"`
	Version       int             `json:"version"`
	CollectedAt   time.Time       `json:"collected_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CreateCommand carries a crawled article. ID defaults to GenerateID(URL).
type CreateCommand struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
	Body        string    `json:"body"`
	CollectedAt time.Time `json:"collected_at"`
}

// GenerateID derives a stable article ID from its URL: the first 16 hex
// characters of its SHA-256 digest.
func GenerateID(url string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(url)))
	return hex.EncodeToString(sum[:])[:16]
}

// Result returns the stored scores as a scoring.Result.
func (a *Article) Result() scoring.Result {
	return scoring.Result{
		ImpactScore:   a.ImpactScore,
		ZeroEchoScore: a.ZeroEchoScore,
		SchemaVersion: a.SchemaVersion,
	}
}

func (a *Article) transition(action state.Action) error {
	next, err := state.Next(a.State, action)
	if err != nil {
		return err
	}
	a.State = next
	return nil
}

// BeginAnalysis marks a collected article as awaiting an LLM response.
func (a *Article) BeginAnalysis() error {
	return a.transition(state.BeginAnalysis)
}

// Analyze stores raw evidence and the scores recomputed from it. Articles not
// yet analyzed advance to ANALYZED; ANALYZED and CLASSIFIED articles are
// updated in place. It reports whether the state advanced.
func (a *Article) Analyze(raw json.RawMessage) (bool, error) {
	advanced := false
	switch a.State {
	case state.Analyzed, state.Classified:
	default:
		if err := a.transition(state.Score); err != nil {
			return false, err
		}
		advanced = true
	}

	a.RawEvidence = append(json.RawMessage(nil), raw...)
	a.applyResult(scoring.Normalize(raw))
	return advanced, nil
}

// Rescore recomputes the scores from stored evidence.
func (a *Article) Rescore() {
	if len(a.RawEvidence) == 0 {
		return
	}
	a.applyResult(scoring.Normalize(a.RawEvidence))
}

func (a *Article) applyResult(r scoring.Result) {
	a.ImpactScore = r.ImpactScore
	a.ZeroEchoScore = r.ZeroEchoScore
	a.SchemaVersion = r.SchemaVersion
}

// Classify assigns a category. ANALYZED articles advance to CLASSIFIED;
// CLASSIFIED articles are recategorized in place. It reports whether the
// state advanced.
func (a *Article) Classify(category string) (bool, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return false, ErrInvalidCategory
	}

	advanced := false
	if a.State != state.Classified {
		if err := a.transition(state.Classify); err != nil {
			return false, err
		}
		advanced = true
	}

	a.Category = category
	return advanced, nil
}

// Reject moves the article to REJECTED with the given reason.
func (a *Article) Reject(reason state.Reason, at time.Time) error {
	if err := a.transition(state.Reject); err != nil {
		return err
	}
	a.EditionCode = nil
	a.Rejection = &Rejection{Reason: reason, At: at.UTC()}
	return nil
}

// Restore returns a rejected article to CLASSIFIED.
func (a *Article) Restore() error {
	if err := a.transition(state.Restore); err != nil {
		return err
	}
	a.Rejection = nil
	return nil
}

// Publish assigns the article to the edition identified by code.
func (a *Article) Publish(code string) error {
	if code == "" {
		return fmt.Errorf("publish %s: empty edition code", a.ID)
	}
	if err := a.transition(state.Publish); err != nil {
		return err
	}
	a.EditionCode = &code
	return nil
}

// Release marks a published article as publicly released.
func (a *Article) Release() error {
	return a.transition(state.Release)
}

// ResetPublication unwinds a publication and returns the article to the
// composable pool.
func (a *Article) ResetPublication() error {
	if err := a.transition(state.ResetPublication); err != nil {
		return err
	}
	a.EditionCode = nil
	return nil
}

// Edition returns the edition code or "" when unassigned.
func (a *Article) Edition() string {
	if a.EditionCode == nil {
		return ""
	}
	return *a.EditionCode
}

// Validate checks the entity invariants.
func (a *Article) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidArticle)
	}
	if !a.State.Valid() {
		return fmt.Errorf("%w: unknown state %q", ErrInvalidArticle, a.State)
	}
	for _, v := range []float64{a.ImpactScore, a.ZeroEchoScore} {
		if v < scoring.MinScore || v > scoring.MaxScore {
			return fmt.Errorf("%w: score %v out of range", ErrInvalidArticle, v)
		}
	}
	if len(a.RawEvidence) > 0 && a.SchemaVersion == "" {
		return fmt.Errorf("%w: evidence without schema version", ErrInvalidArticle)
	}
	if a.EditionCode != nil && !a.State.Publication() {
		return fmt.Errorf("%w: edition set in state %s", ErrInvalidArticle, a.State)
	}
	if (a.Rejection != nil) != (a.State == state.Rejected) {
		return fmt.Errorf("%w: rejection does not match state %s", ErrInvalidArticle, a.State)
	}
	return nil
}
