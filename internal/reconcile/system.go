// Package reconcile runs the LLM batch round trip. It renders the outbound
// prompt for a set of articles, remembers what was sent, and applies the
// pasted response back onto those articles: matching records to articles,
// normalizing scores, driving lifecycle transitions, and rejecting the
// duplicates a classification response leaves out.
package reconcile

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/zeroecho/internal/articles"
	"github.com/JaimeStill/zeroecho/internal/prompts"
	"github.com/JaimeStill/zeroecho/internal/state"
	"github.com/JaimeStill/zeroecho/pkg/events"
)

// System defines the public contract for batch reconciliation.
type System interface {
	Handler() *Handler

	// Prompt builds and records an outbound batch for the session in ctx.
	Prompt(ctx context.Context, cmd PromptCommand) (*PromptResult, error)
	// Apply reconciles a pasted response against batch id. Parse errors and
	// a refused positional match abort before any article is touched;
	// everything else is reported per item in the Summary.
	Apply(ctx context.Context, id uuid.UUID, cmd ApplyCommand) (*Summary, error)
	Find(ctx context.Context, id uuid.UUID) (*Batch, error)
}

// ArticleStore is the article persistence the engine needs.
type ArticleStore interface {
	FindMany(ctx context.Context, ids []string) ([]articles.Article, error)
	ListByState(ctx context.Context, states ...state.State) ([]articles.Article, error)
	Known(ctx context.Context, ids []string) ([]string, error)
	Save(ctx context.Context, a *articles.Article) error
}

// PromptSource supplies stage instructions and response specs.
type PromptSource interface {
	Instructions(ctx context.Context, stage prompts.Stage) (string, error)
	Spec(ctx context.Context, stage prompts.Stage) (string, error)
}

// Publisher receives batch notifications.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Options tunes prompt size and score auditing.
type Options struct {
	BodyBudget int
	BatchSize  int
	Tolerance  float64
}

// PromptCommand requests an outbound batch. Without IDs the pool is every
// article awaiting the stage, oldest first, capped at Limit.
type PromptCommand struct {
	Stage prompts.Stage `json:"stage"`
	IDs   []string      `json:"ids,omitempty"`
	Limit int           `json:"limit,omitempty"`
}

// PromptResult is the prompt text to paste into the model plus the batch
// ID the response must be applied to.
type PromptResult struct {
	BatchID    uuid.UUID     `json:"batch_id"`
	Stage      prompts.Stage `json:"stage"`
	Prompt     string        `json:"prompt"`
	ArticleIDs []string      `json:"article_ids"`
}

// ApplyCommand carries the pasted response.
type ApplyCommand struct {
	Response          string `json:"response"`
	ConfirmPositional bool   `json:"confirm_positional"`
}

// Summary reports the outcome of one apply.
type Summary struct {
	BatchID  uuid.UUID     `json:"batch_id"`
	Stage    prompts.Stage `json:"stage"`
	Received int           `json:"received"`
	// Success counts articles that advanced a lifecycle step.
	Success int `json:"success"`
	// Updated counts articles already past the step whose data was refreshed.
	Updated     int            `json:"updated"`
	Duplicate   int            `json:"duplicate"`
	Skipped     int            `json:"skipped"`
	Failed      int            `json:"failed"`
	PerCategory map[string]int `json:"per_category,omitempty"`
	Unmatched   []Unmatched    `json:"unmatched"`
	// Mismatched lists articles whose model-claimed scores disagree with
	// the recomputed ones.
	Mismatched []string           `json:"mismatched,omitempty"`
	Failures   []articles.Failure `json:"failures"`
	// Replayed is set when an earlier apply of this batch already rejected
	// some of the articles the response left out.
	Replayed bool `json:"replayed"`
}

func newSummary(b *Batch, received int) *Summary {
	return &Summary{
		BatchID:   b.ID,
		Stage:     b.Stage,
		Received:  received,
		Unmatched: []Unmatched{},
		Failures:  []articles.Failure{},
	}
}

func (s *Summary) fail(f articles.Failure) {
	s.Failures = append(s.Failures, f)
	s.Failed = len(s.Failures)
}
