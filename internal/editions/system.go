package editions

import (
	"context"

	"github.com/JaimeStill/zeroecho/internal/articles"
	"github.com/JaimeStill/zeroecho/internal/state"
	"github.com/JaimeStill/zeroecho/pkg/events"
	"github.com/JaimeStill/zeroecho/pkg/pagination"
)

// System defines the public contract for edition operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Edition], error)

	Find(ctx context.Context, code string) (*Edition, error)
	// Index maps every persisted edition code to its article IDs.
	Index(ctx context.Context) (Index, error)

	// Preview composes the CLASSIFIED pool.
	Preview(ctx context.Context) ([]Entry, error)
	// ApplyCutline rejects every CLASSIFIED article outside the thresholds
	// with reason cutline.
	ApplyCutline(ctx context.Context, cmd CutlineCommand) (*CutlineResult, error)

	Publish(ctx context.Context, cmd PublishCommand) (*Edition, error)
	Release(ctx context.Context, code string) (*Edition, error)
	// Delete removes the edition and returns its articles to CLASSIFIED.
	Delete(ctx context.Context, code string) error
	// Snapshot returns the stored snapshot of a released edition, or a live
	// rendering of a preview edition.
	Snapshot(ctx context.Context, code string) (*Snapshot, error)
}

// ArticleStore is the subset of the article system editions depend on.
type ArticleStore interface {
	FindMany(ctx context.Context, ids []string) ([]articles.Article, error)
	ListByState(ctx context.Context, states ...state.State) ([]articles.Article, error)
	Reject(ctx context.Context, ids []string, reason state.Reason) articles.ActionResult
}

// Publisher receives edition lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Index maps edition codes to their article IDs.
type Index map[string][]string

// Has reports whether code names a persisted edition.
func (ix Index) Has(code string) bool {
	_, ok := ix[code]
	return ok
}

// Contains reports whether the edition code lists article id.
func (ix Index) Contains(code, id string) bool {
	for _, a := range ix[code] {
		if a == id {
			return true
		}
	}
	return false
}

// CutlineCommand overrides the configured thresholds. DryRun reports the
// candidates without rejecting them.
type CutlineCommand struct {
	Impact   *float64 `json:"impact,omitempty"`
	ZeroEcho *float64 `json:"zero_echo,omitempty"`
	DryRun   bool     `json:"dry_run,omitempty"`
}

// CutlineResult reports the candidates and, unless dry, the reject outcome.
type CutlineResult struct {
	Thresholds Thresholds             `json:"thresholds"`
	Candidates []string               `json:"candidates"`
	Result     *articles.ActionResult `json:"result,omitempty"`
}
