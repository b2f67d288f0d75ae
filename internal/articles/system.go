package articles

import (
	"context"

	"github.com/JaimeStill/zeroecho/internal/state"
	"github.com/JaimeStill/zeroecho/pkg/pagination"
)

// System defines the public contract for article domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Article], error)

	Find(ctx context.Context, id string) (*Article, error)
	// FindMany returns the articles with the given IDs in the order requested.
	// Unknown IDs are omitted.
	FindMany(ctx context.Context, ids []string) ([]Article, error)
	// ListByState returns every article in one of the given states, oldest first.
	ListByState(ctx context.Context, states ...state.State) ([]Article, error)
	// Known returns the stored IDs matching ids. Matching ignores case, so
	// callers pass lower-cased IDs.
	Known(ctx context.Context, ids []string) ([]string, error)

	Create(ctx context.Context, cmd CreateCommand) (*Article, error)
	// Save persists lifecycle fields guarded by the article's version and
	// increments it on success.
	Save(ctx context.Context, a *Article) error

	Score(ctx context.Context, id string) (*ScoreView, error)

	Reject(ctx context.Context, ids []string, reason state.Reason) ActionResult
	Restore(ctx context.Context, ids []string) ActionResult
	Classify(ctx context.Context, ids []string, category string) ActionResult
	ResetPublication(ctx context.Context, id string) (*Article, error)
}
