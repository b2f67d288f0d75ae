package recovery

import (
	"context"

	"github.com/JaimeStill/zeroecho/internal/articles"
	"github.com/JaimeStill/zeroecho/internal/editions"
	"github.com/JaimeStill/zeroecho/internal/state"
	"github.com/JaimeStill/zeroecho/pkg/events"
	"github.com/JaimeStill/zeroecho/pkg/schedule"
)

// System defines the orphan recovery operations.
type System interface {
	Handler() *Handler

	// Scan reports the current orphans without changing anything.
	Scan(ctx context.Context) (*Report, error)
	// Recover resets each article's publication. Failures are per item.
	Recover(ctx context.Context, ids []string) Result
	// Sweep scans and recovers the orphans found. When ids is non-empty only
	// those orphans are recovered; the rest of ids are skipped.
	Sweep(ctx context.Context, ids []string) (*Result, error)
	// Schedule registers a periodic sweep. An empty spec disables it.
	Schedule(s schedule.System, spec string) error
}

// ArticleStore is the subset of the article system recovery depends on.
type ArticleStore interface {
	ListByState(ctx context.Context, states ...state.State) ([]articles.Article, error)
	ResetPublication(ctx context.Context, id string) (*articles.Article, error)
}

// EditionIndex supplies the persisted edition codes and their articles.
type EditionIndex interface {
	Index(ctx context.Context) (editions.Index, error)
}

// Publisher receives recovery events.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Report is the outcome of a dry-run scan.
type Report struct {
	Scanned int      `json:"scanned"`
	Orphans []Orphan `json:"orphans"`
}

// Result summarizes a recovery run.
type Result struct {
	Requested int                `json:"requested"`
	Recovered int                `json:"recovered"`
	Skipped   int                `json:"skipped"`
	Failures  []articles.Failure `json:"failures"`
}
