// Package intake collects articles from syndication feeds into the
// COLLECTED pool.
//
// A run fetches every configured source, drops entries already stored,
// extracts readable bodies in chunks with bounded concurrency, and creates
// the remaining articles. Failures are recorded per source or per item and
// never stop the run.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/zeroecho/internal/articles"
	"github.com/JaimeStill/zeroecho/pkg/schedule"
)

const (
	DefaultChunkSize = 10
	DefaultWorkers   = 4

	jobName = "intake.run"
)

// ErrRunning reports that a run is already in progress.
var ErrRunning = errors.New("intake run already in progress")

// System runs feed collection.
type System interface {
	Handler() *Handler
	Run(ctx context.Context) (*RunResult, error)
	// Schedule registers a periodic run. An empty spec disables it.
	Schedule(s schedule.System, spec string) error
}

// ArticleStore is the subset of the article system intake depends on.
type ArticleStore interface {
	Known(ctx context.Context, ids []string) ([]string, error)
	Create(ctx context.Context, cmd articles.CreateCommand) (*articles.Article, error)
}

// SourceLoader supplies the sources of a run.
type SourceLoader func() ([]Source, error)

// Options tunes extraction concurrency.
type Options struct {
	ChunkSize int
	Workers   int
}

// Stage names the step an intake failure happened in.
type Stage string

const (
	StageFetch   Stage = "fetch"
	StageExtract Stage = "extract"
	StageCreate  Stage = "create"
)

// Failure is a per-source or per-item failure.
type Failure struct {
	Source string `json:"source"`
	URL    string `json:"url,omitempty"`
	Stage  Stage  `json:"stage"`
	Error  string `json:"error"`
}

// RunResult summarizes a run.
type RunResult struct {
	Sources   int           `json:"sources"`
	Fetched   int           `json:"fetched"`
	Known     int           `json:"known"`
	Extracted int           `json:"extracted"`
	Created   int           `json:"created"`
	Duplicate int           `json:"duplicate"`
	Failures  []Failure     `json:"failures"`
	Duration  time.Duration `json:"duration"`
}

type engine struct {
	articles  ArticleStore
	sources   SourceLoader
	fetcher   Fetcher
	extractor Extractor
	opts      Options
	logger    *slog.Logger
	running   sync.Mutex
}

// New creates the intake system.
func New(
	articles ArticleStore,
	sources SourceLoader,
	fetcher Fetcher,
	extractor Extractor,
	logger *slog.Logger,
	opts Options,
) System {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &engine{
		articles:  articles,
		sources:   sources,
		fetcher:   fetcher,
		extractor: extractor,
		opts:      opts,
		logger:    logger.With("system", "intake"),
	}
}

func (e *engine) Handler() *Handler {
	return NewHandler(e, e.logger)
}

func (e *engine) Run(ctx context.Context) (*RunResult, error) {
	if !e.running.TryLock() {
		return nil, ErrRunning
	}
	defer e.running.Unlock()

	start := time.Now()

	sources, err := e.sources()
	if err != nil {
		return nil, err
	}

	result := &RunResult{Sources: len(sources), Failures: []Failure{}}

	items := e.fetchAll(ctx, sources, result)
	result.Fetched = len(items)

	items, err = e.dropKnown(ctx, items)
	if err != nil {
		return nil, err
	}
	result.Known = result.Fetched - len(items)

	e.extractAll(ctx, items)

	for i := range items {
		item := &items[i]
		if item.Err != "" {
			result.Failures = append(result.Failures, Failure{
				Source: item.Source, URL: item.URL, Stage: StageExtract, Error: item.Err,
			})
		} else if item.Body != "" {
			result.Extracted++
		}

		if _, err := e.articles.Create(ctx, item.Command()); err != nil {
			if errors.Is(err, articles.ErrDuplicate) {
				result.Duplicate++
				continue
			}
			result.Failures = append(result.Failures, Failure{
				Source: item.Source, URL: item.URL, Stage: StageCreate, Error: err.Error(),
			})
			continue
		}
		result.Created++
	}

	result.Duration = time.Since(start)

	e.logger.Info("intake run finished",
		"sources", result.Sources,
		"fetched", result.Fetched,
		"known", result.Known,
		"created", result.Created,
		"failed", len(result.Failures),
		"duration", result.Duration,
	)
	return result, nil
}

func (e *engine) Schedule(s schedule.System, spec string) error {
	return s.Add(jobName, spec, func(ctx context.Context) {
		if _, err := e.Run(ctx); err != nil {
			e.logger.Error("scheduled intake failed", "error", err)
		}
	})
}

func (e *engine) fetchAll(ctx context.Context, sources []Source, result *RunResult) []Item {
	var items []Item
	seen := make(map[string]bool)

	for _, src := range sources {
		fetched, err := e.fetcher.Fetch(ctx, src)
		if err != nil {
			e.logger.Warn("source fetch failed", "source", src.Name, "error", err)
			result.Failures = append(result.Failures, Failure{
				Source: src.Name, URL: src.URL, Stage: StageFetch, Error: err.Error(),
			})
			continue
		}

		for _, item := range fetched {
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true
			items = append(items, item)
		}
	}
	return items
}

func (e *engine) dropKnown(ctx context.Context, items []Item) ([]Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	known, err := e.articles.Known(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("check known articles: %w", err)
	}

	stored := make(map[string]bool, len(known))
	for _, id := range known {
		stored[id] = true
	}

	fresh := items[:0]
	for _, item := range items {
		if !stored[item.ID] {
			fresh = append(fresh, item)
		}
	}
	return fresh, nil
}

// extractAll fills item bodies chunk by chunk. Within a chunk at most
// Workers extractions run at once.
func (e *engine) extractAll(ctx context.Context, items []Item) {
	for start := 0; start < len(items); start += e.opts.ChunkSize {
		end := min(start+e.opts.ChunkSize, len(items))
		chunk := items[start:end]

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.opts.Workers)

		for i := range chunk {
			if !chunk[i].Extract {
				continue
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					chunk[i].Err = err.Error()
					return nil
				}

				body, err := e.extractor.Extract(gctx, chunk[i].URL)
				if err != nil {
					e.logger.Debug("extraction failed", "url", chunk[i].URL, "error", err)
					chunk[i].Err = err.Error()
					return nil
				}
				chunk[i].Body = body
				return nil
			})
		}

		_ = g.Wait()
		e.logger.Debug("chunk extracted", "from", start, "to", end)
	}
}
