package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/zeroecho/internal/articles"
	"github.com/JaimeStill/zeroecho/internal/prompts"
	"github.com/JaimeStill/zeroecho/internal/state"
	"github.com/JaimeStill/zeroecho/pkg/events"
	"github.com/JaimeStill/zeroecho/pkg/middleware"
)

// DefaultBatchSize caps a prompt built from the pending pool.
const DefaultBatchSize = 20

const defaultSession = "default"

type engine struct {
	articles  ArticleStore
	prompts   PromptSource
	store     Store
	publisher Publisher
	logger    *slog.Logger
	opts      Options
	now       func() time.Time
}

// New creates the reconciliation engine implementing the System interface.
func New(
	articles ArticleStore,
	prompts PromptSource,
	store Store,
	publisher Publisher,
	logger *slog.Logger,
	opts Options,
) System {
	if opts.BodyBudget <= 0 {
		opts.BodyBudget = DefaultBodyBudget
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	return &engine{
		articles:  articles,
		prompts:   prompts,
		store:     store,
		publisher: publisher,
		logger:    logger.With("system", "reconcile"),
		opts:      opts,
		now:       time.Now,
	}
}

func (e *engine) Handler() *Handler {
	return NewHandler(e, e.logger)
}

func (e *engine) Find(ctx context.Context, id uuid.UUID) (*Batch, error) {
	return e.store.Find(ctx, id)
}

func (e *engine) Prompt(ctx context.Context, cmd PromptCommand) (*PromptResult, error) {
	stage, err := prompts.ParseStage(string(cmd.Stage))
	if err != nil {
		return nil, err
	}

	pool, err := e.pool(ctx, stage, cmd)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, ErrEmptyBatch
	}

	instructions, err := e.prompts.Instructions(ctx, stage)
	if err != nil {
		return nil, fmt.Errorf("load instructions: %w", err)
	}
	spec, err := e.prompts.Spec(ctx, stage)
	if err != nil {
		return nil, fmt.Errorf("load spec: %w", err)
	}

	text, err := BuildPrompt(pool, instructions, spec, e.opts.BodyBudget)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(pool))
	for i, a := range pool {
		ids[i] = a.ID
	}

	session := sessionOf(ctx)
	b := NewBatch(stage, session, ids, e.now())

	if err := e.store.Save(ctx, b); err != nil {
		return nil, err
	}
	if err := e.store.AddSession(ctx, session, ids); err != nil {
		e.logger.Warn("session index not extended", "session", session, "error", err)
	}

	if stage == prompts.StageScoring {
		e.beginAnalysis(ctx, pool)
	}

	e.publish(ctx, events.Event{
		Type:    "batch.prompted",
		Key:     b.ID.String(),
		Payload: map[string]any{"stage": stage, "article_ids": ids},
	})

	e.logger.Info("batch prompted",
		"batch", b.ID,
		"stage", stage,
		"session", session,
		"articles", len(ids),
	)

	return &PromptResult{
		BatchID:    b.ID,
		Stage:      stage,
		Prompt:     text,
		ArticleIDs: ids,
	}, nil
}

// eligible lists the states whose articles may be sent for a stage.
func eligible(stage prompts.Stage) []state.State {
	if stage == prompts.StageClassify {
		return []state.State{state.Analyzed, state.Classified}
	}
	return []state.State{state.Collected, state.Analyzing, state.Analyzed, state.Classified}
}

// pending lists the states that make up a stage's default pool.
func pending(stage prompts.Stage) []state.State {
	if stage == prompts.StageClassify {
		return []state.State{state.Analyzed}
	}
	return []state.State{state.Collected, state.Analyzing}
}

func (e *engine) pool(ctx context.Context, stage prompts.Stage, cmd PromptCommand) ([]articles.Article, error) {
	if len(cmd.IDs) > 0 {
		found, err := e.articles.FindMany(ctx, cmd.IDs)
		if err != nil {
			return nil, fmt.Errorf("load batch articles: %w", err)
		}

		allowed := eligible(stage)
		out := make([]articles.Article, 0, len(found))
		for _, a := range found {
			if !slices.Contains(allowed, a.State) {
				e.logger.Warn("article not eligible for stage", "id", a.ID, "state", a.State, "stage", stage)
				continue
			}
			out = append(out, a)
		}
		return out, nil
	}

	found, err := e.articles.ListByState(ctx, pending(stage)...)
	if err != nil {
		return nil, fmt.Errorf("load pending articles: %w", err)
	}

	limit := cmd.Limit
	if limit <= 0 || limit > e.opts.BatchSize {
		limit = e.opts.BatchSize
	}
	if len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

// beginAnalysis marks collected articles as awaiting a response. Failures
// are logged only; scoring accepts COLLECTED articles directly.
func (e *engine) beginAnalysis(ctx context.Context, pool []articles.Article) {
	for i := range pool {
		a := &pool[i]
		if a.State != state.Collected {
			continue
		}
		if err := a.BeginAnalysis(); err != nil {
			continue
		}
		if err := e.articles.Save(ctx, a); err != nil {
			e.logger.Warn("begin analysis not saved", "id", a.ID, "error", err)
		}
	}
}

func (e *engine) Apply(ctx context.Context, id uuid.UUID, cmd ApplyCommand) (*Summary, error) {
	b, err := e.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	var summary *Summary
	switch b.Stage {
	case prompts.StageScoring:
		records, err := ParseScoring(cmd.Response)
		if err != nil {
			return nil, err
		}
		summary, err = e.applyScoring(ctx, b, records, cmd.ConfirmPositional)
		if err != nil {
			return nil, err
		}
	case prompts.StageClassify:
		groups, err := ParseClassification(cmd.Response)
		if err != nil {
			return nil, err
		}
		summary, err = e.applyClassification(ctx, b, groups, cmd.ConfirmPositional)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidStage, b.Stage)
	}

	e.publish(ctx, events.Event{
		Type:    "batch.applied",
		Key:     b.ID.String(),
		Payload: summary,
	})

	e.logger.Info("batch applied",
		"batch", b.ID,
		"stage", b.Stage,
		"received", summary.Received,
		"success", summary.Success,
		"updated", summary.Updated,
		"duplicate", summary.Duplicate,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"replayed", summary.Replayed,
	)
	return summary, nil
}

// matchContext assembles the indexes for a batch. The session and global
// indexes are best-effort: lookup failures are logged and the index is left
// empty.
func (e *engine) matchContext(ctx context.Context, b *Batch, recordIDs []string, confirm bool) MatchContext {
	mc := MatchContext{
		Requests:          b.Requests,
		Session:           map[string]string{},
		Global:            map[string]string{},
		Positional:        b.Order,
		ConfirmPositional: confirm,
	}

	if ids, err := e.store.Session(ctx, b.Session); err != nil {
		e.logger.Warn("session index unavailable", "session", b.Session, "error", err)
	} else {
		mc.Session = NewIndex(ids...)
	}

	var unresolved []string
	for _, id := range recordIDs {
		key := NormalizeID(id)
		if key == "" {
			continue
		}
		if _, ok := mc.Requests[key]; ok {
			continue
		}
		if _, ok := mc.Session[key]; ok {
			continue
		}
		unresolved = append(unresolved, key)
	}

	if len(unresolved) > 0 {
		known, err := e.articles.Known(ctx, unresolved)
		if err != nil {
			e.logger.Warn("global index unavailable", "error", err)
		} else {
			mc.Global = NewIndex(known...)
		}
	}

	return mc
}

func (e *engine) load(ctx context.Context, matched []Matched) (map[string]*articles.Article, error) {
	ids := make([]string, 0, len(matched))
	for _, m := range matched {
		ids = append(ids, m.ArticleID)
	}

	found, err := e.articles.FindMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*articles.Article, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}
	return byID, nil
}

func (e *engine) publish(ctx context.Context, ev events.Event) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, ev); err != nil {
		e.logger.Warn("event not published", "type", ev.Type, "error", err)
	}
}

func sessionOf(ctx context.Context) string {
	if s := middleware.SessionFrom(ctx); s != "" {
		return s
	}
	return defaultSession
}
