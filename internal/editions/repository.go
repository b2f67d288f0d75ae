package editions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/zeroecho/internal/articles"
	"github.com/JaimeStill/zeroecho/internal/state"
	"github.com/JaimeStill/zeroecho/pkg/events"
	"github.com/JaimeStill/zeroecho/pkg/pagination"
	"github.com/JaimeStill/zeroecho/pkg/query"
	"github.com/JaimeStill/zeroecho/pkg/repository"
	"github.com/JaimeStill/zeroecho/pkg/storage"
)

const (
	EventPublished = "edition.published"
	EventReleased  = "edition.released"
	EventDeleted   = "edition.deleted"
)

type repo struct {
	db         *sql.DB
	articles   ArticleStore
	archive    *Archive
	publisher  Publisher
	logger     *slog.Logger
	pagination pagination.Config
	cutline    Thresholds
	now        func() time.Time
}

// New creates an edition repository implementing the System interface.
// cutline supplies the default thresholds for ApplyCutline.
func New(
	db *sql.DB,
	articles ArticleStore,
	store storage.System,
	publisher Publisher,
	logger *slog.Logger,
	pagination pagination.Config,
	cutline Thresholds,
) System {
	return &repo{
		db:         db,
		articles:   articles,
		archive:    NewArchive(store),
		publisher:  publisher,
		logger:     logger.With("system", "editions"),
		pagination: pagination,
		cutline:    cutline,
		now:        time.Now,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Edition], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Code", "Name")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs, err := qb.BuildCount()
	if err != nil {
		return nil, fmt.Errorf("build edition count: %w", err)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count editions: %w", err)
	}

	pageSQL, pageArgs, err := qb.BuildPage(page.Page, page.PageSize)
	if err != nil {
		return nil, fmt.Errorf("build edition page: %w", err)
	}

	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanEdition)
	if err != nil {
		return nil, fmt.Errorf("query editions: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, code string) (*Edition, error) {
	q, args, err := query.NewBuilder(projection).BuildSingle("Code", code)
	if err != nil {
		return nil, fmt.Errorf("build edition query: %w", err)
	}

	e, err := repository.QueryOne(ctx, r.db, q, args, scanEdition)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &e, nil
}

func (r *repo) Index(ctx context.Context) (Index, error) {
	scan := func(s repository.Scanner) (Edition, error) {
		var (
			e   Edition
			ids []byte
		)
		if err := s.Scan(&e.Code, &ids); err != nil {
			return e, err
		}
		if len(ids) > 0 {
			if err := json.Unmarshal(ids, &e.ArticleIDs); err != nil {
				return e, fmt.Errorf("decode article ids of %s: %w", e.Code, err)
			}
		}
		return e, nil
	}

	items, err := repository.QueryMany(ctx, r.db, "SELECT code, article_ids FROM editions", nil, scan)
	if err != nil {
		return nil, fmt.Errorf("index editions: %w", err)
	}

	ix := make(Index, len(items))
	for _, e := range items {
		ix[e.Code] = e.ArticleIDs
	}
	return ix, nil
}

func (r *repo) Preview(ctx context.Context) ([]Entry, error) {
	pool, err := r.articles.ListByState(ctx, state.Classified)
	if err != nil {
		return nil, fmt.Errorf("load classified pool: %w", err)
	}
	return Compose(pool), nil
}

func (r *repo) ApplyCutline(ctx context.Context, cmd CutlineCommand) (*CutlineResult, error) {
	t := r.cutline
	if cmd.Impact != nil {
		t.Impact = *cmd.Impact
	}
	if cmd.ZeroEcho != nil {
		t.ZeroEcho = *cmd.ZeroEcho
	}

	pool, err := r.articles.ListByState(ctx, state.Classified)
	if err != nil {
		return nil, fmt.Errorf("load classified pool: %w", err)
	}

	result := &CutlineResult{Thresholds: t, Candidates: Cutline(pool, t)}
	if cmd.DryRun || len(result.Candidates) == 0 {
		return result, nil
	}

	applied := r.articles.Reject(ctx, result.Candidates, state.ReasonCutline)
	result.Result = &applied

	r.logger.Info("cutline applied",
		"impact", t.Impact,
		"zero_echo", t.ZeroEcho,
		"pool", len(pool),
		"rejected", applied.Success,
		"failed", len(applied.Failures),
	)
	return result, nil
}

func (r *repo) Publish(ctx context.Context, cmd PublishCommand) (*Edition, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	ids := unique(cmd.IDs)
	if len(ids) == 0 {
		return nil, ErrEmptyEdition
	}

	code := strings.TrimSpace(cmd.Code)
	if code == "" {
		next, err := r.nextCode(ctx)
		if err != nil {
			return nil, err
		}
		code = next
	}
	if err := ValidateCode(code); err != nil {
		return nil, err
	}

	items, err := r.articles.FindMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load edition articles: %w", err)
	}
	if missing := missingIDs(ids, items); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", articles.ErrNotFound, strings.Join(missing, ", "))
	}

	for i := range items {
		if err := items[i].Publish(code); err != nil {
			return nil, fmt.Errorf("publish %s: %w", items[i].ID, err)
		}
	}

	encoded, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encode article ids: %w", err)
	}

	q := `
		INSERT INTO editions(code, name, article_ids, status)
		VALUES ($1, $2, $3, $4)
		RETURNING code, name, article_ids, status, created_at, released_at`

	e, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Edition, error) {
		e, err := repository.QueryOne(ctx, tx, q, []any{code, name, string(encoded), string(StatusPreview)}, scanEdition)
		if err != nil {
			return e, err
		}
		for i := range items {
			if err := articles.SaveWith(ctx, tx, &items[i]); err != nil {
				return e, err
			}
		}
		return e, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("edition published", "code", e.Code, "articles", len(e.ArticleIDs))
	r.publish(ctx, EventPublished, &e)
	return &e, nil
}

func (r *repo) Release(ctx context.Context, code string) (*Edition, error) {
	e, err := r.Find(ctx, code)
	if err != nil {
		return nil, err
	}
	if e.Status == StatusReleased {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyReleased, code)
	}

	items, err := r.articles.FindMany(ctx, e.ArticleIDs)
	if err != nil {
		return nil, fmt.Errorf("load edition articles: %w", err)
	}

	released := make([]articles.Article, 0, len(items))
	for i := range items {
		a := &items[i]
		if a.Edition() != code {
			r.logger.Warn("article left edition before release", "code", code, "id", a.ID, "state", a.State)
			continue
		}
		if err := a.Release(); err != nil {
			return nil, fmt.Errorf("release %s: %w", a.ID, err)
		}
		released = append(released, *a)
	}
	if len(released) == 0 {
		return nil, ErrEmptyEdition
	}

	now := r.now().UTC()
	e.Status = StatusReleased
	e.ReleasedAt = &now
	e.ArticleIDs = articleIDs(released)

	encoded, err := json.Marshal(e.ArticleIDs)
	if err != nil {
		return nil, fmt.Errorf("encode article ids: %w", err)
	}

	q := `
		UPDATE editions SET status = $2, article_ids = $3, released_at = $4
		WHERE code = $1 AND status = $5`

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecVersioned(ctx, tx, q,
			code, string(StatusReleased), string(encoded), now, string(StatusPreview),
		); err != nil {
			return struct{}{}, err
		}
		for i := range released {
			if err := articles.SaveWith(ctx, tx, &released[i]); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if err := r.archive.Save(ctx, &Snapshot{Edition: *e, Articles: released}); err != nil {
		r.logger.Error("edition snapshot failed", "code", code, "error", err)
	}

	r.logger.Info("edition released", "code", code, "articles", len(released))
	r.publish(ctx, EventReleased, e)
	return e, nil
}

func (r *repo) Delete(ctx context.Context, code string) error {
	e, err := r.Find(ctx, code)
	if err != nil {
		return err
	}

	items, err := r.articles.FindMany(ctx, e.ArticleIDs)
	if err != nil {
		return fmt.Errorf("load edition articles: %w", err)
	}

	reset := 0
	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		for i := range items {
			a := &items[i]
			if a.Edition() != code {
				continue
			}
			if err := a.ResetPublication(); err != nil {
				return struct{}{}, fmt.Errorf("reset %s: %w", a.ID, err)
			}
			if err := articles.SaveWith(ctx, tx, a); err != nil {
				return struct{}{}, err
			}
			reset++
		}
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM editions WHERE code = $1", code)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if e.Status == StatusReleased {
		if err := r.archive.Remove(ctx, code); err != nil {
			r.logger.Warn("snapshot removal failed", "code", code, "error", err)
		}
	}

	r.logger.Info("edition deleted", "code", code, "reset", reset)
	r.publish(ctx, EventDeleted, e)
	return nil
}

func (r *repo) Snapshot(ctx context.Context, code string) (*Snapshot, error) {
	e, err := r.Find(ctx, code)
	if err != nil {
		return nil, err
	}

	if e.Status == StatusReleased {
		snap, err := r.archive.Load(ctx, code)
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		r.logger.Warn("snapshot missing, rebuilding", "code", code)
	}

	items, err := r.articles.FindMany(ctx, e.ArticleIDs)
	if err != nil {
		return nil, fmt.Errorf("load edition articles: %w", err)
	}
	snap := &Snapshot{Edition: *e, Articles: items}

	if e.Status == StatusReleased {
		if err := r.archive.Save(ctx, snap); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

func (r *repo) nextCode(ctx context.Context) (string, error) {
	day := r.now().UTC()
	prefix := day.Format(time.DateOnly) + "_"

	scan := func(s repository.Scanner) (string, error) {
		var code string
		err := s.Scan(&code)
		return code, err
	}

	existing, err := repository.QueryMany(ctx, r.db,
		"SELECT code FROM editions WHERE code LIKE $1",
		[]any{prefix + "%"},
		scan,
	)
	if err != nil {
		return "", fmt.Errorf("query edition codes: %w", err)
	}
	return NextCode(day, existing), nil
}

func (r *repo) publish(ctx context.Context, typ string, e *Edition) {
	if r.publisher == nil {
		return
	}
	ev := events.Event{
		Type: typ,
		Key:  e.Code,
		Payload: map[string]any{
			"code":        e.Code,
			"name":        e.Name,
			"status":      e.Status,
			"article_ids": e.ArticleIDs,
		},
		At: r.now().UTC(),
	}
	if err := r.publisher.Publish(ctx, ev); err != nil {
		r.logger.Warn("event not published", "type", typ, "code", e.Code, "error", err)
	}
}

func unique(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func missingIDs(ids []string, found []articles.Article) []string {
	have := make(map[string]bool, len(found))
	for _, a := range found {
		have[a.ID] = true
	}
	var missing []string
	for _, id := range ids {
		if !have[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

func articleIDs(items []articles.Article) []string {
	ids := make([]string, len(items))
	for i, a := range items {
		ids[i] = a.ID
	}
	return ids
}
