package articles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/JaimeStill/zeroecho/internal/scoring"
	"github.com/JaimeStill/zeroecho/internal/state"
	"github.com/JaimeStill/zeroecho/pkg/pagination"
	"github.com/JaimeStill/zeroecho/pkg/query"
	"github.com/JaimeStill/zeroecho/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
	tolerance  float64
	now        func() time.Time
}

// New creates an article repository implementing the System interface.
// tolerance bounds the claimed-vs-recomputed score difference reported by Score.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
	tolerance float64,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "articles"),
		pagination: pagination,
		tolerance:  tolerance,
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
) (*pagination.PageResult[Article], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "Source", "ID")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs, err := qb.BuildCount()
	if err != nil {
		return nil, fmt.Errorf("build article count: %w", err)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}

	pageSQL, pageArgs, err := qb.BuildPage(page.Page, page.PageSize)
	if err != nil {
		return nil, fmt.Errorf("build article page: %w", err)
	}

	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanArticle)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id string) (*Article, error) {
	q, args, err := query.NewBuilder(projection).BuildSingle("ID", id)
	if err != nil {
		return nil, fmt.Errorf("build article query: %w", err)
	}

	a, err := repository.QueryOne(ctx, r.db, q, args, scanArticle)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

func (r *repo) FindMany(ctx context.Context, ids []string) ([]Article, error) {
	if len(ids) == 0 {
		return []Article{}, nil
	}

	q, args, err := query.NewBuilder(projection).WhereAny("ID", ids).Build()
	if err != nil {
		return nil, fmt.Errorf("build article query: %w", err)
	}

	found, err := repository.QueryMany(ctx, r.db, q, args, scanArticle)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}

	byID := make(map[string]Article, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}

	ordered := make([]Article, 0, len(found))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok && !seen[id] {
			ordered = append(ordered, a)
			seen[id] = true
		}
	}
	return ordered, nil
}

func (r *repo) ListByState(ctx context.Context, states ...state.State) ([]Article, error) {
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = string(s)
	}

	q, args, err := query.
		NewBuilder(projection, query.SortField{Field: "CollectedAt"}).
		WhereAny("State", names).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build article query: %w", err)
	}

	items, err := repository.QueryMany(ctx, r.db, q, args, scanArticle)
	if err != nil {
		return nil, fmt.Errorf("list articles by state: %w", err)
	}
	return items, nil
}

func (r *repo) Known(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	scan := func(s repository.Scanner) (string, error) {
		var id string
		err := s.Scan(&id)
		return id, err
	}

	known, err := repository.QueryMany(
		ctx, r.db,
		"SELECT id FROM articles WHERE lower(id) = ANY($1)",
		[]any{pq.StringArray(ids)},
		scan,
	)
	if err != nil {
		return nil, fmt.Errorf("query known articles: %w", err)
	}
	return known, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Article, error) {
	cmd.URL = strings.TrimSpace(cmd.URL)
	if cmd.URL == "" && cmd.ID == "" {
		return nil, fmt.Errorf("%w: url or id required", ErrInvalidArticle)
	}
	if cmd.ID == "" {
		cmd.ID = GenerateID(cmd.URL)
	}
	if cmd.CollectedAt.IsZero() {
		cmd.CollectedAt = r.now()
	}

	q := `
		INSERT INTO articles(id, url, title, source, description, body, state, collected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
		RETURNING ` + projectionColumns()

	args := []any{
		cmd.ID,
		cmd.URL,
		cmd.Title,
		cmd.Source,
		cmd.Description,
		cmd.Body,
		string(state.Collected),
		cmd.CollectedAt.UTC(),
	}

	a, err := repository.QueryOne(ctx, r.db, q, args, scanArticle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDuplicate
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("article collected", "id", a.ID, "source", a.Source)
	return &a, nil
}

func (r *repo) Save(ctx context.Context, a *Article) error {
	if err := SaveWith(ctx, r.db, a); err != nil {
		return err
	}
	r.logger.Debug("article saved", "id", a.ID, "state", a.State, "version", a.Version)
	return nil
}

// SaveWith persists the lifecycle fields of a through e, which may be a
// transaction. The write only succeeds if the stored version still equals
// a.Version; otherwise repository.ErrConflict is returned.
func SaveWith(ctx context.Context, e repository.Executor, a *Article) error {
	if err := a.Validate(); err != nil {
		return err
	}

	reason, rejectedAt := rejectionArgs(a.Rejection)

	q := `
		UPDATE articles SET
			state = $2,
			raw_evidence = $3,
			impact_score = $4,
			zero_echo_score = $5,
			schema_version = $6,
			category = $7,
			edition_code = $8,
			rejection_reason = $9,
			rejected_at = $10,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $11`

	err := repository.ExecVersioned(ctx, e, q,
		a.ID,
		string(a.State),
		nullableJSON(a.RawEvidence),
		a.ImpactScore,
		a.ZeroEchoScore,
		string(a.SchemaVersion),
		a.Category,
		a.EditionCode,
		reason,
		rejectedAt,
		a.Version,
	)
	if err != nil {
		return fmt.Errorf("save article %s: %w", a.ID, repository.MapError(err, ErrNotFound, ErrDuplicate))
	}

	a.Version++
	return nil
}

func (r *repo) Score(ctx context.Context, id string) (*ScoreView, error) {
	a, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewScoreView(a, r.tolerance), nil
}

func (r *repo) ResetPublication(ctx context.Context, id string) (*Article, error) {
	a, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	edition := a.Edition()
	if err := a.ResetPublication(); err != nil {
		return nil, err
	}
	if err := r.Save(ctx, a); err != nil {
		return nil, err
	}

	r.logger.Info("publication reset", "id", id, "edition", edition)
	return a, nil
}

func projectionColumns() string {
	cols := projection.ColumnList()
	bare := make([]string, len(cols))
	for i, c := range cols {
		bare[i] = strings.TrimPrefix(c, projection.Alias()+".")
	}
	return strings.Join(bare, ", ")
}

// ScoreView is the operator audit of an article's stored scores against a
// fresh recomputation from its evidence.
type ScoreView struct {
	ArticleID string         `json:"article_id"`
	Title     string         `json:"title"`
	Stored    scoring.Result `json:"stored"`
	Audit     *scoring.Audit `json:"audit,omitempty"`
	Drift     *scoring.Drift `json:"drift,omitempty"`
}

// NewScoreView builds the audit view for a. Articles without evidence only
// report their stored scores.
func NewScoreView(a *Article, tolerance float64) *ScoreView {
	view := &ScoreView{
		ArticleID: a.ID,
		Title:     a.Title,
		Stored:    a.Result(),
	}
	if len(a.RawEvidence) == 0 {
		return view
	}

	audit := scoring.Breakdown(a.RawEvidence, tolerance)
	drift := audit.Compare(view.Stored)
	view.Audit = &audit
	view.Drift = &drift
	return view
}
