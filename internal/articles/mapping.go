package articles

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/JaimeStill/zeroecho/internal/scoring"
	"github.com/JaimeStill/zeroecho/internal/state"
	"github.com/JaimeStill/zeroecho/pkg/query"
	"github.com/JaimeStill/zeroecho/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "articles", "a").
	Project("id", "ID").
	Project("url", "URL").
	Project("title", "Title").
	Project("source", "Source").
	Project("description", "Description").
	Project("body", "Body").
	Project("state", "State").
	Project("raw_evidence", "RawEvidence").
	Project("impact_score", "ImpactScore").
	Project("zero_echo_score", "ZeroEchoScore").
	Project("schema_version", "SchemaVersion").
	Project("category", "Category").
	Project("edition_code", "EditionCode").
	Project("rejection_reason", "RejectionReason").
	Project("rejected_at", "RejectedAt").
	Project("version", "Version").
	Project("collected_at", "CollectedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CollectedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for article queries.
// Nil fields are ignored. States matches any of the listed states.
type Filters struct {
	States      []state.State `json:"states,omitempty"`
	Source      *string       `json:"source,omitempty"`
	Category    *string       `json:"category,omitempty"`
	EditionCode *string       `json:"edition_code,omitempty"`
	Title       *string       `json:"title,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, s := range f.States {
			states[i] = string(s)
		}
		b.WhereAny("State", states)
	}

	return b.
		WhereEquals("Source", f.Source).
		WhereEquals("Category", f.Category).
		WhereEquals("EditionCode", f.EditionCode).
		WhereContains("Title", f.Title)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// state accepts a comma-separated list.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("state"); s != "" {
		for part := range strings.SplitSeq(s, ",") {
			if st, err := state.ParseState(part); err == nil {
				f.States = append(f.States, st)
			}
		}
	}

	if s := values.Get("source"); s != "" {
		f.Source = &s
	}

	if c := values.Get("category"); c != "" {
		f.Category = &c
	}

	if e := values.Get("edition_code"); e != "" {
		f.EditionCode = &e
	}

	if t := values.Get("title"); t != "" {
		f.Title = &t
	}

	return f
}

func scanArticle(s repository.Scanner) (Article, error) {
	var (
		a        Article
		raw      []byte
		version  string
		reason   *string
		rejected *time.Time
	)

	err := s.Scan(
		&a.ID,
		&a.URL,
		&a.Title,
		&a.Source,
		&a.Description,
		&a.Body,
		&a.State,
		&raw,
		&a.ImpactScore,
		&a.ZeroEchoScore,
		&version,
		&a.Category,
		&a.EditionCode,
		&reason,
		&rejected,
		&a.Version,
		&a.CollectedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return a, err
	}

	if len(raw) > 0 {
		a.RawEvidence = json.RawMessage(raw)
	}
	if version != "" {
		a.SchemaVersion = scoring.ParseVersion(version)
	}
	if reason != nil && rejected != nil {
		a.Rejection = &Rejection{Reason: state.Reason(*reason), At: *rejected}
	}

	return a, nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func rejectionArgs(r *Rejection) (any, any) {
	if r == nil {
		return nil, nil
	}
	return string(r.Reason), r.At
}
