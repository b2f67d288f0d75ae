package editions

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/JaimeStill/zeroecho/pkg/query"
	"github.com/JaimeStill/zeroecho/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "editions", "e").
	Project("code", "Code").
	Project("name", "Name").
	Project("article_ids", "ArticleIDs").
	Project("status", "Status").
	Project("created_at", "CreatedAt").
	Project("released_at", "ReleasedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for edition queries.
type Filters struct {
	Status *Status  `json:"status,omitempty"`
	Name   *string  `json:"name,omitempty"`
	Codes  []string `json:"codes,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	if len(f.Codes) > 0 {
		b.WhereAny("Code", f.Codes)
	}
	var status *string
	if f.Status != nil {
		s := string(*f.Status)
		status = &s
	}
	return b.
		WhereEquals("Status", status).
		WhereContains("Name", f.Name)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		st := Status(strings.ToUpper(strings.TrimSpace(s)))
		f.Status = &st
	}

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}

	return f
}

func scanEdition(s repository.Scanner) (Edition, error) {
	var (
		e   Edition
		ids []byte
	)

	err := s.Scan(
		&e.Code,
		&e.Name,
		&ids,
		&e.Status,
		&e.CreatedAt,
		&e.ReleasedAt,
	)
	if err != nil {
		return e, err
	}

	e.ArticleIDs = []string{}
	if len(ids) > 0 {
		if err := json.Unmarshal(ids, &e.ArticleIDs); err != nil {
			return e, err
		}
	}

	return e, nil
}
