package prompts

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/zeroecho/pkg/query"
	"github.com/JaimeStill/zeroecho/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "prompts", "p").
	Project("id", "ID").
	Project("name", "Name").
	Project("stage", "Stage").
	Project("instructions", "Instructions").
	Project("description", "Description").
	Project("active", "Active")

// Overrides list grouped by stage, active first.
var defaultSort = []query.SortField{
	{Field: "Stage"},
	{Field: "Active", Descending: true},
	{Field: "Name"},
}

// Filters narrows override listings. Nil fields are ignored. Name and Text
// match case-insensitive substrings of the name and the instruction text.
type Filters struct {
	Stage  *Stage  `json:"stage,omitempty"`
	Name   *string `json:"name,omitempty"`
	Text   *string `json:"text,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Stage", f.Stage).
		WhereContains("Name", f.Name).
		WhereContains("Instructions", f.Text).
		WhereEquals("Active", f.Active)
}

// FiltersFromQuery reads stage, name, text and active from URL query
// parameters. Unknown stages and malformed booleans are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("stage"); s != "" {
		if stage, err := ParseStage(s); err == nil {
			f.Stage = &stage
		}
	}

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}

	if t := values.Get("text"); t != "" {
		f.Text = &t
	}

	if a := values.Get("active"); a != "" {
		if v, err := strconv.ParseBool(a); err == nil {
			f.Active = &v
		}
	}

	return f
}

func scanPrompt(s repository.Scanner) (Prompt, error) {
	var p Prompt
	err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Stage,
		&p.Instructions,
		&p.Description,
		&p.Active,
	)
	return p, err
}
