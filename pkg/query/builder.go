package query

import (
	"fmt"
	"reflect"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// SortField represents a single column in an ORDER BY clause.
// Field is the logical field name (mapped via ProjectionMap).
// Descending controls sort direction (false = ASC, true = DESC).
type SortField struct {
	Field      string
	Descending bool
}

// Builder accumulates filter and sort criteria over a projection and renders
// PostgreSQL statements with numbered placeholders.
type Builder struct {
	projection        *ProjectionMap
	conditions        []sq.Sqlizer
	orderByFields     []SortField
	defaultSortFields []SortField
}

// NewBuilder creates a Builder for the given projection with optional default sort fields.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{
		projection:        projection,
		conditions:        make([]sq.Sqlizer, 0),
		defaultSortFields: defaultSort,
	}
}

// ParseSortFields parses a comma-separated sort string into a SortField slice.
// Fields prefixed with "-" are descending. Example: "title,-collectedAt".
// Returns nil for empty input.
func ParseSortFields(s string) []SortField {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	fields := make([]SortField, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if after, ok := strings.CutPrefix(part, "-"); ok {
			fields = append(fields, SortField{Field: after, Descending: true})
		} else {
			fields = append(fields, SortField{Field: part})
		}
	}

	return fields
}

// Build returns a SELECT query with the current conditions and ordering.
func (b *Builder) Build() (string, []any, error) {
	return b.ordered(b.selectAll()).ToSql()
}

// BuildCount returns a COUNT(*) query with the current conditions.
func (b *Builder) BuildCount() (string, []any, error) {
	return b.where(psql.Select("COUNT(*)").From(b.projection.Table())).ToSql()
}

// BuildPage returns a paginated SELECT query with ordering, limit, and offset.
func (b *Builder) BuildPage(page, pageSize int) (string, []any, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	return b.ordered(b.selectAll()).
		Limit(uint64(pageSize)).
		Offset(uint64(offset)).
		ToSql()
}

// BuildSingle returns a SELECT query for a single record by ID.
func (b *Builder) BuildSingle(idField string, id any) (string, []any, error) {
	return psql.
		Select(b.projection.ColumnList()...).
		From(b.projection.Table()).
		Where(sq.Eq{b.projection.Column(idField): id}).
		ToSql()
}

// OrderByFields sets the sort order, overriding default sort fields.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.orderByFields = fields
	return b
}

// WhereContains adds a case-insensitive ILIKE condition. No-op for nil or empty values.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	b.conditions = append(b.conditions, sq.ILike{
		b.projection.Column(field): "%" + *value + "%",
	})
	return b
}

// WhereEquals adds an equality condition. No-op for nil values.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	b.conditions = append(b.conditions, sq.Eq{
		b.projection.Column(field): deref(value),
	})
	return b
}

// WhereIn adds an IN condition for multiple values. No-op for empty slices.
func (b *Builder) WhereIn(field string, values []any) *Builder {
	if len(values) == 0 {
		return b
	}
	b.conditions = append(b.conditions, sq.Eq{
		b.projection.Column(field): values,
	})
	return b
}

// WhereAny adds a "column = ANY($n)" condition bound to a single text array
// parameter. No-op for empty slices.
func (b *Builder) WhereAny(field string, values []string) *Builder {
	if len(values) == 0 {
		return b
	}
	b.conditions = append(b.conditions, sq.Expr(
		fmt.Sprintf("%s = ANY(?)", b.projection.Column(field)),
		pq.StringArray(values),
	))
	return b
}

// WhereNullable adds an equality or IS NULL condition depending on whether value is nil.
func (b *Builder) WhereNullable(field string, value any) *Builder {
	col := b.projection.Column(field)
	if isNil(value) {
		b.conditions = append(b.conditions, sq.Eq{col: nil})
	} else {
		b.conditions = append(b.conditions, sq.Eq{col: deref(value)})
	}
	return b
}

// WhereSearch adds an OR condition across multiple fields with ILIKE. No-op for nil or empty search.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}

	pattern := "%" + *search + "%"
	or := make(sq.Or, len(fields))
	for i, field := range fields {
		or[i] = sq.ILike{b.projection.Column(field): pattern}
	}

	b.conditions = append(b.conditions, or)
	return b
}

func (b *Builder) selectAll() sq.SelectBuilder {
	return b.where(psql.
		Select(b.projection.ColumnList()...).
		From(b.projection.Table()))
}

func (b *Builder) where(sb sq.SelectBuilder) sq.SelectBuilder {
	for _, cond := range b.conditions {
		sb = sb.Where(cond)
	}
	return sb
}

func (b *Builder) ordered(sb sq.SelectBuilder) sq.SelectBuilder {
	fields := b.orderByFields
	if len(fields) == 0 {
		fields = b.defaultSortFields
	}

	for _, f := range fields {
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		sb = sb.OrderBy(fmt.Sprintf("%s %s", b.projection.Column(f.Field), dir))
	}

	return sb
}

func isNil(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}

	return false
}

func deref(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Pointer {
		return v.Elem().Interface()
	}
	return value
}
