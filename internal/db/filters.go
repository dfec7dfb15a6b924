package db

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"brandwatch/internal/models"
)

// Page selects a window of a list query. A zero Limit returns every row.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) clause() string {
	if p.Limit <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", p.Limit, max(p.Offset, 0))
}

// RankingFilter narrows ranking queries. Zero fields are ignored.
type RankingFilter struct {
	BrandID *uuid.UUID
	Keyword string // case-insensitive substring
	Dates   models.DateRange
}

// Where renders the filter as a SQL WHERE clause over alias r.
func (f RankingFilter) Where() (string, []any) {
	var w where
	if f.BrandID != nil {
		w.add("r.brand_id = %s", *f.BrandID)
	}
	if f.Keyword != "" {
		w.add("r.keyword ILIKE '%%' || %s || '%%'", f.Keyword)
	}
	w.dates("r.date", f.Dates)
	return w.build()
}

// CitationFilter narrows citation queries. Zero fields are ignored.
type CitationFilter struct {
	BrandID   *uuid.UUID
	AIModel   string
	Mentioned *bool
	Dates     models.DateRange
}

// Where renders the filter as a SQL WHERE clause over alias c.
func (f CitationFilter) Where() (string, []any) {
	var w where
	if f.BrandID != nil {
		w.add("c.brand_id = %s", *f.BrandID)
	}
	if f.AIModel != "" {
		w.add("c.ai_model = %s", f.AIModel)
	}
	if f.Mentioned != nil {
		w.add("c.mentioned = %s", *f.Mentioned)
	}
	w.dates("c.date", f.Dates)
	return w.build()
}

// ReviewFilter narrows review queries. Zero fields are ignored.
type ReviewFilter struct {
	BrandID  *uuid.UUID
	Platform string
	Dates    models.DateRange
}

// Where renders the filter as a SQL WHERE clause over alias v.
func (f ReviewFilter) Where() (string, []any) {
	var w where
	if f.BrandID != nil {
		w.add("v.brand_id = %s", *f.BrandID)
	}
	if f.Platform != "" {
		w.add("v.platform = %s", f.Platform)
	}
	w.dates("v.date", f.Dates)
	return w.build()
}

// where accumulates AND-ed predicates with positional arguments.
type where struct {
	clauses []string
	args    []any
}

// add appends a predicate; format holds one %s for the placeholder.
func (w *where) add(format string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(format, fmt.Sprintf("$%d", len(w.args))))
}

func (w *where) dates(column string, r models.DateRange) {
	if r.Start != "" {
		w.add(column+" >= %s", r.Start)
	}
	if r.End != "" {
		w.add(column+" <= %s", r.End)
	}
}

func (w *where) build() (string, []any) {
	if len(w.clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(w.clauses, " AND "), w.args
}
