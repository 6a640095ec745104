package repository

import (
	"fmt"
	"strings"
)

// Page carries pagination and ordering for list queries. Sort is a column key
// validated against each repository's whitelist.
type Page struct {
	Limit  int
	Offset int
	Sort   string
	Desc   bool
}

const defaultLimit = 20

func (p Page) limit() int {
	if p.Limit <= 0 {
		return defaultLimit
	}
	return p.Limit
}

func (p Page) offset() int {
	if p.Offset < 0 {
		return 0
	}
	return p.Offset
}

// orderBy resolves p.Sort through allowed, falling back to created_at.
func (p Page) orderBy(allowed map[string]string) string {
	column, ok := allowed[p.Sort]
	if !ok {
		column = "created_at"
	}
	dir := "ASC"
	if p.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s, id %s", column, dir, dir)
}

// whereBuilder accumulates AND-ed predicates with positional arguments.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereBuilder) add(clause string) {
	w.clauses = append(w.clauses, clause)
}

func (w *whereBuilder) sql() string {
	if len(w.clauses) == 0 {
		return "1=1"
	}
	return strings.Join(w.clauses, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern lowercases term and wraps it for a LIKE substring match. Wildcards
// in term match literally under Postgres' default backslash escape.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}
