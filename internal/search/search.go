// Package search turns the raw listing filters (free text or comma-separated
// terms, per-field filters, enum filters, a time range) into a predicate that
// compiles to a parameterized SQL WHERE clause and can also be evaluated
// in memory. Count and fetch queries share the same predicate so pagination
// totals can never drift from the parsing logic.
package search

import (
	"strconv"
	"strings"
	"time"
)

// VisitFields are the text fields the free-text terms are matched against on
// the visits collection.
var VisitFields = []string{
	"visitor_name", "phone", "address", "purpose",
	"officer_name", "officer_designation", "officer_department",
}

// OfficerFields are the free-text match fields on the officers collection.
var OfficerFields = []string{
	"name", "phone", "designation", "department", "unit", "bp_no",
}

// FieldFilter narrows the result set by case-insensitive substring match on
// one designated field. Filters are ANDed with everything else.
type FieldFilter struct {
	Field string
	Value string
}

// ExactFilter adds an exact-match AND clause (purpose/status enums).
type ExactFilter struct {
	Field string
	Value string
}

// Predicate is the structured form of one listing query.
type Predicate struct {
	// Terms, in the order the user typed them. Each term matches a record if
	// it is a case-insensitive substring of any field in TermFields; the OR
	// spans both terms and fields.
	Terms      []string
	TermFields []string

	Filters []FieldFilter
	Exact   []ExactFilter

	TimeField string
	From      *time.Time
	To        *time.Time
}

// ParseTerms splits a raw search string on commas, trims each piece, and
// drops empty pieces. Input without a comma yields at most one term.
func ParseTerms(raw string) []string {
	var terms []string
	for _, piece := range strings.Split(raw, ",") {
		piece = strings.TrimSpace(piece)
		if piece != "" {
			terms = append(terms, piece)
		}
	}
	return terms
}

// Page is the skip/limit pair controlled independently of the predicate.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Pages returns the total page count for a collection of total records.
func (p Page) Pages(total int) int {
	if total == 0 {
		return 0
	}
	return (total + p.Size - 1) / p.Size
}

const (
	defaultPageSize = 10
	maxPageSize     = 200
)

// ParsePage parses raw page/limit query values and clamps them to sane
// bounds: page >= 1, 0 < limit <= 200.
func ParsePage(pageStr, limitStr string) Page {
	page := Page{Number: 1, Size: defaultPageSize}
	if v, err := strconv.Atoi(pageStr); err == nil && v >= 1 {
		page.Number = v
	}
	if v, err := strconv.Atoi(limitStr); err == nil && v > 0 {
		if v > maxPageSize {
			v = maxPageSize
		}
		page.Size = v
	}
	return page
}

// SQL compiles the predicate into a WHERE clause body (without the leading
// "WHERE") using pgx positional placeholders starting at argIndex, together
// with the matching argument slice. An empty predicate compiles to "".
func (p Predicate) SQL(argIndex int) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		idx := argIndex + len(args) - 1
		return "$" + strconv.Itoa(idx)
	}

	if len(p.Terms) > 0 && len(p.TermFields) > 0 {
		var ors []string
		for _, term := range p.Terms {
			ph := next(likePattern(term))
			for _, field := range p.TermFields {
				ors = append(ors, field+" ILIKE "+ph)
			}
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	for _, f := range p.Filters {
		conds = append(conds, f.Field+" ILIKE "+next(likePattern(f.Value)))
	}
	for _, e := range p.Exact {
		conds = append(conds, e.Field+" = "+next(e.Value))
	}

	if p.TimeField != "" {
		if p.From != nil {
			conds = append(conds, p.TimeField+" >= "+next(*p.From))
		}
		if p.To != nil {
			conds = append(conds, p.TimeField+" <= "+next(*p.To))
		}
	}

	return strings.Join(conds, " AND "), args
}

// Match evaluates the predicate in memory. get must return the record's
// value for a field name; at is the record's value for TimeField.
func (p Predicate) Match(get func(field string) string, at time.Time) bool {
	if len(p.Terms) > 0 && len(p.TermFields) > 0 {
		hit := false
	outer:
		for _, term := range p.Terms {
			for _, field := range p.TermFields {
				if containsFold(get(field), term) {
					hit = true
					break outer
				}
			}
		}
		if !hit {
			return false
		}
	}

	for _, f := range p.Filters {
		if !containsFold(get(f.Field), f.Value) {
			return false
		}
	}
	for _, e := range p.Exact {
		if get(e.Field) != e.Value {
			return false
		}
	}

	if p.From != nil && at.Before(*p.From) {
		return false
	}
	if p.To != nil && at.After(*p.To) {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// likePattern wraps a user term for substring ILIKE matching, escaping the
// LIKE metacharacters so user input cannot widen the match.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}
