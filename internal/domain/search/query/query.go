// Package query defines the validated search request value object.
package query

import (
	"fmt"
	"strings"

	"github.com/campus-cloud/coursedex/internal/domain/search/filter"
)

// Pagination bounds.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Sort is a single sort key. Keys apply in order: the first non-equal key
// decides, Desc negates the comparison.
type Sort struct {
	Field string
	Desc  bool
}

// Query is a validated search request (immutable value object).
type Query struct {
	text    string
	filters []filter.Filter
	sort    []Sort
	limit   int
	offset  int
}

// New validates and creates a Query. A zero limit takes DefaultLimit.
func New(text string, filters []filter.Filter, sort []Sort, limit, offset int) (Query, error) {
	if len(filters) > filter.MaxFilters {
		return Query{}, fmt.Errorf("too many filters (max %d)", filter.MaxFilters)
	}
	if limit < 0 {
		return Query{}, fmt.Errorf("limit must not be negative, got %d", limit)
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		return Query{}, fmt.Errorf("offset must not be negative, got %d", offset)
	}
	for _, s := range sort {
		if s.Field == "" {
			return Query{}, fmt.Errorf("sort field is required")
		}
	}
	return Query{text: text, filters: filters, sort: sort, limit: limit, offset: offset}, nil
}

// Text returns the raw free-text query.
func (q Query) Text() string { return q.text }

// Terms returns the lowercased whitespace-split search terms.
// An entity matches only if every term is a substring of its search text.
func (q Query) Terms() []string {
	return strings.Fields(strings.ToLower(q.text))
}

// Filters returns the field filters (AND semantics).
func (q Query) Filters() []filter.Filter { return q.filters }

// SortKeys returns the sort keys in priority order.
func (q Query) SortKeys() []Sort { return q.sort }

// Limit returns the page size.
func (q Query) Limit() int { return q.limit }

// Offset returns the page offset.
func (q Query) Offset() int { return q.offset }
