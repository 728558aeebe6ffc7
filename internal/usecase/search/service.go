// Package search implements the in-memory query engine: free-text matching,
// field filters, multi-key sort, pagination and facet counting.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/campus-cloud/coursedex/internal/domain/entity"
	"github.com/campus-cloud/coursedex/internal/domain/search/filter"
	"github.com/campus-cloud/coursedex/internal/domain/search/query"
	"github.com/campus-cloud/coursedex/internal/domain/search/result"
)

// defaultFacetFields maps entity types to the fields faceted in responses.
func defaultFacetFields() map[entity.Type][]string {
	return map[entity.Type][]string{
		entity.TypeUser:       {"role", "status"},
		entity.TypeCourse:     {"difficulty", "tags"},
		entity.TypeDiscussion: {"category", "tags"},
	}
}

// Service executes deterministic, synchronous queries over the index.
type Service struct {
	repo        Repository
	facetFields map[entity.Type][]string
}

// New creates a search service with the default facet configuration.
func New(repo Repository) *Service {
	return &Service{repo: repo, facetFields: defaultFacetFields()}
}

// WithFacetFields overrides the faceted fields for an entity type.
func (s *Service) WithFacetFields(t entity.Type, fields []string) *Service {
	s.facetFields[t] = fields
	return s
}

// Search runs the query against the type's collection. Unknown types yield
// an empty result; search itself never fails once the query validated.
func (s *Service) Search(ctx context.Context, t entity.Type, q query.Query) (result.Result, error) {
	entities, err := s.repo.List(ctx, t)
	if err != nil {
		return result.Empty(), fmt.Errorf("list %s collection: %w", t, err)
	}

	matched := matchAll(entities, q)
	sortEntities(matched, q.SortKeys())

	total := len(matched)
	res := result.Result{
		Total:   total,
		HasMore: q.Offset()+q.Limit() < total,
	}

	if fields := s.facetFields[t]; len(fields) > 0 {
		res.Facets = computeFacets(matched, fields)
	}

	start := q.Offset()
	if start > total {
		start = total
	}
	end := start + q.Limit()
	if end > total {
		end = total
	}
	res.Data = append([]entity.Entity{}, matched[start:end]...)

	return res, nil
}

// matchAll applies free-text terms and filters with AND semantics.
func matchAll(entities []entity.Entity, q query.Query) []entity.Entity {
	terms := q.Terms()
	filters := q.Filters()

	matched := make([]entity.Entity, 0, len(entities))
	for _, e := range entities {
		if !matchesTerms(e, terms) {
			continue
		}
		if !matchesFilters(e, filters) {
			continue
		}
		matched = append(matched, e)
	}
	return matched
}

// matchesTerms requires every term to be a substring of the entity's
// concatenated text fields. No stemming, no fuzzy matching.
func matchesTerms(e entity.Entity, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	text := e.SearchText()
	for _, term := range terms {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}

func matchesFilters(e entity.Entity, filters []filter.Filter) bool {
	for _, f := range filters {
		v, ok := e.Field(f.Field())
		if !f.Matches(v, ok) {
			return false
		}
	}
	return true
}

// sortEntities applies multi-key sorting: keys in priority order, the first
// non-equal key decides, desc negates. Missing values sort last regardless
// of direction.
func sortEntities(entities []entity.Entity, keys []query.Sort) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(entities, func(i, j int) bool {
		for _, key := range keys {
			va, okA := entities[i].Field(key.Field)
			vb, okB := entities[j].Field(key.Field)
			switch {
			case !okA && !okB:
				continue
			case !okA:
				return false
			case !okB:
				return true
			}
			cmp, ok := filter.Compare(va, vb)
			if !ok || cmp == 0 {
				continue
			}
			if key.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

// computeFacets counts distinct values per configured field over the
// filtered, pre-pagination set. Multi-valued fields (tag lists) count each
// element. Counts sort descending, ties break on value for determinism.
func computeFacets(entities []entity.Entity, fields []string) map[string][]result.FacetValue {
	facets := make(map[string][]result.FacetValue, len(fields))

	for _, field := range fields {
		counts := make(map[string]int)
		for _, e := range entities {
			v, ok := e.Field(field)
			if !ok || v == nil {
				continue
			}
			switch vals := v.(type) {
			case []string:
				for _, item := range vals {
					if item != "" {
						counts[item]++
					}
				}
			case []any:
				for _, item := range vals {
					if s := fmt.Sprintf("%v", item); s != "" {
						counts[s]++
					}
				}
			default:
				if s := fmt.Sprintf("%v", v); s != "" {
					counts[s]++
				}
			}
		}

		values := make([]result.FacetValue, 0, len(counts))
		for value, count := range counts {
			values = append(values, result.FacetValue{Value: value, Count: count})
		}
		sort.Slice(values, func(i, j int) bool {
			if values[i].Count != values[j].Count {
				return values[i].Count > values[j].Count
			}
			return values[i].Value < values[j].Value
		})
		facets[field] = values
	}

	return facets
}
