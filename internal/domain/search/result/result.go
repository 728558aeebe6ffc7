// Package result defines the derived search result shape.
package result

import "github.com/campus-cloud/coursedex/internal/domain/entity"

// FacetValue is one distinct value of a facet field with its count over the
// filtered, pre-pagination result set.
type FacetValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Result is a single search response page. Total counts matches before
// pagination; HasMore reports whether offset+limit < Total.
type Result struct {
	Data    []entity.Entity         `json:"data"`
	Total   int                     `json:"total"`
	HasMore bool                    `json:"has_more"`
	Facets  map[string][]FacetValue `json:"facets,omitempty"`
}

// Empty returns a result for an unknown or empty collection.
func Empty() Result {
	return Result{Data: []entity.Entity{}}
}
