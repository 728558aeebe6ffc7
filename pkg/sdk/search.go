package coursedex

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// SearchService queries entity collections.
type SearchService struct {
	client *Client
}

// Search returns the search service.
func (c *Client) Search() *SearchService {
	return &SearchService{client: c}
}

// Query runs a search against one entity collection.
func (s *SearchService) Query(ctx context.Context, entityType string, req SearchRequest) (SearchResult, error) {
	var out SearchResult
	err := s.client.doJSON(ctx, "search", http.MethodPost,
		"/search/"+url.PathEscape(entityType), req, &out)
	return out, err
}

// Suggestions returns autocomplete tokens for a partial query.
// limit <= 0 uses the server default.
func (s *SearchService) Suggestions(ctx context.Context, entityType, query string, limit int) ([]string, error) {
	q := url.Values{}
	q.Set("q", query)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var out struct {
		Suggestions []string `json:"suggestions"`
	}
	err := s.client.doJSON(ctx, "suggestions", http.MethodGet,
		"/search/"+url.PathEscape(entityType)+"/suggestions?"+q.Encode(), nil, &out)
	return out.Suggestions, err
}
