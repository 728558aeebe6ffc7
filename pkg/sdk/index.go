package coursedex

import (
	"context"
	"net/http"
	"net/url"
)

// IndexService maintains entity collections.
type IndexService struct {
	client *Client
}

// Index returns the index maintenance service.
func (c *Client) Index() *IndexService {
	return &IndexService{client: c}
}

// Upsert inserts or replaces an entity and returns the stored record.
func (s *IndexService) Upsert(ctx context.Context, entityType, id string, e UpsertEntity) (Entity, error) {
	var out Entity
	err := s.client.doJSON(ctx, "index_upsert", http.MethodPut,
		"/index/"+url.PathEscape(entityType)+"/"+url.PathEscape(id), e, &out)
	return out, err
}

// Delete removes an entity from its collection. Deleting a missing id is
// not an error.
func (s *IndexService) Delete(ctx context.Context, entityType, id string) error {
	return s.client.doJSON(ctx, "index_delete", http.MethodDelete,
		"/index/"+url.PathEscape(entityType)+"/"+url.PathEscape(id), nil, nil)
}
