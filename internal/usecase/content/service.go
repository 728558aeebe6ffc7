// Package content handles file uploads: blob persistence plus indexing of a
// searchable content entity.
package content

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campus-cloud/coursedex/internal/domain"
	"github.com/campus-cloud/coursedex/internal/domain/entity"
	contentrepo "github.com/campus-cloud/coursedex/internal/repository/content"
)

// Upload is a stored upload descriptor.
type Upload struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Service stores uploads and indexes them for search.
type Service struct {
	blobs    BlobStore
	index    Indexer
	maxBytes int64
	now      func() time.Time
}

// New creates a content service.
func New(blobs BlobStore, index Indexer, maxBytes int64) *Service {
	return &Service{blobs: blobs, index: index, maxBytes: maxBytes, now: time.Now}
}

// Upload persists the payload and indexes a content entity describing it.
func (s *Service) Upload(ctx context.Context, name, contentType string, data []byte) (Upload, error) {
	if name == "" {
		return Upload{}, fmt.Errorf("%w: file name is required", domain.ErrInvalidQuery)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return Upload{}, fmt.Errorf("%w: %d bytes (max %d)", domain.ErrContentTooLarge, len(data), s.maxBytes)
	}

	id := uuid.NewString()
	blob := contentrepo.Blob{Name: name, ContentType: contentType, Data: data}
	if err := s.blobs.Save(ctx, id, blob); err != nil {
		return Upload{}, err
	}

	now := s.now().UTC()
	e := entity.Entity{
		ID:    id,
		Type:  entity.TypeContent,
		Title: name,
		Metadata: map[string]any{
			"content_type": contentType,
			"size":         len(data),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.index.Upsert(ctx, e); err != nil {
		// Roll back the blob so search and storage stay consistent.
		_ = s.blobs.Delete(ctx, id)
		return Upload{}, fmt.Errorf("index content %s: %w", id, err)
	}

	return Upload{ID: id, URL: "/content/" + id}, nil
}

// Get retrieves a stored upload.
func (s *Service) Get(ctx context.Context, id string) (contentrepo.Blob, error) {
	return s.blobs.Load(ctx, id)
}

// Delete removes an upload and its index entry.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.blobs.Delete(ctx, id); err != nil {
		return err
	}
	return s.index.Remove(ctx, entity.TypeContent, id)
}
