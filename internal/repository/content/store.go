// Package content persists uploaded file blobs in the key-value store.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/campus-cloud/coursedex/internal/db"
	"github.com/campus-cloud/coursedex/internal/domain"
)

// store is the consumer interface for blob persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

// Blob is a stored upload with its media type.
type Blob struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// Store persists upload blobs keyed by content id.
type Store struct {
	store     store
	keyPrefix string
}

// New creates a content store.
func New(s store, keyPrefix string) *Store {
	return &Store{store: s, keyPrefix: keyPrefix}
}

// Save stores a blob under the content id.
func (s *Store) Save(ctx context.Context, id string, blob Blob) error {
	raw, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("marshal content %s: %w", id, err)
	}
	if err := s.store.Set(ctx, s.key(id), raw); err != nil {
		return fmt.Errorf("store content %s: %w", id, err)
	}
	return nil
}

// Load retrieves a blob by content id.
func (s *Store) Load(ctx context.Context, id string) (Blob, error) {
	raw, err := s.store.Get(ctx, s.key(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return Blob{}, fmt.Errorf("content %s: %w", id, domain.ErrNotFound)
		}
		return Blob{}, fmt.Errorf("load content %s: %w", id, err)
	}

	var blob Blob
	if err := json.Unmarshal(raw, &blob); err != nil {
		return Blob{}, fmt.Errorf("parse content %s: %w", id, err)
	}
	return blob, nil
}

// Delete removes a blob by content id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.store.Del(ctx, s.key(id)); err != nil {
		return fmt.Errorf("delete content %s: %w", id, err)
	}
	return nil
}

func (s *Store) key(id string) string {
	return s.keyPrefix + "content:" + id
}
