// Package backup persists backup bundles in the key-value store.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/campus-cloud/coursedex/internal/db"
	"github.com/campus-cloud/coursedex/internal/domain"
	dombackup "github.com/campus-cloud/coursedex/internal/domain/backup"
)

// store is the consumer interface for backup persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Store persists backup bundles as JSON blobs keyed by backup id.
type Store struct {
	store     store
	keyPrefix string
	retention time.Duration
}

// New creates a backup store. retention of zero keeps bundles forever.
func New(s store, keyPrefix string, retention time.Duration) *Store {
	return &Store{store: s, keyPrefix: keyPrefix, retention: retention}
}

// Save stores the bundle under its id.
func (s *Store) Save(ctx context.Context, data *dombackup.Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal backup %s: %w", data.Metadata.ID, err)
	}

	key := s.key(data.Metadata.ID)
	if s.retention > 0 {
		err = s.store.SetWithTTL(ctx, key, raw, s.retention)
	} else {
		err = s.store.Set(ctx, key, raw)
	}
	if err != nil {
		return fmt.Errorf("store backup %s: %w", data.Metadata.ID, err)
	}
	return nil
}

// Load retrieves a bundle by id.
func (s *Store) Load(ctx context.Context, id string) (*dombackup.Data, error) {
	raw, err := s.store.Get(ctx, s.key(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("backup %s: %w", id, domain.ErrBackupNotFound)
		}
		return nil, fmt.Errorf("load backup %s: %w", id, err)
	}

	var data dombackup.Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse backup %s: %w", id, err)
	}
	return &data, nil
}

// Delete removes a bundle by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	exists, err := s.store.Exists(ctx, s.key(id))
	if err != nil {
		return fmt.Errorf("check backup %s: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("backup %s: %w", id, domain.ErrBackupNotFound)
	}
	if err := s.store.Del(ctx, s.key(id)); err != nil {
		return fmt.Errorf("delete backup %s: %w", id, err)
	}
	return nil
}

// List returns metadata for all stored bundles, newest first.
func (s *Store) List(ctx context.Context) ([]dombackup.Metadata, error) {
	keys, err := s.store.Scan(ctx, s.key("*"))
	if err != nil {
		return nil, fmt.Errorf("scan backups: %w", err)
	}

	metas := make([]dombackup.Metadata, 0, len(keys))
	for _, key := range keys {
		id := strings.TrimPrefix(key, s.key(""))
		data, err := s.Load(ctx, id)
		if err != nil {
			// Bundles may expire between scan and load.
			if errors.Is(err, domain.ErrBackupNotFound) {
				continue
			}
			return nil, err
		}
		metas = append(metas, data.Metadata)
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].CreatedAt.After(metas[j].CreatedAt)
	})
	return metas, nil
}

func (s *Store) key(id string) string {
	return s.keyPrefix + "backup:" + id
}
