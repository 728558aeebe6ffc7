package content

import (
	"context"

	"github.com/campus-cloud/coursedex/internal/domain/entity"
	contentrepo "github.com/campus-cloud/coursedex/internal/repository/content"
)

// BlobStore persists upload payloads.
type BlobStore interface {
	Save(ctx context.Context, id string, blob contentrepo.Blob) error
	Load(ctx context.Context, id string) (contentrepo.Blob, error)
	Delete(ctx context.Context, id string) error
}

// Indexer registers uploads as searchable content entities.
type Indexer interface {
	Upsert(ctx context.Context, e entity.Entity) error
	Remove(ctx context.Context, t entity.Type, id string) error
}
