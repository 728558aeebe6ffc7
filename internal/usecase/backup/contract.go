package backup

import (
	"context"

	dombackup "github.com/campus-cloud/coursedex/internal/domain/backup"
	"github.com/campus-cloud/coursedex/internal/domain/entity"
)

// Store defines the persistence contract for backup bundles.
type Store interface {
	Save(ctx context.Context, data *dombackup.Data) error
	Load(ctx context.Context, id string) (*dombackup.Data, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]dombackup.Metadata, error)
}

// EntitySource reads live entities for inclusion in a backup.
type EntitySource interface {
	List(ctx context.Context, t entity.Type) ([]entity.Entity, error)
	Exists(ctx context.Context, t entity.Type, id string) (bool, error)
}

// EntitySink writes entities back during restore.
type EntitySink interface {
	Upsert(ctx context.Context, e entity.Entity) error
}
