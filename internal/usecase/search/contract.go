package search

import (
	"context"

	"github.com/campus-cloud/coursedex/internal/domain/entity"
)

// Repository defines the storage contract for search reads.
type Repository interface {
	List(ctx context.Context, t entity.Type) ([]entity.Entity, error)
}
