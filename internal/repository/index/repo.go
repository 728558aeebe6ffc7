// Package index holds the in-memory per-type entity collections.
//
// Collections live for the process lifetime only; durability comes from the
// backup service. A RWMutex guards the maps because the HTTP server serves
// reads and writes concurrently.
package index

import (
	"context"
	"sync"

	"github.com/campus-cloud/coursedex/internal/domain/entity"
)

// Repository is the in-memory entity store.
type Repository struct {
	mu          sync.RWMutex
	collections map[entity.Type][]entity.Entity
}

// New creates an empty repository.
func New() *Repository {
	return &Repository{collections: make(map[entity.Type][]entity.Entity)}
}

// Upsert inserts or replaces an entity by id within its type's collection.
func (r *Repository) Upsert(_ context.Context, e entity.Entity) error {
	stored := e.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()

	coll := r.collections[e.Type]
	for i := range coll {
		if coll[i].ID == e.ID {
			coll[i] = stored
			return nil
		}
	}
	r.collections[e.Type] = append(coll, stored)
	return nil
}

// Remove deletes an entity by id. Removing a missing id is a no-op.
func (r *Repository) Remove(_ context.Context, t entity.Type, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	coll := r.collections[t]
	for i := range coll {
		if coll[i].ID == id {
			r.collections[t] = append(coll[:i:i], coll[i+1:]...)
			return nil
		}
	}
	return nil
}

// List returns a snapshot of the type's collection in insertion order.
// Entities in the snapshot are shared and must be treated as read-only.
// An unknown type yields an empty snapshot, never an error.
func (r *Repository) List(_ context.Context, t entity.Type) ([]entity.Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	coll := r.collections[t]
	snapshot := make([]entity.Entity, len(coll))
	copy(snapshot, coll)
	return snapshot, nil
}

// Exists reports whether an id is present in the type's collection.
func (r *Repository) Exists(_ context.Context, t entity.Type, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.collections[t] {
		if e.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// Count returns the number of entities of the given type.
func (r *Repository) Count(_ context.Context, t entity.Type) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.collections[t]), nil
}
