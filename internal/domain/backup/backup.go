// Package backup defines the backup bundle model and its integrity checksum.
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/campus-cloud/coursedex/internal/domain/entity"
)

// MaxAge is the age beyond which a backup is flagged as stale by validation.
const MaxAge = 30 * 24 * time.Hour

// ExpectedEntities is the set a complete platform backup is expected to
// include; validation recommends re-creating backups missing any of these.
var ExpectedEntities = []entity.Type{
	entity.TypeUser, entity.TypeCourse, entity.TypeDiscussion, entity.TypeActivity,
}

// Metadata describes a stored backup without its payload.
type Metadata struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	CreatedAt        time.Time           `json:"created_at"`
	Size             int                 `json:"size"`
	Checksum         string              `json:"checksum"`
	EntityCounts     map[entity.Type]int `json:"entity_counts"`
	IncludedEntities []entity.Type       `json:"included_entities"`
}

// Data is a full backup bundle: metadata plus one entity array per type.
// Invariant: Checksum matches the recomputed hash of the serialized entity
// payload, or restore/import is rejected.
type Data struct {
	Metadata Metadata                        `json:"metadata"`
	Entities map[entity.Type][]entity.Entity `json:"entities"`
}

// Payload returns the canonical serialized form of the entity payload.
// encoding/json sorts map keys, so the bytes are deterministic for a given
// entity ordering.
func Payload(entities map[entity.Type][]entity.Entity) ([]byte, error) {
	data, err := json.Marshal(entities)
	if err != nil {
		return nil, fmt.Errorf("serialize backup payload: %w", err)
	}
	return data, nil
}

// Checksum computes the SHA-256 hex digest of the canonical payload bytes.
func Checksum(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the checksum of d's payload against its metadata.
func (d *Data) Verify() error {
	payload, err := Payload(d.Entities)
	if err != nil {
		return err
	}
	if got := Checksum(payload); got != d.Metadata.Checksum {
		return fmt.Errorf("stored %s, computed %s", d.Metadata.Checksum, got)
	}
	return nil
}

// Has reports whether the bundle carries entities of the given type.
func (d *Data) Has(t entity.Type) bool {
	_, ok := d.Entities[t]
	return ok
}
