package backup

import (
	"testing"
	"time"

	"github.com/campus-cloud/coursedex/internal/domain/entity"
)

func sampleEntities() map[entity.Type][]entity.Entity {
	return map[entity.Type][]entity.Entity{
		entity.TypeUser: {
			{ID: "u1", Type: entity.TypeUser, Title: "Alice"},
			{ID: "u2", Type: entity.TypeUser, Title: "Bob"},
		},
		entity.TypeCourse: {
			{ID: "c1", Type: entity.TypeCourse, Title: "Golang Basics"},
		},
	}
}

func TestChecksum_Deterministic(t *testing.T) {
	a, err := Payload(sampleEntities())
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}
	b, err := Payload(sampleEntities())
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}

	if Checksum(a) != Checksum(b) {
		t.Error("checksum differs for identical payloads")
	}
	if len(Checksum(a)) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(Checksum(a)))
	}
}

func TestVerify_Valid(t *testing.T) {
	entities := sampleEntities()
	payload, err := Payload(entities)
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}

	d := &Data{
		Metadata: Metadata{ID: "b1", Checksum: Checksum(payload), CreatedAt: time.Now()},
		Entities: entities,
	}
	if err := d.Verify(); err != nil {
		t.Errorf("unexpected verify error: %v", err)
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	entities := sampleEntities()
	payload, err := Payload(entities)
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}

	d := &Data{
		Metadata: Metadata{ID: "b1", Checksum: Checksum(payload)},
		Entities: entities,
	}

	// Corrupt one entity after the checksum was taken.
	d.Entities[entity.TypeUser][0].Title = "Mallory"

	if err := d.Verify(); err == nil {
		t.Fatal("expected checksum mismatch for tampered payload")
	}
}

func TestHas(t *testing.T) {
	d := &Data{Entities: sampleEntities()}

	if !d.Has(entity.TypeUser) {
		t.Error("expected bundle to have user entities")
	}
	if d.Has(entity.TypeActivity) {
		t.Error("expected bundle to lack activity entities")
	}
}
