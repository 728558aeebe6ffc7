package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/campus-cloud/coursedex/internal/domain/entity"
)

func TestUpsert_InsertAndReplace(t *testing.T) {
	ctx := context.Background()
	repo := New()

	if err := repo.Upsert(ctx, entity.Entity{ID: "c1", Type: entity.TypeCourse, Title: "v1"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Upsert(ctx, entity.Entity{ID: "c1", Type: entity.TypeCourse, Title: "v2"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	list, err := repo.List(ctx, entity.TypeCourse)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 entity after replace, got %d", len(list))
	}
	if list[0].Title != "v2" {
		t.Errorf("expected replaced title v2, got %q", list[0].Title)
	}
}

func TestUpsert_IsolatedPerType(t *testing.T) {
	ctx := context.Background()
	repo := New()

	// Same id in two collections must not collide.
	_ = repo.Upsert(ctx, entity.Entity{ID: "x", Type: entity.TypeUser})
	_ = repo.Upsert(ctx, entity.Entity{ID: "x", Type: entity.TypeCourse})

	users, _ := repo.List(ctx, entity.TypeUser)
	courses, _ := repo.List(ctx, entity.TypeCourse)
	if len(users) != 1 || len(courses) != 1 {
		t.Errorf("expected 1 entity per collection, got %d users, %d courses", len(users), len(courses))
	}
}

func TestRemove_MissingIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := New()

	if err := repo.Remove(ctx, entity.TypeUser, "ghost"); err != nil {
		t.Fatalf("removing missing id should be a no-op, got %v", err)
	}
}

func TestRemove_Existing(t *testing.T) {
	ctx := context.Background()
	repo := New()

	_ = repo.Upsert(ctx, entity.Entity{ID: "u1", Type: entity.TypeUser})
	_ = repo.Upsert(ctx, entity.Entity{ID: "u2", Type: entity.TypeUser})

	if err := repo.Remove(ctx, entity.TypeUser, "u1"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	list, _ := repo.List(ctx, entity.TypeUser)
	if len(list) != 1 || list[0].ID != "u2" {
		t.Errorf("expected only u2 to remain, got %v", list)
	}
}

func TestList_UnknownTypeEmpty(t *testing.T) {
	repo := New()

	list, err := repo.List(context.Background(), entity.Type("mystery"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty snapshot, got %d entities", len(list))
	}
}

func TestList_SnapshotUnaffectedByLaterWrites(t *testing.T) {
	ctx := context.Background()
	repo := New()

	_ = repo.Upsert(ctx, entity.Entity{ID: "u1", Type: entity.TypeUser})
	snapshot, _ := repo.List(ctx, entity.TypeUser)

	_ = repo.Upsert(ctx, entity.Entity{ID: "u2", Type: entity.TypeUser})

	if len(snapshot) != 1 {
		t.Errorf("snapshot grew after a later write: %d entities", len(snapshot))
	}
}

func TestUpsert_ClonesInput(t *testing.T) {
	ctx := context.Background()
	repo := New()

	e := entity.Entity{ID: "u1", Type: entity.TypeUser, Tags: []string{"staff"}}
	_ = repo.Upsert(ctx, e)

	// Mutating the caller's slice must not leak into the store.
	e.Tags[0] = "changed"

	list, _ := repo.List(ctx, entity.TypeUser)
	if list[0].Tags[0] != "staff" {
		t.Error("stored entity shares tags slice with caller")
	}
}

func TestExistsAndCount(t *testing.T) {
	ctx := context.Background()
	repo := New()

	_ = repo.Upsert(ctx, entity.Entity{ID: "u1", Type: entity.TypeUser})

	if ok, _ := repo.Exists(ctx, entity.TypeUser, "u1"); !ok {
		t.Error("expected u1 to exist")
	}
	if ok, _ := repo.Exists(ctx, entity.TypeUser, "u2"); ok {
		t.Error("expected u2 to be missing")
	}
	if n, _ := repo.Count(ctx, entity.TypeUser); n != 1 {
		t.Errorf("expected count 1, got %d", n)
	}
}

func TestLoadSeed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.json")
	seed := `[
		{"id": "u1", "type": "user", "title": "Alice"},
		{"id": "", "type": "user", "title": "no id"},
		{"id": "x1", "type": "enrollment", "title": "unknown type"},
		{"id": "c1", "type": "course", "title": "Golang Basics"}
	]`
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	repo := New()
	loaded, err := repo.LoadSeed(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if loaded != 2 {
		t.Errorf("expected 2 loaded entities, got %d", loaded)
	}

	users, _ := repo.List(context.Background(), entity.TypeUser)
	courses, _ := repo.List(context.Background(), entity.TypeCourse)
	if len(users) != 1 || len(courses) != 1 {
		t.Errorf("unexpected collections: %d users, %d courses", len(users), len(courses))
	}
}

func TestLoadSeed_MissingFile(t *testing.T) {
	repo := New()
	if _, err := repo.LoadSeed(context.Background(), "/nonexistent/seed.json"); err == nil {
		t.Fatal("expected error for missing seed file")
	}
}
