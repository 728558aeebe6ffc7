package backup

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/campus-cloud/coursedex/internal/domain"
	dombackup "github.com/campus-cloud/coursedex/internal/domain/backup"
	"github.com/campus-cloud/coursedex/internal/domain/entity"
)

// --- Mocks ---

type mockStore struct {
	saved   map[string]*dombackup.Data
	saveErr error
	loadErr error
}

func newMockStore() *mockStore {
	return &mockStore{saved: make(map[string]*dombackup.Data)}
}

func (m *mockStore) Save(_ context.Context, data *dombackup.Data) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved[data.Metadata.ID] = data
	return nil
}

func (m *mockStore) Load(_ context.Context, id string) (*dombackup.Data, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	data, ok := m.saved[id]
	if !ok {
		return nil, domain.ErrBackupNotFound
	}
	return data, nil
}

func (m *mockStore) Delete(_ context.Context, id string) error {
	if _, ok := m.saved[id]; !ok {
		return domain.ErrBackupNotFound
	}
	delete(m.saved, id)
	return nil
}

func (m *mockStore) List(_ context.Context) ([]dombackup.Metadata, error) {
	metas := make([]dombackup.Metadata, 0, len(m.saved))
	for _, d := range m.saved {
		metas = append(metas, d.Metadata)
	}
	return metas, nil
}

type mockCollections struct {
	entities  map[entity.Type][]entity.Entity
	upserted  []entity.Entity
	upsertErr error
	existsErr error
}

func (m *mockCollections) List(_ context.Context, t entity.Type) ([]entity.Entity, error) {
	return m.entities[t], nil
}

func (m *mockCollections) Exists(_ context.Context, t entity.Type, id string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	for _, e := range m.entities[t] {
		if e.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCollections) Upsert(_ context.Context, e entity.Entity) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, e)
	return nil
}

func fixtureCollections() *mockCollections {
	return &mockCollections{entities: map[entity.Type][]entity.Entity{
		entity.TypeUser: {
			{ID: "u1", Type: entity.TypeUser, Title: "Alice"},
			{ID: "u2", Type: entity.TypeUser, Title: "Bob"},
		},
		entity.TypeCourse: {
			{ID: "c1", Type: entity.TypeCourse, Title: "Golang Basics"},
		},
	}}
}

func newTestService(store Store, coll *mockCollections) *Service {
	return New(store, coll, coll).WithClock(func() time.Time {
		return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	})
}

// --- Tests ---

func TestCreate_AllTypes(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, fixtureCollections())

	meta, err := svc.Create(context.Background(), CreateOptions{Name: "nightly"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if meta.Name != "nightly" {
		t.Errorf("expected name nightly, got %q", meta.Name)
	}
	if meta.ID == "" || meta.Checksum == "" || meta.Size == 0 {
		t.Errorf("incomplete metadata: %+v", meta)
	}
	if meta.EntityCounts[entity.TypeUser] != 2 || meta.EntityCounts[entity.TypeCourse] != 1 {
		t.Errorf("unexpected counts: %v", meta.EntityCounts)
	}
	if len(meta.IncludedEntities) != len(entity.All()) {
		t.Errorf("empty include should cover all types, got %v", meta.IncludedEntities)
	}

	saved := store.saved[meta.ID]
	if saved == nil {
		t.Fatal("bundle not saved")
	}
	if err := saved.Verify(); err != nil {
		t.Errorf("saved bundle fails verification: %v", err)
	}
}

func TestCreate_SelectedTypes(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, fixtureCollections())

	meta, err := svc.Create(context.Background(), CreateOptions{
		Include: []entity.Type{entity.TypeUser},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meta.IncludedEntities) != 1 || meta.IncludedEntities[0] != entity.TypeUser {
		t.Errorf("unexpected included types: %v", meta.IncludedEntities)
	}
	if _, ok := meta.EntityCounts[entity.TypeCourse]; ok {
		t.Error("course entities should not be counted")
	}
}

func TestCreate_DefaultName(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, fixtureCollections())

	meta, err := svc.Create(context.Background(), CreateOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(meta.Name, "backup-2026-09-01") {
		t.Errorf("expected timestamped default name, got %q", meta.Name)
	}
}

func TestRestore_ConflictsSkippedWithoutOverwrite(t *testing.T) {
	store := newMockStore()
	coll := fixtureCollections()
	svc := newTestService(store, coll)

	meta, err := svc.Create(context.Background(), CreateOptions{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Everything still exists in the live collections, so every item conflicts.
	res, err := svc.Restore(context.Background(), RestoreOptions{BackupID: meta.ID})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	if !res.Success {
		t.Error("per-item conflicts must not fail the run")
	}
	if res.Conflicts != 3 {
		t.Errorf("expected 3 conflicts, got %d", res.Conflicts)
	}
	if len(coll.upserted) != 0 {
		t.Errorf("expected no upserts, got %d", len(coll.upserted))
	}
	if len(res.Errors) != 3 {
		t.Errorf("expected 3 conflict entries, got %v", res.Errors)
	}
}

func TestRestore_OverwriteRestoresEverything(t *testing.T) {
	store := newMockStore()
	coll := fixtureCollections()
	svc := newTestService(store, coll)

	meta, _ := svc.Create(context.Background(), CreateOptions{})

	res, err := svc.Restore(context.Background(), RestoreOptions{
		BackupID:          meta.ID,
		OverwriteExisting: true,
	})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	if !res.Success || res.Conflicts != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
	if len(coll.upserted) != 3 {
		t.Errorf("expected 3 upserts, got %d", len(coll.upserted))
	}
	if res.RestoredCounts[entity.TypeUser] != 2 {
		t.Errorf("expected 2 restored users, got %d", res.RestoredCounts[entity.TypeUser])
	}
}

func TestRestore_DryRunWritesNothing(t *testing.T) {
	store := newMockStore()
	coll := fixtureCollections()
	svc := newTestService(store, coll)

	meta, _ := svc.Create(context.Background(), CreateOptions{})

	res, err := svc.Restore(context.Background(), RestoreOptions{BackupID: meta.ID, DryRun: true})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	if len(coll.upserted) != 0 {
		t.Error("dry run must not write")
	}
	if res.RestoredCounts[entity.TypeUser] != 2 || res.RestoredCounts[entity.TypeCourse] != 1 {
		t.Errorf("dry run counts wrong: %v", res.RestoredCounts)
	}
	if !strings.HasPrefix(res.Summary, "Dry run:") {
		t.Errorf("unexpected summary: %q", res.Summary)
	}
}

func TestRestore_SelectedTypesOnly(t *testing.T) {
	store := newMockStore()
	coll := fixtureCollections()
	svc := newTestService(store, coll)

	meta, _ := svc.Create(context.Background(), CreateOptions{})

	res, err := svc.Restore(context.Background(), RestoreOptions{
		BackupID:          meta.ID,
		Entities:          []entity.Type{entity.TypeCourse},
		OverwriteExisting: true,
	})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if len(res.RestoredCounts) != 1 || res.RestoredCounts[entity.TypeCourse] != 1 {
		t.Errorf("expected only courses restored, got %v", res.RestoredCounts)
	}
}

func TestRestore_UpsertFailureFailsType(t *testing.T) {
	store := newMockStore()
	coll := fixtureCollections()
	svc := newTestService(store, coll)

	meta, _ := svc.Create(context.Background(), CreateOptions{})

	coll.upsertErr = errors.New("store down")
	res, err := svc.Restore(context.Background(), RestoreOptions{
		BackupID:          meta.ID,
		OverwriteExisting: true,
	})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if res.Success {
		t.Error("a failed type must mark the run unsuccessful")
	}
	if len(res.Errors) == 0 {
		t.Error("expected error entries for failed types")
	}
}

func TestRestore_UnknownBackup(t *testing.T) {
	svc := newTestService(newMockStore(), fixtureCollections())

	_, err := svc.Restore(context.Background(), RestoreOptions{BackupID: "ghost"})
	if !errors.Is(err, domain.ErrBackupNotFound) {
		t.Errorf("expected ErrBackupNotFound, got %v", err)
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, fixtureCollections())
	ctx := context.Background()

	meta, _ := svc.Create(ctx, CreateOptions{Name: "export-me"})

	raw, err := svc.Export(ctx, meta.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	imported, err := svc.Import(ctx, raw)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if imported.ID == meta.ID {
		t.Error("import must assign a fresh id")
	}
	if imported.Checksum != meta.Checksum {
		t.Errorf("checksum changed on import: %s vs %s", imported.Checksum, meta.Checksum)
	}
	if imported.EntityCounts[entity.TypeUser] != 2 {
		t.Errorf("import counts wrong: %v", imported.EntityCounts)
	}
}

func TestImport_TamperedChecksum(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, fixtureCollections())
	ctx := context.Background()

	meta, _ := svc.Create(ctx, CreateOptions{})
	raw, _ := svc.Export(ctx, meta.ID)

	// Flip one entity title inside the exported JSON.
	tampered := strings.Replace(string(raw), "Alice", "Mallory", 1)

	_, err := svc.Import(ctx, []byte(tampered))
	if !errors.Is(err, domain.ErrChecksumMismatch) {
		t.Errorf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestImport_Garbage(t *testing.T) {
	svc := newTestService(newMockStore(), fixtureCollections())

	_, err := svc.Import(context.Background(), []byte("not json"))
	if !errors.Is(err, domain.ErrInvalidBackup) {
		t.Errorf("expected ErrInvalidBackup, got %v", err)
	}
}

func TestImport_MissingStructure(t *testing.T) {
	svc := newTestService(newMockStore(), fixtureCollections())

	raw, _ := json.Marshal(map[string]any{"metadata": map[string]any{"id": "x"}})
	_, err := svc.Import(context.Background(), raw)
	if !errors.Is(err, domain.ErrInvalidBackup) {
		t.Errorf("expected ErrInvalidBackup, got %v", err)
	}
}

func TestValidate_CleanBackup(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, fixtureCollections())
	ctx := context.Background()

	meta, _ := svc.Create(ctx, CreateOptions{})

	report, err := svc.Validate(ctx, meta.ID)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !report.Valid {
		t.Errorf("expected valid report, got issues %v", report.Issues)
	}
}

func TestValidate_StaleBackup(t *testing.T) {
	store := newMockStore()
	coll := fixtureCollections()
	svc := newTestService(store, coll)
	ctx := context.Background()

	meta, _ := svc.Create(ctx, CreateOptions{})

	// Move the clock 31 days forward.
	svc.WithClock(func() time.Time {
		return time.Date(2026, 10, 2, 12, 0, 0, 0, time.UTC)
	})

	report, err := svc.Validate(ctx, meta.ID)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if report.Valid {
		t.Error("expected stale backup to be invalid")
	}
	if len(report.Issues) == 0 {
		t.Error("expected an age issue")
	}
}

func TestValidate_MissingExpectedTypesRecommendsOnly(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, fixtureCollections())
	ctx := context.Background()

	meta, _ := svc.Create(ctx, CreateOptions{Include: []entity.Type{entity.TypeUser}})

	report, err := svc.Validate(ctx, meta.ID)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !report.Valid {
		t.Errorf("missing types are advisory, got issues %v", report.Issues)
	}
	if len(report.Recommendations) == 0 {
		t.Error("expected recommendations for missing expected types")
	}
}

func TestValidate_CorruptedBundle(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, fixtureCollections())
	ctx := context.Background()

	meta, _ := svc.Create(ctx, CreateOptions{})
	store.saved[meta.ID].Entities[entity.TypeUser][0].Title = "Mallory"

	report, err := svc.Validate(ctx, meta.ID)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if report.Valid {
		t.Error("expected corrupted bundle to be invalid")
	}
}

func TestGet_Metadata(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, fixtureCollections())
	ctx := context.Background()

	meta, _ := svc.Create(ctx, CreateOptions{Name: "nightly"})

	got, err := svc.Get(ctx, meta.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "nightly" || got.Checksum != meta.Checksum {
		t.Errorf("unexpected metadata: %+v", got)
	}

	if _, err := svc.Get(ctx, "ghost"); !errors.Is(err, domain.ErrBackupNotFound) {
		t.Errorf("expected ErrBackupNotFound, got %v", err)
	}
}

func TestDelete_PassesThrough(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, fixtureCollections())
	ctx := context.Background()

	meta, _ := svc.Create(ctx, CreateOptions{})
	if err := svc.Delete(ctx, meta.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, meta.ID); !errors.Is(err, domain.ErrBackupNotFound) {
		t.Errorf("expected ErrBackupNotFound, got %v", err)
	}
}
