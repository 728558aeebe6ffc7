// Package backup implements the backup lifecycle: create, restore, export,
// import, validate and delete, with SHA-256 integrity verification.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campus-cloud/coursedex/internal/domain"
	dombackup "github.com/campus-cloud/coursedex/internal/domain/backup"
	"github.com/campus-cloud/coursedex/internal/domain/entity"
)

// Service coordinates the backup lifecycle over a persistent store and the
// live entity collections.
type Service struct {
	store  Store
	source EntitySource
	sink   EntitySink
	now    func() time.Time
	newID  func() string
}

// New creates a backup service.
func New(store Store, source EntitySource, sink EntitySink) *Service {
	return &Service{
		store:  store,
		source: source,
		sink:   sink,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// WithClock overrides the time source (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateOptions selects what a backup includes. An empty Include list means
// every known entity type.
type CreateOptions struct {
	Name    string
	Include []entity.Type
}

// Create snapshots the selected collections into a stored bundle and returns
// its metadata. The payload itself is not returned.
func (s *Service) Create(ctx context.Context, opts CreateOptions) (dombackup.Metadata, error) {
	include := opts.Include
	if len(include) == 0 {
		include = entity.All()
	}

	entities := make(map[entity.Type][]entity.Entity, len(include))
	counts := make(map[entity.Type]int, len(include))
	for _, t := range include {
		list, err := s.source.List(ctx, t)
		if err != nil {
			return dombackup.Metadata{}, fmt.Errorf("collect %s entities: %w", t, err)
		}
		entities[t] = list
		counts[t] = len(list)
	}

	payload, err := dombackup.Payload(entities)
	if err != nil {
		return dombackup.Metadata{}, err
	}

	name := opts.Name
	if name == "" {
		name = "backup-" + s.now().UTC().Format("2006-01-02-150405")
	}

	data := &dombackup.Data{
		Metadata: dombackup.Metadata{
			ID:               s.newID(),
			Name:             name,
			CreatedAt:        s.now().UTC(),
			Size:             len(payload),
			Checksum:         dombackup.Checksum(payload),
			EntityCounts:     counts,
			IncludedEntities: include,
		},
		Entities: entities,
	}

	if err := s.store.Save(ctx, data); err != nil {
		return dombackup.Metadata{}, err
	}
	return data.Metadata, nil
}

// RestoreOptions selects what to restore. An empty Entities list restores
// every type present in the bundle.
type RestoreOptions struct {
	BackupID          string
	Entities          []entity.Type
	OverwriteExisting bool
	DryRun            bool
}

// RestoreResult reports a restore run. Success is false only when a whole
// entity type failed to process; per-item conflicts are reported in Errors
// and Conflicts without failing the run.
type RestoreResult struct {
	Success        bool
	RestoredCounts map[entity.Type]int
	Conflicts      int
	Errors         []string
	Summary        string
}

// Restore writes entities from a stored bundle back into the live
// collections. There is no rollback: failures of one type do not undo
// earlier types.
func (s *Service) Restore(ctx context.Context, opts RestoreOptions) (RestoreResult, error) {
	data, err := s.store.Load(ctx, opts.BackupID)
	if err != nil {
		return RestoreResult{}, err
	}

	selected := opts.Entities
	if len(selected) == 0 {
		selected = data.Metadata.IncludedEntities
	}

	res := RestoreResult{
		Success:        true,
		RestoredCounts: make(map[entity.Type]int),
	}

	total := 0
	for _, t := range selected {
		if !data.Has(t) {
			continue
		}
		items := data.Entities[t]

		if opts.DryRun {
			res.RestoredCounts[t] = len(items)
			total += len(items)
			continue
		}

		restored, err := s.restoreType(ctx, t, items, opts.OverwriteExisting, &res)
		if err != nil {
			res.Success = false
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", t, err))
			continue
		}
		res.RestoredCounts[t] = restored
		total += restored
	}

	if opts.DryRun {
		res.Summary = fmt.Sprintf(
			"Dry run: would restore %d entities across %d types", total, len(res.RestoredCounts))
	} else {
		res.Summary = fmt.Sprintf(
			"Restored %d entities across %d types (%d conflicts skipped)",
			total, len(res.RestoredCounts), res.Conflicts)
	}
	return res, nil
}

// restoreType restores one entity type item by item. Conflicts (existing id
// without overwrite) are skipped and recorded; a failing existence check
// aborts the type.
func (s *Service) restoreType(
	ctx context.Context, t entity.Type, items []entity.Entity,
	overwrite bool, res *RestoreResult,
) (int, error) {
	restored := 0
	for _, e := range items {
		if !overwrite {
			exists, err := s.source.Exists(ctx, t, e.ID)
			if err != nil {
				return restored, fmt.Errorf("check %s: %w", e.ID, err)
			}
			if exists {
				res.Conflicts++
				res.Errors = append(res.Errors,
					fmt.Sprintf("conflict: %s %s already exists", t, e.ID))
				continue
			}
		}
		if err := s.sink.Upsert(ctx, e); err != nil {
			return restored, fmt.Errorf("restore %s: %w", e.ID, err)
		}
		restored++
	}
	return restored, nil
}

// Export returns the full bundle as JSON for download.
func (s *Service) Export(ctx context.Context, id string) ([]byte, error) {
	data, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("serialize backup %s: %w", id, err)
	}
	return raw, nil
}

// Import verifies and stores an exported bundle under a fresh id. Checksum
// mismatch and structural errors are rejected.
func (s *Service) Import(ctx context.Context, raw []byte) (dombackup.Metadata, error) {
	var data dombackup.Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return dombackup.Metadata{}, fmt.Errorf("%w: %v", domain.ErrInvalidBackup, err)
	}
	if data.Metadata.Checksum == "" || data.Entities == nil {
		return dombackup.Metadata{}, fmt.Errorf("%w: missing checksum or entities", domain.ErrInvalidBackup)
	}
	if err := data.Verify(); err != nil {
		return dombackup.Metadata{}, fmt.Errorf("%w: %v", domain.ErrChecksumMismatch, err)
	}

	// Recount from the payload rather than trusting imported metadata.
	counts := make(map[entity.Type]int, len(data.Entities))
	included := make([]entity.Type, 0, len(data.Entities))
	for t, items := range data.Entities {
		counts[t] = len(items)
		included = append(included, t)
	}
	data.Metadata.ID = s.newID()
	data.Metadata.EntityCounts = counts
	data.Metadata.IncludedEntities = included

	if err := s.store.Save(ctx, &data); err != nil {
		return dombackup.Metadata{}, err
	}
	return data.Metadata, nil
}

// ValidationReport is the outcome of Validate. Valid is false when any issue
// is present; recommendations alone do not invalidate a backup.
type ValidationReport struct {
	Valid           bool
	Issues          []string
	Recommendations []string
}

// Validate checks a stored bundle: age, checksum and entity coverage.
func (s *Service) Validate(ctx context.Context, id string) (ValidationReport, error) {
	data, err := s.store.Load(ctx, id)
	if err != nil {
		return ValidationReport{}, err
	}

	report := ValidationReport{}

	if age := s.now().UTC().Sub(data.Metadata.CreatedAt); age > dombackup.MaxAge {
		report.Issues = append(report.Issues,
			fmt.Sprintf("backup is %d days old", int(age.Hours()/24)))
		report.Recommendations = append(report.Recommendations,
			"create a fresh backup; this one exceeds the 30 day retention window")
	}

	if err := data.Verify(); err != nil {
		report.Issues = append(report.Issues, "checksum mismatch: "+err.Error())
	}

	for t, want := range data.Metadata.EntityCounts {
		if got := len(data.Entities[t]); got != want {
			report.Issues = append(report.Issues,
				fmt.Sprintf("%s count mismatch: metadata says %d, payload has %d", t, want, got))
		}
	}

	for _, t := range dombackup.ExpectedEntities {
		if !data.Has(t) {
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("backup does not include %s entities", t))
		}
	}

	report.Valid = len(report.Issues) == 0
	return report, nil
}

// Get returns metadata for one stored bundle.
func (s *Service) Get(ctx context.Context, id string) (dombackup.Metadata, error) {
	data, err := s.store.Load(ctx, id)
	if err != nil {
		return dombackup.Metadata{}, err
	}
	return data.Metadata, nil
}

// Delete removes a stored bundle.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// List returns metadata for all stored bundles, newest first.
func (s *Service) List(ctx context.Context) ([]dombackup.Metadata, error) {
	return s.store.List(ctx)
}
