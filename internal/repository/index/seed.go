package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/campus-cloud/coursedex/internal/domain/entity"
)

// LoadSeed populates the repository from a JSON fixture file containing an
// array of entities. A fresh process starts empty otherwise.
func (r *Repository) LoadSeed(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return 0, fmt.Errorf("read seed file %s: %w", path, err)
	}

	var entities []entity.Entity
	if err := json.Unmarshal(data, &entities); err != nil {
		return 0, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	loaded := 0
	for _, e := range entities {
		if e.ID == "" {
			continue
		}
		if _, err := entity.Parse(string(e.Type)); err != nil {
			continue
		}
		if err := r.Upsert(ctx, e); err != nil {
			return loaded, fmt.Errorf("seed entity %s/%s: %w", e.Type, e.ID, err)
		}
		loaded++
	}
	return loaded, nil
}
