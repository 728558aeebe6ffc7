package coursedex

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
)

// BackupService manages backup bundles.
type BackupService struct {
	client *Client
}

// Backups returns the backup management service.
func (c *Client) Backups() *BackupService {
	return &BackupService{client: c}
}

// Create snapshots the selected collections into a new backup.
func (s *BackupService) Create(ctx context.Context, req CreateBackupRequest) (BackupMetadata, error) {
	var out BackupMetadata
	err := s.client.doJSON(ctx, "backup_create", http.MethodPost, "/backups", req, &out)
	return out, err
}

// List returns metadata for all stored backups, newest first.
func (s *BackupService) List(ctx context.Context) ([]BackupMetadata, error) {
	var out struct {
		Items []BackupMetadata `json:"items"`
	}
	err := s.client.doJSON(ctx, "backup_list", http.MethodGet, "/backups", nil, &out)
	return out.Items, err
}

// Get returns metadata for one stored backup.
func (s *BackupService) Get(ctx context.Context, id string) (BackupMetadata, error) {
	var out BackupMetadata
	err := s.client.doJSON(ctx, "backup_get", http.MethodGet,
		"/backups/"+url.PathEscape(id), nil, &out)
	return out, err
}

// Restore writes entities from a backup back into the live collections.
func (s *BackupService) Restore(ctx context.Context, id string, req RestoreRequest) (RestoreResult, error) {
	var out RestoreResult
	err := s.client.doJSON(ctx, "backup_restore", http.MethodPost,
		"/backups/"+url.PathEscape(id)+"/restore", req, &out)
	return out, err
}

// Export downloads the full backup bundle as JSON.
func (s *BackupService) Export(ctx context.Context, id string) ([]byte, error) {
	resp, err := s.client.do(ctx, "backup_export", http.MethodGet,
		"/backups/"+url.PathEscape(id)+"/export", "", nil)
	if err != nil {
		return nil, err
	}
	return resp.body, nil
}

// Import uploads an exported bundle and stores it under a fresh id.
// Corrupt bundles are rejected by the server.
func (s *BackupService) Import(ctx context.Context, raw []byte) (BackupMetadata, error) {
	resp, err := s.client.do(ctx, "backup_import", http.MethodPost,
		"/backups/import", "application/json",
		func() io.Reader { return bytes.NewReader(raw) })
	if err != nil {
		return BackupMetadata{}, err
	}

	var out BackupMetadata
	if err := decodeJSON(resp.body, &out); err != nil {
		return BackupMetadata{}, err
	}
	return out, nil
}

// Validate checks a stored backup for age, integrity and coverage issues.
func (s *BackupService) Validate(ctx context.Context, id string) (ValidationReport, error) {
	var out ValidationReport
	err := s.client.doJSON(ctx, "backup_validate", http.MethodGet,
		"/backups/"+url.PathEscape(id)+"/validate", nil, &out)
	return out, err
}

// Delete removes a stored backup.
func (s *BackupService) Delete(ctx context.Context, id string) error {
	return s.client.doJSON(ctx, "backup_delete", http.MethodDelete,
		"/backups/"+url.PathEscape(id), nil, nil)
}
