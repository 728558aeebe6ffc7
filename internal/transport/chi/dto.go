package chi

import (
	"fmt"

	dombackup "github.com/campus-cloud/coursedex/internal/domain/backup"
	"github.com/campus-cloud/coursedex/internal/domain/entity"
	"github.com/campus-cloud/coursedex/internal/domain/search/filter"
	"github.com/campus-cloud/coursedex/internal/domain/search/query"
	"github.com/campus-cloud/coursedex/internal/domain/search/result"
	"github.com/campus-cloud/coursedex/internal/usecase/assistant"
	backupuc "github.com/campus-cloud/coursedex/internal/usecase/backup"
	healthuc "github.com/campus-cloud/coursedex/internal/usecase/health"
)

// Error codes returned in ErrorResponse.Code.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeBackupNotFound   = "backup_not_found"
	codeChecksumMismatch = "checksum_mismatch"
	codeInvalidBackup    = "invalid_backup"
	codeContentTooLarge  = "content_too_large"
	codeAssistantError   = "assistant_provider_error"
	codeInternalError    = "internal_error"
	codeUnauthorized     = "unauthorized"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FilterRequest is a single field filter clause.
type FilterRequest struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// SortRequest is a single sort key.
type SortRequest struct {
	Field     string `json:"field"`
	Direction string `json:"direction,omitempty"` // asc (default) or desc
}

// SearchRequest is the POST /search/{type} body.
type SearchRequest struct {
	Query   string          `json:"query,omitempty"`
	Filters []FilterRequest `json:"filters,omitempty"`
	Sort    []SortRequest   `json:"sort,omitempty"`
	Limit   int             `json:"limit,omitempty"`
	Offset  int             `json:"offset,omitempty"`
}

// toQuery converts the request body into a validated domain query.
func (r SearchRequest) toQuery() (query.Query, error) {
	filters := make([]filter.Filter, 0, len(r.Filters))
	for _, f := range r.Filters {
		op, err := filter.ParseOperator(f.Operator)
		if err != nil {
			return query.Query{}, err
		}
		built, err := filter.New(f.Field, op, f.Value)
		if err != nil {
			return query.Query{}, err
		}
		filters = append(filters, built)
	}

	sortKeys := make([]query.Sort, 0, len(r.Sort))
	for _, s := range r.Sort {
		switch s.Direction {
		case "", "asc", "desc":
			// ok
		default:
			return query.Query{}, fmt.Errorf("sort direction must be \"asc\" or \"desc\", got %q", s.Direction)
		}
		sortKeys = append(sortKeys, query.Sort{Field: s.Field, Desc: s.Direction == "desc"})
	}

	return query.New(r.Query, filters, sortKeys, r.Limit, r.Offset)
}

// SearchResponse is the search result page.
type SearchResponse struct {
	Data    []entity.Entity                `json:"data"`
	Total   int                            `json:"total"`
	HasMore bool                           `json:"has_more"`
	Facets  map[string][]result.FacetValue `json:"facets,omitempty"`
}

// SuggestionsResponse is the suggestions list.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// UpsertEntityRequest is the PUT /index/{type}/{id} body. Type and ID come
// from the path.
type UpsertEntityRequest struct {
	Title       string         `json:"title,omitempty"`
	Content     string         `json:"content,omitempty"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// CreateBackupRequest is the POST /backups body.
type CreateBackupRequest struct {
	Name             string   `json:"name,omitempty"`
	IncludedEntities []string `json:"included_entities,omitempty"`
}

// RestoreBackupRequest is the POST /backups/{id}/restore body.
type RestoreBackupRequest struct {
	Entities          []string `json:"entities,omitempty"`
	OverwriteExisting bool     `json:"overwrite_existing,omitempty"`
	DryRun            bool     `json:"dry_run,omitempty"`
}

// RestoreBackupResponse reports a restore run.
type RestoreBackupResponse struct {
	Success        bool                `json:"success"`
	RestoredCounts map[entity.Type]int `json:"restored_counts"`
	Conflicts      int                 `json:"conflicts"`
	Errors         []string            `json:"errors,omitempty"`
	Summary        string              `json:"summary"`
}

func restoreToResponse(r backupuc.RestoreResult) RestoreBackupResponse {
	return RestoreBackupResponse{
		Success:        r.Success,
		RestoredCounts: r.RestoredCounts,
		Conflicts:      r.Conflicts,
		Errors:         r.Errors,
		Summary:        r.Summary,
	}
}

// ValidateBackupResponse reports backup validation.
type ValidateBackupResponse struct {
	Valid           bool     `json:"valid"`
	Issues          []string `json:"issues,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// BackupListResponse lists stored backups.
type BackupListResponse struct {
	Items []dombackup.Metadata `json:"items"`
}

// ChatRequest is the POST /assistant/chat body.
type ChatRequest struct {
	Messages []assistant.Message `json:"messages"`
}

// UploadResponse is the POST /content reply.
type UploadResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// HealthResponse is the GET /health reply.
type HealthResponse struct {
	Status string                          `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

func parseEntityTypes(names []string) ([]entity.Type, error) {
	types := make([]entity.Type, 0, len(names))
	for _, name := range names {
		t, err := entity.Parse(name)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}
