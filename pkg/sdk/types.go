package coursedex

import "time"

// Filter is a single field filter clause.
type Filter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// Sort is a single sort key. Direction is "asc" (default) or "desc".
type Sort struct {
	Field     string `json:"field"`
	Direction string `json:"direction,omitempty"`
}

// SearchRequest is a search query over one entity collection.
type SearchRequest struct {
	Query   string   `json:"query,omitempty"`
	Filters []Filter `json:"filters,omitempty"`
	Sort    []Sort   `json:"sort,omitempty"`
	Limit   int      `json:"limit,omitempty"`
	Offset  int      `json:"offset,omitempty"`
}

// Entity is a searchable record.
type Entity struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Title       string         `json:"title,omitempty"`
	Content     string         `json:"content,omitempty"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// FacetValue is one value bucket of a facet.
type FacetValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// SearchResult is a search result page.
type SearchResult struct {
	Data    []Entity                `json:"data"`
	Total   int                     `json:"total"`
	HasMore bool                    `json:"has_more"`
	Facets  map[string][]FacetValue `json:"facets,omitempty"`
}

// UpsertEntity is the indexable part of an entity; type and id travel in
// the URL.
type UpsertEntity struct {
	Title       string         `json:"title,omitempty"`
	Content     string         `json:"content,omitempty"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// BackupMetadata describes a stored backup bundle.
type BackupMetadata struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	CreatedAt        time.Time      `json:"created_at"`
	Size             int            `json:"size"`
	Checksum         string         `json:"checksum"`
	EntityCounts     map[string]int `json:"entity_counts"`
	IncludedEntities []string       `json:"included_entities"`
}

// CreateBackupRequest selects what a new backup includes. An empty
// IncludedEntities list means every entity type.
type CreateBackupRequest struct {
	Name             string   `json:"name,omitempty"`
	IncludedEntities []string `json:"included_entities,omitempty"`
}

// RestoreRequest selects what to restore from a backup.
type RestoreRequest struct {
	Entities          []string `json:"entities,omitempty"`
	OverwriteExisting bool     `json:"overwrite_existing,omitempty"`
	DryRun            bool     `json:"dry_run,omitempty"`
}

// RestoreResult reports a restore run.
type RestoreResult struct {
	Success        bool           `json:"success"`
	RestoredCounts map[string]int `json:"restored_counts"`
	Conflicts      int            `json:"conflicts"`
	Errors         []string       `json:"errors,omitempty"`
	Summary        string         `json:"summary"`
}

// ValidationReport is the outcome of a backup validation.
type ValidationReport struct {
	Valid           bool     `json:"valid"`
	Issues          []string `json:"issues,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// ChatMessage is a single chat turn. Role is "system", "user" or
// "assistant".
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatReply is the assistant's answer with token usage.
type ChatReply struct {
	Content      string `json:"content"`
	PromptTokens int    `json:"prompt_tokens"`
	TotalTokens  int    `json:"total_tokens"`
}

// UploadResult describes a stored upload.
type UploadResult struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Download is a retrieved upload.
type Download struct {
	Name        string
	ContentType string
	Data        []byte
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
