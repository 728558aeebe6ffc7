// Package chi implements the HTTP transport: request decoding, domain error
// mapping and response encoding over a chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/campus-cloud/coursedex/internal/domain"
	"github.com/campus-cloud/coursedex/internal/domain/entity"
	"github.com/campus-cloud/coursedex/internal/metrics"
	assistantuc "github.com/campus-cloud/coursedex/internal/usecase/assistant"
	backupuc "github.com/campus-cloud/coursedex/internal/usecase/backup"
	contentuc "github.com/campus-cloud/coursedex/internal/usecase/content"
	healthuc "github.com/campus-cloud/coursedex/internal/usecase/health"
	searchuc "github.com/campus-cloud/coursedex/internal/usecase/search"
)

// maxImportBytes caps uploaded backup bundles.
const maxImportBytes = 64 << 20

// IndexWriter mutates the entity collections directly.
type IndexWriter interface {
	Upsert(ctx context.Context, e entity.Entity) error
	Remove(ctx context.Context, t entity.Type, id string) error
	Exists(ctx context.Context, t entity.Type, id string) (bool, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the use case services behind the HTTP API.
type Server struct {
	search          *searchuc.Service
	index           IndexWriter
	backups         *backupuc.Service
	assistant       *assistantuc.Service
	content         *contentuc.Service
	health          *healthuc.Service
	logger          *zap.Logger
	suggestionLimit int
	errorHandlers   []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	index IndexWriter,
	backups *backupuc.Service,
	assistant *assistantuc.Service,
	content *contentuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:    search,
		index:     index,
		backups:   backups,
		assistant: assistant,
		content:   content,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrBackupNotFound, http.StatusNotFound, codeBackupNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrChecksumMismatch, http.StatusBadRequest, codeChecksumMismatch),
		sentinelHandler(domain.ErrInvalidBackup, http.StatusBadRequest, codeInvalidBackup),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrContentTooLarge, http.StatusRequestEntityTooLarge, codeContentTooLarge),
		sentinelHandler(domain.ErrAssistantProviderError, http.StatusBadGateway, codeAssistantError),
	}
	return s
}

// WithSuggestionLimit overrides the default suggestion count.
func (s *Server) WithSuggestionLimit(limit int) *Server {
	s.suggestionLimit = limit
	return s
}

// Routes mounts all API handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/search/{type}", s.SearchEntities)
	r.Get("/search/{type}/suggestions", s.GetSuggestions)
	r.Put("/index/{type}/{id}", s.UpsertEntity)
	r.Delete("/index/{type}/{id}", s.DeleteEntity)
	r.Post("/backups", s.CreateBackup)
	r.Get("/backups", s.ListBackups)
	r.Get("/backups/{id}", s.GetBackup)
	r.Post("/backups/import", s.ImportBackup)
	r.Get("/backups/{id}/export", s.ExportBackup)
	r.Post("/backups/{id}/restore", s.RestoreBackup)
	r.Get("/backups/{id}/validate", s.ValidateBackup)
	r.Delete("/backups/{id}", s.DeleteBackup)
	r.Post("/assistant/chat", s.AssistantChat)
	r.Post("/content", s.UploadContent)
	r.Get("/content/{id}", s.GetContent)
	r.Delete("/content/{id}", s.DeleteContent)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// SearchEntities handles POST /search/{type}.
func (s *Server) SearchEntities(w http.ResponseWriter, r *http.Request) {
	t := entity.Type(chi.URLParam(r, "type"))

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q, err := req.toQuery()
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	res, err := s.search.Search(r.Context(), t, q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	metrics.SearchRequestsTotal.WithLabelValues(string(t)).Inc()
	metrics.SearchResultsReturned.WithLabelValues(string(t)).Observe(float64(res.Total))

	writeJSON(w, http.StatusOK, SearchResponse{
		Data:    res.Data,
		Total:   res.Total,
		HasMore: res.HasMore,
		Facets:  res.Facets,
	})
}

// GetSuggestions handles GET /search/{type}/suggestions.
func (s *Server) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	t := entity.Type(chi.URLParam(r, "type"))
	q := r.URL.Query().Get("q")

	limit := s.suggestionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be a positive integer")
			return
		}
		limit = n
	}

	suggestions, err := s.search.Suggestions(r.Context(), t, q, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: suggestions})
}

// UpsertEntity handles PUT /index/{type}/{id}.
func (s *Server) UpsertEntity(w http.ResponseWriter, r *http.Request) {
	t, err := entity.Parse(chi.URLParam(r, "type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	id := chi.URLParam(r, "id")

	var req UpsertEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	existed, err := s.index.Exists(r.Context(), t, id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	now := time.Now().UTC()
	e := entity.Entity{
		ID:          id,
		Type:        t,
		Title:       req.Title,
		Content:     req.Content,
		Description: req.Description,
		Tags:        req.Tags,
		Metadata:    req.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.index.Upsert(r.Context(), e); err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if !existed {
		status = http.StatusCreated
		w.Header().Set("Location", fmt.Sprintf("/index/%s/%s", t, id))
	}
	writeJSON(w, status, e)
}

// DeleteEntity handles DELETE /index/{type}/{id}.
func (s *Server) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	t, err := entity.Parse(chi.URLParam(r, "type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	if err := s.index.Remove(r.Context(), t, chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateBackup handles POST /backups.
func (s *Server) CreateBackup(w http.ResponseWriter, r *http.Request) {
	var req CreateBackupRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	include, err := parseEntityTypes(req.IncludedEntities)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	meta, err := s.backups.Create(r.Context(), backupuc.CreateOptions{
		Name:    req.Name,
		Include: include,
	})
	if err != nil {
		metrics.BackupOperationsTotal.WithLabelValues("create", "error").Inc()
		s.handleDomainError(w, err)
		return
	}

	metrics.BackupOperationsTotal.WithLabelValues("create", "ok").Inc()
	metrics.BackupSizeBytes.Observe(float64(meta.Size))

	writeJSON(w, http.StatusCreated, meta)
}

// ListBackups handles GET /backups.
func (s *Server) ListBackups(w http.ResponseWriter, r *http.Request) {
	items, err := s.backups.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BackupListResponse{Items: items})
}

// GetBackup handles GET /backups/{id}.
func (s *Server) GetBackup(w http.ResponseWriter, r *http.Request) {
	meta, err := s.backups.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meta)
}

// RestoreBackup handles POST /backups/{id}/restore.
func (s *Server) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	var req RestoreBackupRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	types, err := parseEntityTypes(req.Entities)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	res, err := s.backups.Restore(r.Context(), backupuc.RestoreOptions{
		BackupID:          chi.URLParam(r, "id"),
		Entities:          types,
		OverwriteExisting: req.OverwriteExisting,
		DryRun:            req.DryRun,
	})
	if err != nil {
		metrics.BackupOperationsTotal.WithLabelValues("restore", "error").Inc()
		s.handleDomainError(w, err)
		return
	}

	status := "ok"
	if !res.Success {
		status = "error"
	}
	metrics.BackupOperationsTotal.WithLabelValues("restore", status).Inc()

	writeJSON(w, http.StatusOK, restoreToResponse(res))
}

// ExportBackup handles GET /backups/{id}/export.
func (s *Server) ExportBackup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	raw, err := s.backups.Export(r.Context(), id)
	if err != nil {
		metrics.BackupOperationsTotal.WithLabelValues("export", "error").Inc()
		s.handleDomainError(w, err)
		return
	}

	metrics.BackupOperationsTotal.WithLabelValues("export", "ok").Inc()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "backup-"+id+".json"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// ImportBackup handles POST /backups/import.
func (s *Server) ImportBackup(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Failed to read request body: "+err.Error())
		return
	}

	meta, err := s.backups.Import(r.Context(), raw)
	if err != nil {
		metrics.BackupOperationsTotal.WithLabelValues("import", "error").Inc()
		s.handleDomainError(w, err)
		return
	}

	metrics.BackupOperationsTotal.WithLabelValues("import", "ok").Inc()
	metrics.BackupSizeBytes.Observe(float64(meta.Size))

	writeJSON(w, http.StatusCreated, meta)
}

// ValidateBackup handles GET /backups/{id}/validate.
func (s *Server) ValidateBackup(w http.ResponseWriter, r *http.Request) {
	report, err := s.backups.Validate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ValidateBackupResponse{
		Valid:           report.Valid,
		Issues:          report.Issues,
		Recommendations: report.Recommendations,
	})
}

// DeleteBackup handles DELETE /backups/{id}.
func (s *Server) DeleteBackup(w http.ResponseWriter, r *http.Request) {
	if err := s.backups.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		metrics.BackupOperationsTotal.WithLabelValues("delete", "error").Inc()
		s.handleDomainError(w, err)
		return
	}

	metrics.BackupOperationsTotal.WithLabelValues("delete", "ok").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// AssistantChat handles POST /assistant/chat.
func (s *Server) AssistantChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	reply, err := s.assistant.Chat(r.Context(), req.Messages)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

// UploadContent handles POST /content (multipart form, field "file").
func (s *Server) UploadContent(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Missing multipart file field: "+err.Error())
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Failed to read upload: "+err.Error())
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	up, err := s.content.Upload(r.Context(), header.Filename, contentType, data)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, UploadResponse{ID: up.ID, URL: up.URL})
}

// GetContent handles GET /content/{id}.
func (s *Server) GetContent(w http.ResponseWriter, r *http.Request) {
	blob, err := s.content.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", blob.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", blob.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob.Data)
}

// DeleteContent handles DELETE /content/{id}.
func (s *Server) DeleteContent(w http.ResponseWriter, r *http.Request) {
	if err := s.content.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrBackupNotFound,
		domain.ErrChecksumMismatch,
		domain.ErrInvalidBackup,
		domain.ErrInvalidQuery,
		domain.ErrContentTooLarge,
		domain.ErrAssistantProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
