package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"kvcache/internal/backend"
	"kvcache/internal/cache"
	"kvcache/internal/logger"
	"kvcache/internal/models"

	"github.com/gorilla/mux"
)

// EntriesCacheName is the registry name of the lazy frontend serving the
// flat entry API
const EntriesCacheName = "entries"

// namespaceKeyPrefix turns a namespace name into the storage id of its
// aggregate record
const namespaceKeyPrefix = "ns_"

// Handler contains the HTTP handlers for the API
type Handler struct {
	entries         *cache.Lazy
	storage         backend.Backend
	logger          logger.Service
	defaultLifetime time.Duration
}

// NewHandler creates a new HTTP handler. The entries cache is looked up in
// the registry once, at construction.
func NewHandler(
	registry *cache.Registry,
	storage backend.Backend,
	logger logger.Service,
	defaultLifetime time.Duration,
) (*Handler, error) {
	entries, err := registry.Get(EntriesCacheName)
	if err != nil {
		return nil, err
	}

	return &Handler{
		entries:         entries,
		storage:         storage,
		logger:          logger,
		defaultLifetime: defaultLifetime,
	}, nil
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// writeJSONResponse writes a JSON response with standard headers including X-Request-ID
func (h *Handler) writeJSONResponse(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) error {
	logEvent := logger.GetLogEvent(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", logEvent.ProcessID)
	w.WriteHeader(statusCode)

	return json.NewEncoder(w).Encode(data)
}

// writeErrorResponse writes a standardized error response
func (h *Handler) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, error, message string) {
	response := ErrorResponse{
		Error:     error,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	if err := h.writeJSONResponse(w, r, statusCode, response); err != nil {
		h.logger.LogError(r.Context(), "response_encoding", "", "Failed to encode error response", err, models.LogSeverityLow, nil)
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, response); err != nil {
		h.logger.LogError(ctx, logger.OpHealthCheck, "", "Failed to encode health response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogInfo(ctx, logger.OpHealthCheck, "Health check performed successfully", nil)
}

// GetEntry handles GET /api/entries/{id}
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	value, found, err := h.entries.Fetch(ctx, id)
	if err != nil {
		h.logger.LogError(ctx, logger.OpEntryFetch, id, "Entry fetch failed", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "fetch failed", err.Error())
		return
	}

	if !found {
		h.writeErrorResponse(w, r, http.StatusNotFound, "entry not found", fmt.Sprintf("no entry under id %q", id))
		return
	}

	response := models.EntryResponse{
		ID:        id,
		Value:     value,
		Timestamp: time.Now().UTC(),
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, response); err != nil {
		h.logger.LogError(ctx, logger.OpEntryFetch, id, "Failed to encode response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogSuccess(ctx, logger.OpEntryFetch, id, "Entry fetched", nil)
}

// SaveEntry handles PUT /api/entries/{id}
func (h *Handler) SaveEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	var request models.SaveEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.LogError(ctx, logger.OpEntrySave, id, "Invalid request body", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	// Absent lifetime means the configured default; an explicit 0 means no
	// expiration and passes through as-is.
	lifetime := h.defaultLifetime
	if request.LifetimeSeconds != nil {
		lifetime = time.Duration(*request.LifetimeSeconds) * time.Second
	}

	if err := h.entries.Save(ctx, id, request.Value, lifetime); err != nil {
		h.logger.LogError(ctx, logger.OpEntrySave, id, "Entry save failed", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "save failed", err.Error())
		return
	}

	response := models.EntryResponse{
		ID:        id,
		Value:     request.Value,
		Timestamp: time.Now().UTC(),
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, response); err != nil {
		h.logger.LogError(ctx, logger.OpEntrySave, id, "Failed to encode response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogSuccess(ctx, logger.OpEntrySave, id, "Entry saved", map[string]interface{}{
		"lifetime_seconds": int64(lifetime / time.Second),
	})
}

// DeleteEntry handles DELETE /api/entries/{id}
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	removed, err := h.entries.Delete(ctx, id)
	if err != nil {
		h.logger.LogError(ctx, logger.OpEntryDelete, id, "Entry delete failed", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "delete failed", err.Error())
		return
	}

	response := models.DeleteEntryResponse{
		ID:      id,
		Deleted: removed,
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, response); err != nil {
		h.logger.LogError(ctx, logger.OpEntryDelete, id, "Failed to encode response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogSuccess(ctx, logger.OpEntryDelete, id, "Entry delete processed", map[string]interface{}{
		"deleted": removed,
	})
}

// FlushEntries handles DELETE /api/entries
func (h *Handler) FlushEntries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.entries.FlushAll(ctx); err != nil {
		h.logger.LogError(ctx, logger.OpEntryFlush, "", "Flush failed", err, models.LogSeverityMedium, nil)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "flush failed", err.Error())
		return
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, models.FlushResponse{Flushed: true}); err != nil {
		h.logger.LogError(ctx, logger.OpEntryFlush, "", "Failed to encode response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogSuccess(ctx, logger.OpEntryFlush, "", "Backend flushed", nil)
}

// namespaceCache constructs the request-scoped eager frontend for a namespace
func (h *Handler) namespaceCache(r *http.Request) (*cache.Eager, string, error) {
	namespace := mux.Vars(r)["namespace"]
	if err := cache.ValidateID(namespace); err != nil {
		return nil, namespace, err
	}

	eager, err := cache.NewEager(r.Context(), h.storage, namespaceKeyPrefix+namespace)
	return eager, namespace, err
}

// GetNamespaceEntry handles GET /api/namespaces/{namespace}/entries/{id}
func (h *Handler) GetNamespaceEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	eager, namespace, err := h.namespaceCache(r)
	if err != nil {
		h.logger.LogError(ctx, logger.OpNamespaceFetch, namespace, "Namespace cache load failed", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "namespace load failed", err.Error())
		return
	}

	if !eager.Contains(id) {
		h.writeErrorResponse(w, r, http.StatusNotFound, "entry not found",
			fmt.Sprintf("no entry under id %q in namespace %q", id, namespace))
		return
	}

	value, err := eager.Fetch(id)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusNotFound, "entry not found", err.Error())
		return
	}

	response := models.EntryResponse{
		ID:        id,
		Namespace: namespace,
		Value:     value,
		Timestamp: time.Now().UTC(),
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, response); err != nil {
		h.logger.LogError(ctx, logger.OpNamespaceFetch, namespace, "Failed to encode response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogSuccess(ctx, logger.OpNamespaceFetch, namespace, "Namespace entry fetched", map[string]interface{}{
		"id": id,
	})
}

// SaveNamespaceEntry handles PUT /api/namespaces/{namespace}/entries/{id}
func (h *Handler) SaveNamespaceEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	var request models.SaveEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.LogError(ctx, logger.OpNamespaceSave, "", "Invalid request body", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	eager, namespace, err := h.namespaceCache(r)
	if err != nil {
		h.logger.LogError(ctx, logger.OpNamespaceSave, namespace, "Namespace cache load failed", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "namespace load failed", err.Error())
		return
	}

	if err := eager.Save(id, request.Value); err != nil {
		h.logger.LogError(ctx, logger.OpNamespaceSave, namespace, "Namespace entry save failed", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "save failed", err.Error())
		return
	}

	if err := h.persistNamespace(ctx, eager, namespace); err != nil {
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "persist failed", err.Error())
		return
	}

	response := models.EntryResponse{
		ID:        id,
		Namespace: namespace,
		Value:     request.Value,
		Timestamp: time.Now().UTC(),
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, response); err != nil {
		h.logger.LogError(ctx, logger.OpNamespaceSave, namespace, "Failed to encode response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogSuccess(ctx, logger.OpNamespaceSave, namespace, "Namespace entry saved", map[string]interface{}{
		"id": id,
	})
}

// DeleteNamespaceEntry handles DELETE /api/namespaces/{namespace}/entries/{id}
func (h *Handler) DeleteNamespaceEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	eager, namespace, err := h.namespaceCache(r)
	if err != nil {
		h.logger.LogError(ctx, logger.OpNamespaceDelete, namespace, "Namespace cache load failed", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "namespace load failed", err.Error())
		return
	}

	removed := eager.Delete(id)

	if err := h.persistNamespace(ctx, eager, namespace); err != nil {
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "persist failed", err.Error())
		return
	}

	response := models.DeleteEntryResponse{
		ID:        id,
		Namespace: namespace,
		Deleted:   removed,
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, response); err != nil {
		h.logger.LogError(ctx, logger.OpNamespaceDelete, namespace, "Failed to encode response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogSuccess(ctx, logger.OpNamespaceDelete, namespace, "Namespace entry delete processed", map[string]interface{}{
		"id":      id,
		"deleted": removed,
	})
}

// FlushNamespace handles DELETE /api/namespaces/{namespace}
func (h *Handler) FlushNamespace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	eager, namespace, err := h.namespaceCache(r)
	if err != nil {
		h.logger.LogError(ctx, logger.OpNamespaceFlush, namespace, "Namespace cache load failed", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "namespace load failed", err.Error())
		return
	}

	eager.FlushAll(ctx)

	response := models.FlushResponse{
		Flushed:   true,
		Namespace: namespace,
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, response); err != nil {
		h.logger.LogError(ctx, logger.OpNamespaceFlush, namespace, "Failed to encode response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogSuccess(ctx, logger.OpNamespaceFlush, namespace, "Namespace flushed", nil)
}

// persistNamespace flushes the request-scoped eager cache back to the
// backend, the end-of-scope write that makes its mutations durable
func (h *Handler) persistNamespace(ctx context.Context, eager *cache.Eager, namespace string) error {
	if err := eager.PersistIfNeeded(ctx, h.defaultLifetime); err != nil {
		h.logger.LogError(ctx, logger.OpNamespacePersist, namespace, "Namespace persist failed", err, models.LogSeverityMedium, nil)
		return err
	}
	return nil
}

// getStatusCodeForError determines the appropriate HTTP status code for an error
func (h *Handler) getStatusCodeForError(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
