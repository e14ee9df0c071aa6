package ingestion

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	v1 "github.com/vitalink/vitalink-core/internal/api/v1"
	httperr "github.com/vitalink/vitalink-core/internal/core/errors"
)

const (
	msgReadBodyFailed  = "Failed to read request body"
	msgInvalidJSON     = "Invalid JSON body"
	msgBodyTooLarge    = "Request body exceeds maximum allowed size"
	msgBatchTooLarge   = "Batch exceeds maximum number of samples"
	msgRegistryFailure = "Patient registry is unavailable"
)

// ingestionError carries the structured HTTP error shape from a helper back to the handler.
type ingestionError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestionError) Error() string {
	return e.message
}

// Handler exposes the coordinator over HTTP.
type Handler struct {
	coordinator      *Coordinator
	maxBodySizeBytes int64
}

// NewHandler creates the ingestion HTTP handler.
func NewHandler(c *Coordinator, maxBodySizeMB int) *Handler {
	if c == nil {
		panic("ingestion: coordinator must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1
	}
	return &Handler{
		coordinator:      c,
		maxBodySizeBytes: int64(maxBodySizeMB) * 1024 * 1024,
	}
}

// RegisterRoutes registers the ingestion routes.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/ingest", h.IngestHandler)
}

// IngestHandler handles POST /v1/ingest. A processed batch answers 200 even when some
// samples were rejected; per-sample outcomes carry the detail.
func (h *Handler) IngestHandler(c *gin.Context) {
	req, ierr := h.parseRequest(c)
	if ierr != nil {
		writeError(c, ierr)
		return
	}

	result, err := h.coordinator.Ingest(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.mapError(err))
		return
	}

	c.JSON(http.StatusOK, result)
}

// parseRequest reads the size-limited body and decodes the batch.
func (h *Handler) parseRequest(c *gin.Context) (*v1.IngestRequest, *ingestionError) {
	limitedBody := io.LimitReader(c.Request.Body, h.maxBodySizeBytes+1)

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("[Ingestion] Failed to read request body", "error", err)
		return nil, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > h.maxBodySizeBytes {
		slog.Warn("[Ingestion] Request body exceeds maximum size", "size", len(bodyBytes), "max", h.maxBodySizeBytes)
		return nil, &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpPayloadTooLargeError,
			message:    msgBodyTooLarge,
			details: map[string]interface{}{
				"max_size_mb": h.maxBodySizeBytes / (1024 * 1024),
			},
		}
	}

	var req v1.IngestRequest
	if err := json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&req); err != nil {
		slog.Warn("[Ingestion] Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return nil, &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
			details:    map[string]interface{}{"error": err.Error()},
		}
	}
	return &req, nil
}

func (h *Handler) mapError(err error) *ingestionError {
	switch {
	case errors.Is(err, ErrBatchTooLarge):
		return &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpPayloadTooLargeError,
			message:    msgBatchTooLarge,
			details: map[string]interface{}{
				"max_batch_size": h.coordinator.MaxBatchSize(),
			},
		}
	case httperr.IsTransient(err):
		slog.Error("[Ingestion] Batch could not be processed", "error", err)
		return &ingestionError{
			statusCode: http.StatusServiceUnavailable,
			errorType:  httperr.HttpUnavailableError,
			message:    msgRegistryFailure,
		}
	default:
		return &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    err.Error(),
		}
	}
}

// writeError serializes an ingestionError as the JSON HTTP response.
func writeError(c *gin.Context, err *ingestionError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
