package handlers

import (
	"errors"
	"net/http"
	"strings"

	"docqa/internal/contextutil"
	"docqa/internal/indexer"
	"docqa/internal/service"
)

// IngestHandler handles HTTP requests that push a single document into the index.
type IngestHandler struct {
	ingester DocumentIngester
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(ingester DocumentIngester) *IngestHandler {
	return &IngestHandler{ingester: ingester}
}

// IngestRequest represents the HTTP request payload for ingest.
type IngestRequest struct {
	SourceKey string `json:"source_key"`
	Text      string `json:"text"`
}

// IngestResponse reports what the reconciliation changed.
type IngestResponse struct {
	Added         int `json:"added"`
	Removed       int `json:"removed"`
	Chunks        int `json:"chunks"`
	FailedBatches int `json:"failed_batches,omitempty"`
}

// ServeHTTP ingests one document. Sending empty text removes the source from the index.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	ctx := r.Context()

	var req IngestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.SourceKey) == "" {
		handleServiceError(ctx, w, &service.ValidationError{Field: "source_key", Message: "source key is required"}, "")
		return
	}

	res, err := h.ingester.Ingest(ctx, req.SourceKey, req.Text)
	if err != nil {
		if errors.Is(err, indexer.ErrEmptySourceKey) {
			handleServiceError(ctx, w, &service.ValidationError{Field: "source_key", Message: err.Error()}, "")
			return
		}
		if res.FailedBatches == 0 {
			handleServiceError(ctx, w, service.WrapError(err, "failed to ingest document"), "Failed to ingest document")
			return
		}
		// failed batches are reported in the body; the next ingest of the source retries them
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "document partially ingested",
			"source", req.SourceKey, "failed_batches", res.FailedBatches, "error", err)
	}

	writeJSON(ctx, w, http.StatusOK, IngestResponse{
		Added:         res.Added,
		Removed:       res.Removed,
		Chunks:        res.Chunks,
		FailedBatches: res.FailedBatches,
	})
}
