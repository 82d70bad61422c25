package handlers

import (
	"mime"
	"net/http"
	"strconv"

	"docqa/internal/contextutil"
	"docqa/internal/service"
)

// ExportHandler handles HTTP requests that turn a transcript into a download.
type ExportHandler struct{}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// ServeHTTP returns the posted content as a txt or json attachment.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	ctx := r.Context()

	var req service.ExportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	file, err := service.Export(req)
	if err != nil {
		handleServiceError(ctx, w, err, "Export failed")
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Body); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to write export", "error", err)
	}
}
