package handlers

import (
	"context"
	"net/http"
	"sync/atomic"

	"docqa/internal/contextutil"
	"docqa/internal/service"
)

// IndexHandler handles HTTP requests for triggering a corpus ingestion run.
type IndexHandler struct {
	indexer CorpusIndexer
	root    string
	running atomic.Bool
	// done, if set, is called when a background run finishes.
	done func()
}

// NewIndexHandler creates a new IndexHandler that ingests the corpus under root.
func NewIndexHandler(indexer CorpusIndexer, root string) *IndexHandler {
	return &IndexHandler{indexer: indexer, root: root}
}

// IndexResponse represents the response from the index endpoint.
type IndexResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ServeHTTP starts an ingestion run in the background and returns immediately.
// Only one run is active at a time; a second request gets 409.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if !h.running.CompareAndSwap(false, true) {
		handleServiceError(ctx, w, service.WrapError(service.ErrConflict, "corpus ingestion"), "")
		return
	}
	logger.InfoContext(ctx, "corpus ingestion triggered via API", "root", h.root)

	// the run outlives the request, so it gets a fresh context carrying only the logger
	runCtx := contextutil.WithLogger(context.Background(), logger)
	go func() {
		defer func() {
			h.running.Store(false)
			if h.done != nil {
				h.done()
			}
		}()
		stats, err := h.indexer.IngestDir(runCtx, h.root)
		if err != nil {
			logger.ErrorContext(runCtx, "corpus ingestion failed", "error", err)
			return
		}
		logger.InfoContext(runCtx, "corpus ingestion completed", "run_id", stats.RunID)
	}()

	writeJSON(ctx, w, http.StatusAccepted, IndexResponse{
		Message: "Indexing started. Check server logs or /api/v1/index/stats for progress.",
		Status:  "accepted",
	})
}
