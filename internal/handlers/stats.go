package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"docqa/internal/storage"
)

// Limits for the number of runs returned by the stats endpoint.
const (
	DefaultStatsLimit = 10
	MaxStatsLimit     = 100
)

// StatsHandler handles HTTP requests for ingestion run history.
type StatsHandler struct {
	runs storage.RunStore
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(runs storage.RunStore) *StatsHandler {
	return &StatsHandler{runs: runs}
}

// RunSummary is one ingestion run as returned by the stats endpoint.
type RunSummary struct {
	ID             string          `json:"id"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     time.Time       `json:"finished_at"`
	IndexVersion   string          `json:"index_version"`
	FilesProcessed int             `json:"files_processed"`
	FilesSkipped   int             `json:"files_skipped"`
	FilesFailed    int             `json:"files_failed"`
	ChunksAdded    int             `json:"chunks_added"`
	ChunksRemoved  int             `json:"chunks_removed"`
	Stats          json.RawMessage `json:"stats,omitempty"`
}

// StatsResponse lists recent runs, newest first.
type StatsResponse struct {
	Runs []RunSummary `json:"runs"`
}

// ServeHTTP returns the most recent runs. The optional limit query parameter
// is clamped to MaxStatsLimit.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	ctx := r.Context()

	limit := DefaultStatsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxStatsLimit)
	}

	records, err := h.runs.ListRecent(ctx, limit)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to load ingestion runs")
		return
	}

	resp := StatsResponse{Runs: make([]RunSummary, 0, len(records))}
	for _, rec := range records {
		summary := RunSummary{
			ID:             rec.ID,
			StartedAt:      rec.StartedAt,
			FinishedAt:     rec.FinishedAt,
			IndexVersion:   rec.IndexVersion,
			FilesProcessed: rec.FilesProcessed,
			FilesSkipped:   rec.FilesSkipped,
			FilesFailed:    rec.FilesFailed,
			ChunksAdded:    rec.ChunksAdded,
			ChunksRemoved:  rec.ChunksRemoved,
		}
		if json.Valid(rec.Stats) {
			summary.Stats = json.RawMessage(rec.Stats)
		}
		resp.Runs = append(resp.Runs, summary)
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}
