package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"docqa/internal/storage"
	storagemocks "docqa/internal/storage/mocks"
)

func TestStatsHandler_ServeHTTP(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	runs := []*storage.RunRecord{
		{ID: "r2", StartedAt: started.Add(time.Hour), FilesProcessed: 4, ChunksAdded: 9, Stats: []byte(`{"files_processed":4}`)},
		{ID: "r1", StartedAt: started, FilesSkipped: 1, Stats: []byte("not json")},
	}

	tests := []struct {
		name       string
		target     string
		method     string
		mockSetup  func(*storagemocks.MockRunStore)
		wantStatus int
		wantIDs    []string
	}{
		{
			name:   "default limit",
			target: "/api/v1/index/stats",
			method: http.MethodGet,
			mockSetup: func(m *storagemocks.MockRunStore) {
				m.EXPECT().ListRecent(gomock.Any(), DefaultStatsLimit).Return(runs, nil)
			},
			wantStatus: http.StatusOK,
			wantIDs:    []string{"r2", "r1"},
		},
		{
			name:   "limit clamped",
			target: "/api/v1/index/stats?limit=1000",
			method: http.MethodGet,
			mockSetup: func(m *storagemocks.MockRunStore) {
				m.EXPECT().ListRecent(gomock.Any(), MaxStatsLimit).Return(nil, nil)
			},
			wantStatus: http.StatusOK,
			wantIDs:    []string{},
		},
		{
			name:       "bad limit",
			target:     "/api/v1/index/stats?limit=-2",
			method:     http.MethodGet,
			mockSetup:  func(m *storagemocks.MockRunStore) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "store error",
			target: "/api/v1/index/stats",
			method: http.MethodGet,
			mockSetup: func(m *storagemocks.MockRunStore) {
				m.EXPECT().ListRecent(gomock.Any(), DefaultStatsLimit).Return(nil, errors.New("database is locked"))
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "method not allowed",
			target:     "/api/v1/index/stats",
			method:     http.MethodPost,
			mockSetup:  func(m *storagemocks.MockRunStore) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockRuns := storagemocks.NewMockRunStore(ctrl)
			tt.mockSetup(mockRuns)

			w := httptest.NewRecorder()
			NewStatsHandler(mockRuns).ServeHTTP(w, httptest.NewRequest(tt.method, tt.target, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantIDs == nil {
				return
			}
			var resp StatsResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(resp.Runs) != len(tt.wantIDs) {
				t.Fatalf("got %d runs, want %d", len(resp.Runs), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if resp.Runs[i].ID != id {
					t.Errorf("Runs[%d].ID = %s, want %s", i, resp.Runs[i].ID, id)
				}
			}
		})
	}
}

func TestStatsHandler_InvalidStatsOmitted(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRuns := storagemocks.NewMockRunStore(ctrl)
	mockRuns.EXPECT().ListRecent(gomock.Any(), DefaultStatsLimit).Return([]*storage.RunRecord{
		{ID: "r1", Stats: []byte("not json")},
		{ID: "r0", Stats: []byte(`{"chunks_total":7}`)},
	}, nil)

	w := httptest.NewRecorder()
	NewStatsHandler(mockRuns).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/index/stats", nil))

	var resp StatsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Runs[0].Stats != nil {
		t.Errorf("invalid stats should be omitted, got %s", resp.Runs[0].Stats)
	}
	if string(resp.Runs[1].Stats) != `{"chunks_total":7}` {
		t.Errorf("Stats = %s", resp.Runs[1].Stats)
	}
}
