package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewEmbeddingsClient(t *testing.T) {
	client := NewEmbeddingsClient("http://localhost:8081/", "key", "granite-embedding", 384)
	if client.BaseURL != "http://localhost:8081" {
		t.Errorf("BaseURL = %v, want trailing slash trimmed", client.BaseURL)
	}
	if client.ExpectedSize != 384 {
		t.Errorf("ExpectedSize = %v, want 384", client.ExpectedSize)
	}
}

// embeddingServer answers with one zero vector per entry of dims, sized by that entry.
func embeddingServer(dims ...int) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := EmbeddingsResponse{}
		for i, n := range dims {
			resp.Data = append(resp.Data, EmbeddingData{Index: i, Embedding: make([]float64, n)})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func TestEmbeddingsClient_EmbedTexts(t *testing.T) {
	chunks := []string{
		"Our Services \u2014 Consulting\n\nWe help with cloud migrations.",
		"Our Services \u2014 Support\n\nAround-the-clock production support.",
	}

	tests := []struct {
		name       string
		texts      []string
		apiKey     string
		serverResp func(t *testing.T) http.HandlerFunc
		wantErr    bool
	}{
		{
			name:   "chunk batch",
			texts:  chunks,
			apiKey: "secret",
			serverResp: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					if r.Method != http.MethodPost || r.URL.Path != "/v1/embeddings" {
						t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
					}
					if got := r.Header.Get("Authorization"); got != "Bearer secret" {
						t.Errorf("Authorization = %q", got)
					}
					var req EmbeddingsRequest
					_ = json.NewDecoder(r.Body).Decode(&req)
					if req.Model != "granite-embedding" || len(req.Input) != 2 {
						t.Errorf("unexpected payload %+v", req)
					}
					embeddingServer(8, 8)(w, r)
				}
			},
		},
		{
			name:  "no api key sends no auth header",
			texts: chunks[:1],
			serverResp: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					if got := r.Header.Get("Authorization"); got != "" {
						t.Errorf("Authorization = %q, want none", got)
					}
					embeddingServer(8)(w, r)
				}
			},
		},
		{
			name:  "empty input",
			texts: nil,
			serverResp: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					t.Error("server should not be called for empty input")
				}
			},
			wantErr: true,
		},
		{
			name:       "fewer vectors than texts",
			texts:      chunks,
			serverResp: func(*testing.T) http.HandlerFunc { return embeddingServer(8) },
			wantErr:    true,
		},
		{
			name:       "collection size mismatch",
			texts:      chunks[:1],
			serverResp: func(*testing.T) http.HandlerFunc { return embeddingServer(4) },
			wantErr:    true,
		},
		{
			name:  "rate limited",
			texts: chunks[:1],
			serverResp: func(*testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					http.Error(w, "slow down", http.StatusTooManyRequests)
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.serverResp(t))
			defer server.Close()

			client := NewEmbeddingsClient(server.URL, tt.apiKey, "granite-embedding", 8)
			embeddings, err := client.EmbedTexts(context.Background(), tt.texts)

			if tt.wantErr {
				if err == nil {
					t.Errorf("EmbedTexts() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("EmbedTexts() unexpected error: %v", err)
			}
			if len(embeddings) != len(tt.texts) {
				t.Errorf("EmbedTexts() returned %d embeddings, want %d", len(embeddings), len(tt.texts))
			}
			for i, emb := range embeddings {
				if len(emb) != 8 {
					t.Errorf("embedding[%d] size = %d, want 8", i, len(emb))
				}
			}
		})
	}
}

func TestEmbeddingsClient_EmbedTexts_OrdersByIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req EmbeddingsRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "test-model" || len(req.Input) != 2 {
			t.Errorf("unexpected request %+v", req)
		}

		resp := EmbeddingsResponse{
			Data: []EmbeddingData{
				{Index: 1, Embedding: []float64{0, 2.5}},
				{Index: 0, Embedding: []float64{1.5, 0}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewEmbeddingsClient(server.URL, "", "test-model", 2)
	embeddings, err := client.EmbedTexts(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}

	if embeddings[0][0] != float32(1.5) {
		t.Errorf("embedding[0] = %v, want the vector reported for index 0", embeddings[0])
	}
	if embeddings[1][1] != float32(2.5) {
		t.Errorf("embedding[1] = %v, want the vector reported for index 1", embeddings[1])
	}
}
