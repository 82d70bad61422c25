package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// RerankResult is the relevance score of one input document.
type RerankResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

// RerankClient talks to a Cohere-compatible rerank API (also served by llama.cpp
// and text-embeddings-inference).
type RerankClient struct {
	BaseURL string
	APIKey  string
	Model   string
	client  *http.Client
}

// NewRerankClient creates a new rerank client.
func NewRerankClient(baseURL, apiKey, model string) *RerankClient {
	return &RerankClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		client:  newHTTPClient(),
	}
}

// RerankRequest represents the request payload for the rerank API.
type RerankRequest struct {
	Model     string   `json:"model,omitempty"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n,omitempty"`
}

// RerankResponse represents the response from the rerank API.
type RerankResponse struct {
	Results []RerankResult `json:"results"`
}

// Rerank scores documents against query and returns at most topN results in the
// order the server ranked them. Results pointing outside documents are an error.
func (c *RerankClient) Rerank(ctx context.Context, query string, documents []string, topN int) ([]RerankResult, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	var rerankResp RerankResponse
	payload := RerankRequest{Model: c.Model, Query: query, Documents: documents, TopN: topN}
	if err := postJSON(ctx, c.client, c.BaseURL+"/v1/rerank", c.APIKey, payload, &rerankResp); err != nil {
		return nil, err
	}

	for _, r := range rerankResp.Results {
		if r.Index < 0 || r.Index >= len(documents) {
			return nil, fmt.Errorf("rerank result index %d out of range [0,%d)", r.Index, len(documents))
		}
	}
	if topN > 0 && len(rerankResp.Results) > topN {
		rerankResp.Results = rerankResp.Results[:topN]
	}
	return rerankResp.Results, nil
}
