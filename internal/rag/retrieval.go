package rag

import (
	"context"

	"docqa/internal/contextutil"
	"docqa/internal/vectorstore"
)

// Retrieval defaults.
const (
	DefaultK         = 40
	DefaultFetchK    = 80
	DefaultDiversity = 0.8
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_searcher.go -package=mocks docqa/internal/rag Searcher

// Searcher is the query side of the vector index. *vectorstore.Index implements it.
type Searcher interface {
	QueryMMR(ctx context.Context, text string, k, fetchK int, diversity float64) ([]vectorstore.Candidate, error)
	QuerySimilar(ctx context.Context, text string, k int) ([]vectorstore.Candidate, error)
}

// RetrieveOptions controls candidate retrieval. Diversity runs from 0 (pure
// relevance) to 1 (pure diversity).
type RetrieveOptions struct {
	K         int
	FetchK    int
	Diversity float64
}

// DefaultRetrieveOptions returns the standard retrieval settings.
func DefaultRetrieveOptions() RetrieveOptions {
	return RetrieveOptions{K: DefaultK, FetchK: DefaultFetchK, Diversity: DefaultDiversity}
}

// Retriever fetches candidate chunks for a question.
type Retriever struct {
	searcher Searcher
	opts     RetrieveOptions
}

// NewRetriever creates a retriever. Zero K or FetchK fall back to the defaults.
func NewRetriever(searcher Searcher, opts RetrieveOptions) *Retriever {
	if opts.K <= 0 {
		opts.K = DefaultK
	}
	if opts.FetchK < opts.K {
		opts.FetchK = max(DefaultFetchK, opts.K)
	}
	opts.Diversity = min(max(opts.Diversity, 0), 1)
	return &Retriever{searcher: searcher, opts: opts}
}

// Retrieve runs an MMR query and falls back to plain similarity search when it fails.
// Errors never escape: a failed fallback yields no candidates and a Failed outcome.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]vectorstore.Candidate, Outcome) {
	logger := contextutil.LoggerFromContext(ctx)

	candidates, err := r.searcher.QueryMMR(ctx, question, r.opts.K, r.opts.FetchK, r.opts.Diversity)
	if err == nil {
		logger.DebugContext(ctx, "mmr retrieval completed", "candidates", len(candidates))
		return candidates, OK()
	}
	logger.WarnContext(ctx, "mmr retrieval failed, using similarity search", "error", err)

	candidates, simErr := r.searcher.QuerySimilar(ctx, question, r.opts.K)
	if simErr != nil {
		logger.ErrorContext(ctx, "similarity retrieval failed", "error", simErr)
		return nil, Failed("similarity search failed", simErr)
	}
	return candidates, Degraded("mmr search failed", err)
}
