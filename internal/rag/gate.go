package rag

import (
	"context"
	"fmt"
	"sort"

	"docqa/internal/contextutil"
	"docqa/internal/document"
	"docqa/internal/llm"
	"docqa/internal/vectorstore"
)

// Gate defaults.
const (
	DefaultTopN      = 6
	DefaultThreshold = 0.35
)

// OutagePolicy decides whether a reranker outage lets unscored candidates through.
type OutagePolicy string

const (
	// PassThrough accepts the first candidates in retrieval order.
	PassThrough OutagePolicy = "pass_through"
	// RejectOnOutage sends the question to the fallback reply.
	RejectOnOutage OutagePolicy = "fallback"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_scorer.go -package=mocks docqa/internal/rag Scorer

// Scorer scores documents for relevance to a query. *llm.RerankClient and
// LexicalScorer implement it.
type Scorer interface {
	Rerank(ctx context.Context, query string, documents []string, topN int) ([]llm.RerankResult, error)
}

// Selected is a candidate that made it through reranking.
type Selected struct {
	Candidate vectorstore.Candidate
	// Text is the candidate content prefixed with its section header, when it has one.
	Text  string
	Score float64
}

// GateResult is the outcome of reranking and gating a candidate set.
type GateResult struct {
	Accepted bool
	Selected []Selected
	TopScore float64
	Outcome  Outcome
}

// Texts returns the display text of every selected candidate.
func (g GateResult) Texts() []string {
	out := make([]string, len(g.Selected))
	for i, s := range g.Selected {
		out[i] = s.Text
	}
	return out
}

// Gate reranks candidates and accepts them only when the best score reaches the threshold.
type Gate struct {
	scorer    Scorer
	topN      int
	threshold float64
	outage    OutagePolicy
}

// NewGate creates a gate. A zero topN falls back to DefaultTopN.
func NewGate(scorer Scorer, topN int, threshold float64, outage OutagePolicy) *Gate {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if outage == "" {
		outage = PassThrough
	}
	return &Gate{scorer: scorer, topN: topN, threshold: threshold, outage: outage}
}

// RerankAndGate scores candidates against question and keeps the best topN. The result
// is accepted when it is non-empty and its top score is at least the threshold.
// When the scorer fails, the first topN candidates are returned unscored and the
// outage policy decides acceptance.
func (g *Gate) RerankAndGate(ctx context.Context, question string, candidates []vectorstore.Candidate) GateResult {
	logger := contextutil.LoggerFromContext(ctx)
	if len(candidates) == 0 {
		return GateResult{Outcome: OK()}
	}

	docs := make([]string, len(candidates))
	for i, c := range candidates {
		docs[i] = c.Text
	}
	topN := min(g.topN, len(candidates))

	results, err := g.scorer.Rerank(ctx, question, docs, topN)
	if err == nil {
		err = validateResults(results, len(candidates))
	}
	if err != nil {
		res := GateResult{
			Accepted: g.outage == PassThrough,
			Outcome:  Degraded("reranker unavailable", err),
		}
		for _, c := range candidates[:topN] {
			res.Selected = append(res.Selected, Selected{Candidate: c, Text: c.Text})
		}
		logger.WarnContext(ctx, "rerank failed, using retrieval order",
			"error", err, "policy", string(g.outage), "accepted", res.Accepted, "candidates", len(res.Selected))
		return res
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	if len(results) > topN {
		results = results[:topN]
	}

	res := GateResult{Outcome: OK()}
	for _, r := range results {
		c := candidates[r.Index]
		res.Selected = append(res.Selected, Selected{
			Candidate: c,
			Text:      displayText(c),
			Score:     r.RelevanceScore,
		})
	}
	if len(res.Selected) > 0 {
		res.TopScore = res.Selected[0].Score
	}
	res.Accepted = len(res.Selected) > 0 && res.TopScore >= g.threshold

	logger.DebugContext(ctx, "rerank completed", "selected", len(res.Selected), "top_score", res.TopScore, "accepted", res.Accepted)
	return res
}

func validateResults(results []llm.RerankResult, n int) error {
	for _, r := range results {
		if r.Index < 0 || r.Index >= n {
			return fmt.Errorf("rerank result index %d out of range", r.Index)
		}
	}
	return nil
}

// displayText prefixes the candidate content with "{section} — {item_title}" when
// its metadata provides either.
func displayText(c vectorstore.Candidate) string {
	meta, err := document.MetadataFromPayload(c.Meta)
	if err != nil {
		section, _ := c.Meta[document.KeySection].(string)
		meta = document.Metadata{Section: section}
	}
	if header := meta.Header(); header != "" {
		return header + "\n" + c.Text
	}
	return c.Text
}
