package rag

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"docqa/internal/llm"
)

const (
	lexicalLengthScale = 10.0
	maxLexicalScore    = 0.4
	headingMatchBonus  = 0.1
)

var lexicalStopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {}, "by": {},
	"do": {}, "does": {}, "for": {}, "from": {}, "has": {}, "have": {}, "how": {}, "i": {}, "in": {},
	"is": {}, "it": {}, "of": {}, "on": {}, "or": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"what": {}, "with": {}, "you": {}, "your": {},
}

// LexicalScorer is an offline Scorer based on query term overlap. Scores are in [0,1].
// It stands in for a cross-encoder when no rerank endpoint is configured.
type LexicalScorer struct{}

// Rerank scores every document and returns the best topN, highest first.
// A document's first line is treated as its heading.
func (LexicalScorer) Rerank(_ context.Context, query string, documents []string, topN int) ([]llm.RerankResult, error) {
	results := make([]llm.RerankResult, len(documents))
	for i, doc := range documents {
		heading, body, found := strings.Cut(doc, "\n")
		if !found {
			heading, body = "", doc
		}
		results[i] = llm.RerankResult{
			Index:          i,
			RelevanceScore: lexicalScore(query, body, heading) / maxLexicalScore,
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}

// lexicalScore computes a lightweight lexical relevance score for a chunk relative to a query,
// clamped to [0, maxLexicalScore].
func lexicalScore(query, chunkText, heading string) float64 {
	queryTokens := filterStopwords(tokenize(query))
	if len(queryTokens) == 0 {
		return 0
	}

	chunkTokens := tokenize(chunkText)
	if len(chunkTokens) == 0 {
		return 0
	}

	chunkFreq := make(map[string]int, len(chunkTokens))
	for _, token := range chunkTokens {
		chunkFreq[token]++
	}

	var rawMatches int
	for _, token := range queryTokens {
		rawMatches += chunkFreq[token]
	}

	score := (float64(rawMatches) / (1 + float64(len(chunkTokens)))) * lexicalLengthScale

	if headingTokens := tokenize(heading); len(headingTokens) > 0 {
		headingSet := make(map[string]struct{}, len(headingTokens))
		for _, token := range headingTokens {
			headingSet[token] = struct{}{}
		}
		var headingMatches int
		for _, token := range queryTokens {
			if _, ok := headingSet[token]; ok {
				headingMatches++
			}
		}
		score += float64(headingMatches) * headingMatchBonus
	}

	return min(max(score, 0), maxLexicalScore)
}

func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	return strings.Fields(builder.String())
}

func filterStopwords(tokens []string) []string {
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, isStop := lexicalStopwords[token]; isStop {
			continue
		}
		result = append(result, token)
	}
	return result
}
