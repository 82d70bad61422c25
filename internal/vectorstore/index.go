package vectorstore

import (
	"context"
	"fmt"
	"maps"
)

// TextKey is the payload field holding the chunk text.
const TextKey = "text"

// Embedder turns texts into vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Entry is a text to be embedded and stored under ID.
type Entry struct {
	ID   string
	Text string
	Meta map[string]any
}

// Candidate is a stored text returned by a query.
type Candidate struct {
	ID    string
	Text  string
	Score float32
	Meta  map[string]any
}

// Index is the text-level view of a vector store: it embeds on write and on query,
// and keeps the original text in the payload.
type Index struct {
	embedder   Embedder
	store      VectorStore
	collection string
}

// NewIndex creates an Index over one collection of store.
func NewIndex(embedder Embedder, store VectorStore, collection string) *Index {
	return &Index{
		embedder:   embedder,
		store:      store,
		collection: collection,
	}
}

// Upsert embeds and stores entries.
func (ix *Index) Upsert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}
	vectors, err := ix.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed entries: %w", err)
	}
	if len(vectors) != len(entries) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(entries), len(vectors))
	}

	points := make([]Point, len(entries))
	for i, e := range entries {
		meta := make(map[string]any, len(e.Meta)+1)
		maps.Copy(meta, e.Meta)
		meta[TextKey] = e.Text
		points[i] = Point{ID: e.ID, Vec: vectors[i], Meta: meta}
	}

	return ix.store.Upsert(ctx, ix.collection, points)
}

// Delete removes entries by id.
func (ix *Index) Delete(ctx context.Context, ids []string) error {
	return ix.store.Delete(ctx, ix.collection, ids)
}

// IDs returns the set of ids whose payload field equals value.
func (ix *Index) IDs(ctx context.Context, field, value string) (map[string]struct{}, error) {
	ids, err := ix.store.ListIDs(ctx, ix.collection, map[string]any{field: value})
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// QuerySimilar returns the k nearest entries to text.
func (ix *Index) QuerySimilar(ctx context.Context, text string, k int) ([]Candidate, error) {
	query, err := ix.embedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	results, err := ix.store.Search(ctx, ix.collection, query, k, nil)
	if err != nil {
		return nil, err
	}
	return toCandidates(results), nil
}

// QueryMMR fetches fetchK neighbours of text and selects k of them with MMR.
func (ix *Index) QueryMMR(ctx context.Context, text string, k, fetchK int, diversity float64) ([]Candidate, error) {
	query, err := ix.embedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	results, err := ix.store.Search(ctx, ix.collection, query, max(fetchK, k), nil)
	if err != nil {
		return nil, err
	}
	return toCandidates(MMR(query, results, k, diversity)), nil
}

// Healthy reports whether the backing collection is reachable and present.
func (ix *Index) Healthy(ctx context.Context) error {
	exists, err := ix.store.CollectionExists(ctx, ix.collection)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("collection %s does not exist", ix.collection)
	}
	return nil
}

func (ix *Index) embedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := ix.embedder.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 query embedding, got %d", len(vectors))
	}
	return vectors[0], nil
}

func toCandidates(results []SearchResult) []Candidate {
	out := make([]Candidate, 0, len(results))
	for _, r := range results {
		meta := make(map[string]any, len(r.Meta))
		maps.Copy(meta, r.Meta)
		text, _ := meta[TextKey].(string)
		delete(meta, TextKey)
		out = append(out, Candidate{ID: r.PointID, Text: text, Score: r.Score, Meta: meta})
	}
	return out
}
