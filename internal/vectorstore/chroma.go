package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"docqa/internal/contextutil"
)

// includeDistances has no named constant in the v2 client; the result decoder reads it.
const includeDistances chromago.Include = "distances"

// chromaQueryInclude lists the result fields Search asks Chroma for.
var chromaQueryInclude = []chromago.Include{
	chromago.IncludeDocuments,
	chromago.IncludeMetadatas,
	chromago.IncludeEmbeddings,
	includeDistances,
}

// ChromaStore implements VectorStore on a Chroma server.
// Vectors are always supplied by the caller; no collection embedding function is used.
type ChromaStore struct {
	client chromago.Client

	mu          sync.Mutex
	collections map[string]chromago.Collection
}

// NewChromaStore connects to the Chroma HTTP API at baseURL.
func NewChromaStore(baseURL string) (*ChromaStore, error) {
	client, err := chromago.NewHTTPClient(chromago.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create Chroma client: %w", err)
	}
	return &ChromaStore{
		client:      client,
		collections: make(map[string]chromago.Collection),
	}, nil
}

func (s *ChromaStore) collection(ctx context.Context, name string) (chromago.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[name]; ok {
		return c, nil
	}
	c, err := s.client.GetOrCreateCollection(ctx, name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(chromago.NewStringAttribute("created_by", "docqa")),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", name, err)
	}
	s.collections[name] = c
	return c, nil
}

// Upsert inserts or updates points in the collection.
func (s *ChromaStore) Upsert(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	col, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}

	ids := make([]chromago.DocumentID, len(points))
	texts := make([]string, len(points))
	vectors := make([]embeddings.Embedding, len(points))
	metas := make([]chromago.DocumentMetadata, len(points))
	for i, p := range points {
		ids[i] = chromago.DocumentID(p.ID)
		texts[i], _ = p.Meta[TextKey].(string)
		vectors[i] = embeddings.NewEmbeddingFromFloat32(p.Vec)
		metas[i] = chromaMetadata(p.Meta)
	}

	if err := col.Upsert(ctx,
		chromago.WithIDs(ids...),
		chromago.WithTexts(texts...),
		chromago.WithEmbeddings(vectors...),
		chromago.WithMetadatas(metas...),
	); err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	contextutil.LoggerFromContext(ctx).DebugContext(ctx, "upserted points", "collection", collection, "count", len(points))
	return nil
}

// Search performs a similarity search with optional filters.
// Scores are 1/(1+distance) so that larger is closer, like the other backends.
func (s *ChromaStore) Search(ctx context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}
	col, err := s.collection(ctx, collection)
	if err != nil {
		return nil, err
	}

	opts := []chromago.CollectionQueryOption{
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(query)),
		chromago.WithNResults(k),
		chromago.WithIncludeQuery(chromaQueryInclude...),
	}
	if where, err := chromaWhere(filters); err != nil {
		return nil, err
	} else if where != nil {
		opts = append(opts, chromago.WithWhereQuery(where))
	}

	res, err := col.Query(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	idGroups := res.GetIDGroups()
	if len(idGroups) == 0 {
		return nil, nil
	}
	ids := idGroups[0]
	var docs chromago.Documents
	if g := res.GetDocumentsGroups(); len(g) > 0 {
		docs = g[0]
	}
	var metas chromago.DocumentMetadatas
	if g := res.GetMetadatasGroups(); len(g) > 0 {
		metas = g[0]
	}
	var vecs embeddings.Embeddings
	if g := res.GetEmbeddingsGroups(); len(g) > 0 {
		vecs = g[0]
	}
	var dists embeddings.Distances
	if g := res.GetDistancesGroups(); len(g) > 0 {
		dists = g[0]
	}

	results := make([]SearchResult, 0, len(ids))
	for i, id := range ids {
		meta := map[string]any{}
		if i < len(metas) && metas[i] != nil {
			meta = metadataToMap(metas[i])
		}
		if i < len(docs) && docs[i] != nil {
			meta[TextKey] = docs[i].ContentString()
		}
		r := SearchResult{PointID: string(id), Meta: meta}
		if i < len(vecs) && vecs[i] != nil {
			r.Vec = vecs[i].ContentAsFloat32()
		}
		if i < len(dists) {
			r.Score = distanceScore(float64(dists[i]))
		}
		results = append(results, r)
	}
	return results, nil
}

// Delete removes points by their IDs.
func (s *ChromaStore) Delete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	col, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}

	docIDs := make([]chromago.DocumentID, len(ids))
	for i, id := range ids {
		docIDs[i] = chromago.DocumentID(id)
	}
	if err := col.Delete(ctx, chromago.WithIDsDelete(docIDs...)); err != nil {
		return fmt.Errorf("failed to delete points: %w", err)
	}
	return nil
}

// ListIDs returns the IDs of every point matching filters.
func (s *ChromaStore) ListIDs(ctx context.Context, collection string, filters map[string]any) ([]string, error) {
	col, err := s.collection(ctx, collection)
	if err != nil {
		return nil, err
	}

	var opts []chromago.CollectionGetOption
	if where, err := chromaWhere(filters); err != nil {
		return nil, err
	} else if where != nil {
		opts = append(opts, chromago.WithWhereGet(where))
	}

	res, err := col.Get(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to list points: %w", err)
	}

	ids := make([]string, 0, len(res.GetIDs()))
	for _, id := range res.GetIDs() {
		ids = append(ids, string(id))
	}
	return ids, nil
}

// EnsureCollection creates the collection if missing. Chroma sizes vectors on first insert,
// so vectorSize is not used.
func (s *ChromaStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	_, err := s.collection(ctx, collection)
	return err
}

// CollectionExists checks if a collection exists.
func (s *ChromaStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	if _, err := s.client.GetCollection(ctx, collection); err != nil {
		return false, fmt.Errorf("failed to get collection %s: %w", collection, err)
	}
	return true, nil
}

// Close releases the HTTP client.
func (s *ChromaStore) Close() error {
	return s.client.Close()
}

// distanceScore maps a non-negative distance to (0, 1], larger meaning closer.
func distanceScore(d float64) float32 {
	return float32(1 / (1 + d))
}

func chromaMetadata(meta map[string]any) chromago.DocumentMetadata {
	attrs := make([]*chromago.MetaAttribute, 0, len(meta))
	for k, v := range meta {
		if k == TextKey {
			continue
		}
		switch val := v.(type) {
		case string:
			attrs = append(attrs, chromago.NewStringAttribute(k, val))
		case int:
			attrs = append(attrs, chromago.NewIntAttribute(k, int64(val)))
		case int64:
			attrs = append(attrs, chromago.NewIntAttribute(k, val))
		case float64:
			attrs = append(attrs, chromago.NewFloatAttribute(k, val))
		case bool:
			attrs = append(attrs, chromago.NewBoolAttribute(k, val))
		}
	}
	return chromago.NewDocumentMetadata(attrs...)
}

// metadataToMap goes through JSON since DocumentMetadata exposes no generic accessor.
func metadataToMap(m chromago.DocumentMetadata) map[string]any {
	out := map[string]any{}
	data, err := json.Marshal(m)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(data, &out)
	return out
}

func chromaWhere(filters map[string]any) (chromago.WhereClause, error) {
	if len(filters) == 0 {
		return nil, nil
	}

	clauses := make([]chromago.WhereClause, 0, len(filters))
	for key, value := range filters {
		switch v := value.(type) {
		case string:
			clauses = append(clauses, chromago.EqString(key, v))
		case int:
			clauses = append(clauses, chromago.EqInt(key, v))
		case bool:
			clauses = append(clauses, chromago.EqBool(key, v))
		default:
			return nil, fmt.Errorf("unsupported filter value type %T for %q", value, key)
		}
	}
	if len(clauses) == 1 {
		return clauses[0], nil
	}
	return chromago.And(clauses...), nil
}
