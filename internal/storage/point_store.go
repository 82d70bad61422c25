package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"docqa/internal/vectorstore"
)

// sourceField is the payload key mirrored into the points.source column.
const sourceField = "source"

// PointStore is a vectorstore.VectorStore kept in SQLite. Search is a brute-force
// cosine scan over the collection, which suits local corpora and tests.
type PointStore struct {
	db *sql.DB
}

var _ vectorstore.VectorStore = (*PointStore)(nil)

// NewPointStore creates a new PointStore. The database must already be migrated.
func NewPointStore(db *sql.DB) *PointStore {
	return &PointStore{db: db}
}

// EnsureCollection registers collection with the given vector size, or checks the size
// of an existing one.
func (s *PointStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	var size int
	err := s.db.QueryRowContext(ctx, "SELECT vector_size FROM collections WHERE name = ?", collection).Scan(&size)
	if err == sql.ErrNoRows {
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO collections (name, vector_size) VALUES (?, ?)", collection, vectorSize,
		); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to query collection: %w", err)
	}
	if size != vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, size)
	}
	return nil
}

// CollectionExists reports whether collection has been registered.
func (s *PointStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM collections WHERE name = ?", collection).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return n > 0, nil
}

// Upsert inserts or replaces points in one transaction.
func (s *PointStore) Upsert(ctx context.Context, collection string, points []vectorstore.Point) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT OR REPLACE INTO points (collection, id, source, vec, meta) VALUES (?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, p := range points {
		meta, err := json.Marshal(p.Meta)
		if err != nil {
			return fmt.Errorf("failed to encode payload for %s: %w", p.ID, err)
		}
		source, _ := p.Meta[sourceField].(string)
		if _, err := stmt.ExecContext(ctx, collection, p.ID, source, encodeVector(p.Vec), string(meta)); err != nil {
			return fmt.Errorf("failed to upsert point %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}
	return nil
}

// Search scores every matching point against query and returns the best k.
func (s *PointStore) Search(ctx context.Context, collection string, query []float32, k int, filters map[string]any) ([]vectorstore.SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	where, args := whereClause(collection, filters)
	rows, err := s.db.QueryContext(ctx, "SELECT id, vec, meta FROM points WHERE "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query points: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var results []vectorstore.SearchResult
	for rows.Next() {
		var (
			id   string
			blob []byte
			meta string
		)
		if err := rows.Scan(&id, &blob, &meta); err != nil {
			return nil, fmt.Errorf("failed to scan point: %w", err)
		}
		payload := map[string]any{}
		if err := json.Unmarshal([]byte(meta), &payload); err != nil {
			return nil, fmt.Errorf("failed to decode payload for %s: %w", id, err)
		}
		vec := decodeVector(blob)
		results = append(results, vectorstore.SearchResult{
			PointID: id,
			Score:   float32(vectorstore.Cosine(query, vec)),
			Vec:     vec,
			Meta:    payload,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Delete removes points by their IDs.
func (s *PointStore) Delete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, collection)
	for _, id := range ids {
		args = append(args, id)
	}

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM points WHERE collection = ? AND id IN ("+placeholders+")", args...,
	); err != nil {
		return fmt.Errorf("failed to delete points: %w", err)
	}
	return nil
}

// ListIDs returns the IDs of every point matching filters.
func (s *PointStore) ListIDs(ctx context.Context, collection string, filters map[string]any) ([]string, error) {
	where, args := whereClause(collection, filters)
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM points WHERE "+where+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query point IDs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan point ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return ids, nil
}

// whereClause builds equality conditions. The source field uses its indexed column;
// other fields are matched inside the JSON payload.
func whereClause(collection string, filters map[string]any) (string, []any) {
	conds := []string{"collection = ?"}
	args := []any{collection}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := filters[k]
		if k == sourceField {
			conds = append(conds, "source = ?")
			args = append(args, v)
			continue
		}
		if b, ok := v.(bool); ok {
			v = 0
			if b {
				v = 1
			}
		}
		conds = append(conds, "json_extract(meta, ?) = ?")
		args = append(args, "$."+k, v)
	}
	return strings.Join(conds, " AND "), args
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v
}
