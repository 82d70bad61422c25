package indexer

import (
	"crypto/sha256"
	"encoding/hex"

	"docqa/internal/document"
)

// idSeparator joins source key and text inside the digest. Source keys are file
// paths, which cannot contain NUL, so no two (key, text) pairs share an input.
const idSeparator = "\x00"

// ChunkID returns the content-addressed identifier of text within sourceKey.
func ChunkID(sourceKey, text string) string {
	sum := sha256.Sum256([]byte(sourceKey + idSeparator + text))
	return hex.EncodeToString(sum[:])
}

// AssignIDs turns pieces into chunks with identifiers, dropping exact duplicates
// (same text within the same source) while keeping first-seen order.
func AssignIDs(sourceKey string, pieces []Piece) []document.Chunk {
	seen := make(map[string]struct{}, len(pieces))
	chunks := make([]document.Chunk, 0, len(pieces))
	for _, p := range pieces {
		id := ChunkID(sourceKey, p.Text)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		chunks = append(chunks, document.Chunk{ID: id, Text: p.Text, Meta: p.Meta})
	}
	return chunks
}
