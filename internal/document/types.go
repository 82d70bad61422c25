// Package document holds the chunk model shared by ingestion and retrieval.
package document

import (
	"fmt"
	"path"
	"strings"
)

// Kind is the structural origin of a chunk.
type Kind string

const (
	KindListItem  Kind = "list_item"
	KindParagraph Kind = "paragraph"
)

// UntitledSection is the section title used when a section has no usable heading line.
const UntitledSection = "Section"

// Payload keys as stored in the vector index.
const (
	KeySource     = "source"
	KeySection    = "section"
	KeyType       = "type"
	KeyItemTitle  = "item_title"
	KeyItemNumber = "item_number"
	KeyPartIndex  = "part_index"
	KeyFilename   = "filename"
	KeyDir        = "dir"
)

// ListItem is the payload carried only by list_item chunks.
type ListItem struct {
	Number int
	Title  string
}

// Metadata describes where a chunk came from.
// Item is set only for KindListItem; Part is set only when the chunk was split for length.
type Metadata struct {
	Source   string
	Section  string
	Filename string
	Dir      string
	Kind     Kind
	Item     *ListItem
	Part     *int
}

// Chunk is the atomic retrievable unit.
type Chunk struct {
	ID   string
	Text string
	Meta Metadata
}

// ForSource returns base metadata for a source key: the key itself, its file name and directory.
func ForSource(sourceKey string) Metadata {
	dir := path.Dir(sourceKey)
	if dir == "." {
		dir = ""
	}
	return Metadata{
		Source:   sourceKey,
		Filename: path.Base(sourceKey),
		Dir:      dir,
	}
}

// WithPart returns a copy of m marked as part i of a split chunk.
func (m Metadata) WithPart(i int) Metadata {
	part := i
	m.Part = &part
	return m
}

// Header builds the display header "{section} — {item_title}" from whichever parts are present.
func (m Metadata) Header() string {
	var parts []string
	if m.Section != "" {
		parts = append(parts, m.Section)
	}
	if m.Kind == KindListItem && m.Item != nil && m.Item.Title != "" {
		parts = append(parts, m.Item.Title)
	}
	return strings.Join(parts, " — ")
}

// Payload flattens the metadata for storage in the vector index.
func (m Metadata) Payload() map[string]any {
	p := map[string]any{
		KeySource:  m.Source,
		KeySection: m.Section,
		KeyType:    string(m.Kind),
	}
	if m.Filename != "" {
		p[KeyFilename] = m.Filename
	}
	if m.Dir != "" {
		p[KeyDir] = m.Dir
	}
	switch m.Kind {
	case KindListItem:
		if m.Item != nil {
			p[KeyItemTitle] = m.Item.Title
			p[KeyItemNumber] = m.Item.Number
		}
	case KindParagraph:
	}
	if m.Part != nil {
		p[KeyPartIndex] = *m.Part
	}
	return p
}

// MetadataFromPayload rebuilds Metadata from a stored payload.
// Numeric fields may arrive as any integer or float type depending on the backend.
func MetadataFromPayload(p map[string]any) (Metadata, error) {
	m := Metadata{
		Source:   stringField(p, KeySource),
		Section:  stringField(p, KeySection),
		Filename: stringField(p, KeyFilename),
		Dir:      stringField(p, KeyDir),
		Kind:     Kind(stringField(p, KeyType)),
	}

	switch m.Kind {
	case KindListItem:
		item := &ListItem{Title: stringField(p, KeyItemTitle)}
		if n, ok := intField(p, KeyItemNumber); ok {
			item.Number = n
		}
		m.Item = item
	case KindParagraph:
	default:
		return m, fmt.Errorf("unknown chunk type %q", m.Kind)
	}

	if n, ok := intField(p, KeyPartIndex); ok {
		m.Part = &n
	}
	return m, nil
}

func stringField(p map[string]any, key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

func intField(p map[string]any, key string) (int, bool) {
	switch v := p[key].(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float32:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}
