package document

import (
	"testing"
)

func TestForSource(t *testing.T) {
	tests := []struct {
		key      string
		filename string
		dir      string
	}{
		{key: "about.txt", filename: "about.txt", dir: ""},
		{key: "services/consulting.md", filename: "consulting.md", dir: "services"},
		{key: "a/b/c.txt", filename: "c.txt", dir: "a/b"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m := ForSource(tt.key)
			if m.Source != tt.key || m.Filename != tt.filename || m.Dir != tt.dir {
				t.Errorf("ForSource(%q) = %+v", tt.key, m)
			}
		})
	}
}

func TestMetadata_Header(t *testing.T) {
	tests := []struct {
		name string
		meta Metadata
		want string
	}{
		{
			name: "list item with section",
			meta: Metadata{Section: "Services", Kind: KindListItem, Item: &ListItem{Number: 1, Title: "Consulting"}},
			want: "Services \u2014 Consulting",
		},
		{
			name: "paragraph with section",
			meta: Metadata{Section: "About", Kind: KindParagraph},
			want: "About",
		},
		{
			name: "nothing",
			meta: Metadata{Kind: KindParagraph},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.meta.Header(); got != tt.want {
				t.Errorf("Header() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	meta := ForSource("docs/services.txt")
	meta.Section = "Services"
	meta.Kind = KindListItem
	meta.Item = &ListItem{Number: 2, Title: "Support"}
	meta = meta.WithPart(1)

	payload := meta.Payload()
	// JSON-backed stores hand numbers back as float64.
	payload[KeyItemNumber] = float64(2)
	payload[KeyPartIndex] = int64(1)

	got, err := MetadataFromPayload(payload)
	if err != nil {
		t.Fatalf("MetadataFromPayload() error = %v", err)
	}
	if got.Item == nil || got.Item.Number != 2 || got.Item.Title != "Support" {
		t.Errorf("Item = %+v", got.Item)
	}
	if got.Part == nil || *got.Part != 1 {
		t.Errorf("Part = %v", got.Part)
	}
	if got.Source != "docs/services.txt" || got.Dir != "docs" || got.Filename != "services.txt" {
		t.Errorf("base fields = %+v", got)
	}
}

func TestPayload_ParagraphHasNoItemFields(t *testing.T) {
	meta := Metadata{Source: "a.txt", Section: "Intro", Kind: KindParagraph}
	payload := meta.Payload()

	for _, key := range []string{KeyItemTitle, KeyItemNumber, KeyPartIndex} {
		if _, ok := payload[key]; ok {
			t.Errorf("paragraph payload should not contain %q", key)
		}
	}
}

func TestMetadataFromPayload_UnknownType(t *testing.T) {
	if _, err := MetadataFromPayload(map[string]any{KeyType: "table"}); err == nil {
		t.Error("MetadataFromPayload() expected error for unknown type")
	}
}

func TestWithPart_DoesNotAlias(t *testing.T) {
	base := Metadata{Kind: KindParagraph}
	a := base.WithPart(0)
	b := base.WithPart(1)
	if *a.Part != 0 || *b.Part != 1 {
		t.Errorf("WithPart() aliasing: a=%d b=%d", *a.Part, *b.Part)
	}
	if base.Part != nil {
		t.Error("WithPart() mutated receiver")
	}
}
