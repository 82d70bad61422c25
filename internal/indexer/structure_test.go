package indexer

import (
	"strings"
	"testing"

	"docqa/internal/document"
	"docqa/internal/textnorm"
)

const longParagraph = "Our consulting team works with clients across several industries to plan, build and run software."

func TestChunkStructure(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantTexts []string
		wantKinds []document.Kind
		wantItems []int
	}{
		{
			name: "numbered list under a title",
			raw:  "Services\n1. Web Development\nWe build sites.\n2. Mobile Apps\nWe build apps.\nNative and hybrid.",
			wantTexts: []string{
				"Services \u2014 Web Development\n\nWe build sites.",
				"Services \u2014 Mobile Apps\n\nWe build apps.\nNative and hybrid.",
			},
			wantKinds: []document.Kind{document.KindListItem, document.KindListItem},
			wantItems: []int{1, 2},
		},
		{
			name:      "item without body",
			raw:       "Plans\n1. Basic\n2. Premium",
			wantTexts: []string{"Plans \u2014 Basic", "Plans \u2014 Premium"},
			wantKinds: []document.Kind{document.KindListItem, document.KindListItem},
			wantItems: []int{1, 2},
		},
		{
			name:      "paragraphs keep only long ones",
			raw:       "About Us\n\n" + longParagraph + "\n\nToo short.",
			wantTexts: []string{"About Us\n\n" + longParagraph},
			wantKinds: []document.Kind{document.KindParagraph},
		},
		{
			name:      "sentence first line is not a title",
			raw:       longParagraph,
			wantTexts: []string{"Section\n\n" + longParagraph},
			wantKinds: []document.Kind{document.KindParagraph},
		},
		{
			name:      "numbered first line is not a title",
			raw:       "1. First step\nDo this.\n2. Second step\nDo that.",
			wantTexts: []string{"Section \u2014 First step\n\nDo this.", "Section \u2014 Second step\n\nDo that."},
			wantKinds: []document.Kind{document.KindListItem, document.KindListItem},
			wantItems: []int{1, 2},
		},
		{
			name: "sections split on rules",
			raw:  "Intro\n\n" + longParagraph + "\n___\nSteps\n1. Call us\n",
			wantTexts: []string{
				"Intro\n\n" + longParagraph,
				"Steps \u2014 Call us",
			},
			wantKinds: []document.Kind{document.KindParagraph, document.KindListItem},
			wantItems: []int{0, 1},
		},
		{
			name:      "title too long",
			raw:       strings.Repeat("word ", 30) + "\n\n" + longParagraph,
			wantTexts: []string{"Section\n\n" + strings.TrimSpace(strings.Repeat("word ", 30)), "Section\n\n" + longParagraph},
			wantKinds: []document.Kind{document.KindParagraph, document.KindParagraph},
		},
		{
			name: "empty text",
			raw:  "  \n\n ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := textnorm.Apply(tt.raw, textnorm.Options{})
			pieces := ChunkStructure(text, document.ForSource("docs/a.txt"))

			if len(pieces) != len(tt.wantTexts) {
				t.Fatalf("ChunkStructure() returned %d pieces, want %d: %#v", len(pieces), len(tt.wantTexts), pieces)
			}
			for i, p := range pieces {
				if p.Text != tt.wantTexts[i] {
					t.Errorf("piece %d text = %q, want %q", i, p.Text, tt.wantTexts[i])
				}
				if p.Meta.Kind != tt.wantKinds[i] {
					t.Errorf("piece %d kind = %s, want %s", i, p.Meta.Kind, tt.wantKinds[i])
				}
				if p.Meta.Source != "docs/a.txt" || p.Meta.Filename != "a.txt" || p.Meta.Dir != "docs" {
					t.Errorf("piece %d base metadata = %+v", i, p.Meta)
				}
				if p.Meta.Kind == document.KindListItem {
					if p.Meta.Item == nil || p.Meta.Item.Number != tt.wantItems[i] {
						t.Errorf("piece %d item = %+v, want number %d", i, p.Meta.Item, tt.wantItems[i])
					}
				} else if p.Meta.Item != nil {
					t.Errorf("paragraph piece %d carries item metadata", i)
				}
				if p.Meta.Part != nil {
					t.Errorf("piece %d should not have a part index", i)
				}
			}
		})
	}
}

func TestChunkStructure_ItemTitleInMetadata(t *testing.T) {
	pieces := ChunkStructure("Pricing\n3. Enterprise plan\nCustom terms.", document.ForSource("p.txt"))
	if len(pieces) != 1 {
		t.Fatalf("ChunkStructure() returned %d pieces, want 1", len(pieces))
	}
	meta := pieces[0].Meta
	if meta.Section != "Pricing" || meta.Item.Title != "Enterprise plan" || meta.Item.Number != 3 {
		t.Errorf("metadata = %+v / %+v", meta, meta.Item)
	}
	if got := meta.Header(); got != "Pricing \u2014 Enterprise plan" {
		t.Errorf("Header() = %q", got)
	}
}
