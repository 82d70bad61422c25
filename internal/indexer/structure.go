package indexer

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"docqa/internal/document"
	"docqa/internal/textnorm"
)

const (
	maxTitleRunes     = 120
	minParagraphRunes = 60
)

var (
	numberedItemRe = regexp.MustCompile(`^\s*(\d+)\.\s+(\S.*)$`)
	paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)
)

// Piece is chunk content with its metadata, before an identifier is assigned.
// Overlap is the number of leading runes repeated from the previous piece of the same split.
type Piece struct {
	Text    string
	Meta    document.Metadata
	Overlap int
}

type numberedItem struct {
	number int
	title  string
	body   []string
}

// ChunkStructure splits normalized text into list-item and paragraph pieces.
// Sections are separated by textnorm.SectionMarker. A section containing a numbered
// list yields only list_item pieces; otherwise each paragraph of at least
// minParagraphRunes becomes a paragraph piece.
func ChunkStructure(text string, base document.Metadata) []Piece {
	var pieces []Piece
	for _, section := range splitSections(text) {
		title, body := sectionTitle(section)

		if items := numberedItems(body); len(items) > 0 {
			for _, it := range items {
				meta := base
				meta.Section = title
				meta.Kind = document.KindListItem
				meta.Item = &document.ListItem{Number: it.number, Title: it.title}

				content := title + " — " + it.title + "\n\n" + textnorm.Normalize(strings.Join(it.body, "\n"))
				pieces = append(pieces, Piece{Text: strings.TrimSpace(content), Meta: meta})
			}
			continue
		}

		for _, p := range paragraphBreak.Split(body, -1) {
			p = strings.TrimSpace(p)
			if utf8.RuneCountInString(p) < minParagraphRunes {
				continue
			}
			meta := base
			meta.Section = title
			meta.Kind = document.KindParagraph
			pieces = append(pieces, Piece{Text: title + "\n\n" + p, Meta: meta})
		}
	}
	return pieces
}

func splitSections(text string) []string {
	if !strings.Contains(text, textnorm.SectionMarker) {
		if s := strings.TrimSpace(text); s != "" {
			return []string{s}
		}
		return nil
	}

	var sections []string
	for _, s := range strings.Split(text, textnorm.SectionMarker) {
		if s = strings.TrimSpace(s); s != "" {
			sections = append(sections, s)
		}
	}
	return sections
}

// sectionTitle returns the section title and the body that follows it.
// Untitled sections get document.UntitledSection and keep their full text as body.
func sectionTitle(section string) (string, string) {
	lines := strings.Split(section, "\n")
	for i, line := range lines {
		first := strings.TrimSpace(line)
		if first == "" {
			continue
		}
		if isTitleLine(first) {
			return first, strings.Join(lines[i+1:], "\n")
		}
		break
	}
	return document.UntitledSection, section
}

func isTitleLine(line string) bool {
	if utf8.RuneCountInString(line) > maxTitleRunes {
		return false
	}
	if strings.HasSuffix(line, ".") || strings.HasSuffix(line, ":") || strings.HasSuffix(line, ";") {
		return false
	}
	return !numberedItemRe.MatchString(line)
}

// numberedItems collects "N. title" lines and the lines that follow each one,
// up to the next numbered line. Text before the first item is ignored.
func numberedItems(body string) []numberedItem {
	var items []numberedItem
	for _, line := range strings.Split(body, "\n") {
		if m := numberedItemRe.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				items = append(items, numberedItem{number: n, title: strings.TrimSpace(m[2])})
				continue
			}
		}
		if len(items) > 0 {
			last := &items[len(items)-1]
			last.body = append(last.body, line)
		}
	}
	return items
}
