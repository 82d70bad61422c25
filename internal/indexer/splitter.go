package indexer

import (
	"strings"
	"unicode/utf8"

	"docqa/internal/document"
)

// Defaults for the bounded splitter, in runes.
const (
	DefaultChunkSize    = 1200
	DefaultChunkOverlap = 180
)

// splitSeparators in priority order: paragraph, line, sentence, word.
var splitSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", " "}

// Bound subdivides content longer than maxSize runes. Content that fits is returned
// unchanged and without a part index. Otherwise each piece repeats the last overlap
// runes of the previous segment and carries a zero-based part index, so that
// Reassemble(Bound(c, ...)) == c.
func Bound(content string, meta document.Metadata, maxSize, overlap int) []Piece {
	if maxSize <= 0 || utf8.RuneCountInString(content) <= maxSize {
		return []Piece{{Text: content, Meta: meta}}
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap*2 > maxSize {
		overlap = maxSize / 2
	}

	segments := splitRecursive(content, splitSeparators, maxSize-overlap)

	pieces := make([]Piece, 0, len(segments))
	for i, seg := range segments {
		piece := Piece{Text: seg, Meta: meta.WithPart(i)}
		if i > 0 && overlap > 0 {
			tail := lastRunes(segments[i-1], overlap)
			piece.Text = tail + seg
			piece.Overlap = utf8.RuneCountInString(tail)
		}
		pieces = append(pieces, piece)
	}
	return pieces
}

// Reassemble concatenates pieces produced by Bound, dropping each piece's overlap prefix.
func Reassemble(pieces []Piece) string {
	var b strings.Builder
	for _, p := range pieces {
		b.WriteString(dropRunes(p.Text, p.Overlap))
	}
	return b.String()
}

// splitRecursive partitions text into segments of at most budget runes.
// Separators stay attached to the preceding segment so nothing is lost.
func splitRecursive(text string, seps []string, budget int) []string {
	if utf8.RuneCountInString(text) <= budget {
		return []string{text}
	}

	for i, sep := range seps {
		if !strings.Contains(text, sep) {
			continue
		}

		var out []string
		var cur strings.Builder
		curLen := 0
		flush := func() {
			if curLen > 0 {
				out = append(out, cur.String())
				cur.Reset()
				curLen = 0
			}
		}

		for _, part := range strings.SplitAfter(text, sep) {
			if part == "" {
				continue
			}
			n := utf8.RuneCountInString(part)
			if n > budget {
				flush()
				out = append(out, splitRecursive(part, seps[i+1:], budget)...)
				continue
			}
			if curLen+n > budget {
				flush()
			}
			cur.WriteString(part)
			curLen += n
		}
		flush()
		return out
	}

	return hardSplit(text, budget)
}

func hardSplit(text string, budget int) []string {
	runes := []rune(text)
	out := make([]string, 0, len(runes)/budget+1)
	for start := 0; start < len(runes); start += budget {
		end := min(start+budget, len(runes))
		out = append(out, string(runes[start:end]))
	}
	return out
}

func lastRunes(s string, n int) string {
	count := utf8.RuneCountInString(s)
	if count <= n {
		return s
	}
	return dropRunes(s, count-n)
}

func dropRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[i:]
		}
		n--
	}
	return ""
}
