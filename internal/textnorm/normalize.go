// Package textnorm canonicalizes extracted document text before chunking.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SectionMarker separates explicit sections in normalized text.
const SectionMarker = "===SEP==="

var (
	loneDotRe     = regexp.MustCompile(`(?m)^[ \t]*\.[ \t]*$`)
	hspaceRe      = regexp.MustCompile(`[ \t]+`)
	blankLinesRe  = regexp.MustCompile(`\n{3,}`)
	underscoreRe  = regexp.MustCompile(`(?m)^[ \t]*_{3,}[ \t]*$`)
	footnoteRe    = regexp.MustCompile(`([A-Za-z])[0-9]{1,3}([^0-9A-Za-z]|$)`)
	canonicalizer = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\u00a0", " ")
)

// Normalize returns the canonical form of raw.
// It is pure and idempotent.
func Normalize(raw string) string {
	text := norm.NFC.String(raw)
	text = canonicalizer.Replace(text)
	text = loneDotRe.ReplaceAllString(text, "")
	text = hspaceRe.ReplaceAllString(text, " ")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// MarkSectionBreaks replaces horizontal rules made of underscores with SectionMarker.
func MarkSectionBreaks(text string) string {
	return underscoreRe.ReplaceAllString(text, "\n\n"+SectionMarker+"\n\n")
}

// StripFootnoteDigits removes one to three digits glued to the end of a letter run,
// e.g. "services12." becomes "services.".
//
// The pass is lossy: product codes and similar tokens ("mp3 ") are damaged too.
func StripFootnoteDigits(text string) string {
	return footnoteRe.ReplaceAllString(text, "$1$2")
}

// Options selects the optional ingestion passes.
type Options struct {
	// FootnoteDigits enables StripFootnoteDigits.
	FootnoteDigits bool
}

// Apply runs the ingestion normalization: Normalize, the optional passes,
// section break marking, then Normalize again so the result is canonical.
func Apply(raw string, opts Options) string {
	text := Normalize(raw)
	if opts.FootnoteDigits {
		text = StripFootnoteDigits(text)
	}
	text = MarkSectionBreaks(text)
	return Normalize(text)
}
