package textnorm

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "crlf and cr become lf",
			raw:  "one\r\ntwo\rthree",
			want: "one\ntwo\nthree",
		},
		{
			name: "nbsp folds to space",
			raw:  "a\u00a0b",
			want: "a b",
		},
		{
			name: "lone dot lines removed",
			raw:  "first\n  .  \nsecond",
			want: "first\n\nsecond",
		},
		{
			name: "horizontal whitespace collapsed",
			raw:  "a \t  b\t\tc",
			want: "a b c",
		},
		{
			name: "three or more newlines collapse to one blank line",
			raw:  "a\n\n\n\n\nb",
			want: "a\n\nb",
		},
		{
			name: "trim",
			raw:  "  \n\n hello \n\n ",
			want: "hello",
		},
		{
			name: "nfc composition",
			raw:  "cafe\u0301",
			want: "caf\u00e9",
		},
		{
			name: "dot removal then blank collapse",
			raw:  "x\n.\n\n\ny",
			want: "x\n\ny",
		},
		{
			name: "empty",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	samples := []string{
		"",
		"plain text",
		"  leading and trailing  ",
		"line1\r\n\r\n\r\n\r\nline2",
		"a\u00a0.\u00a0\nb",
		"tabs\t\t\tand   spaces",
		" .\n.\n . \n",
		"e\u0301\u0301 combining marks",
		"\u212b angstrom sign",
		"Title\n\n1. One\nbody\n\n\n\n2. Two\n",
		"mixed \r\n\u00a0 \t\r\r\n. \n end",
		strings.Repeat("para \n\n\n", 10),
		"___\nsection\n___",
	}

	for _, s := range samples {
		once := Normalize(s)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", s, once, twice)
		}
	}
}

func TestMarkSectionBreaks(t *testing.T) {
	got := Apply("Intro\n_____\nNext part", Options{})
	want := "Intro\n\n" + SectionMarker + "\n\nNext part"
	if got != want {
		t.Errorf("Apply() = %q, want %q", got, want)
	}

	if got := MarkSectionBreaks("keep __ inline"); got != "keep __ inline" {
		t.Errorf("MarkSectionBreaks() changed inline underscores: %q", got)
	}
}

func TestStripFootnoteDigits(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "trailing footnote", in: "services12.", want: "services."},
		{name: "end of text", in: "word3", want: "word"},
		{name: "four digits kept", in: "year2024 ", want: "year2024 "},
		{name: "standalone numbers kept", in: "call 555 now", want: "call 555 now"},
		{name: "digits followed by letter kept", in: "a1b", want: "a1b"},
		{name: "several", in: "alpha1, beta2; gamma", want: "alpha, beta; gamma"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFootnoteDigits(tt.in); got != tt.want {
				t.Errorf("StripFootnoteDigits(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestApply_FootnotesOptIn(t *testing.T) {
	raw := "Model X200 ships with mp3 support."
	if got := Apply(raw, Options{}); got != raw {
		t.Errorf("Apply() without FootnoteDigits changed text: %q", got)
	}
	if got := Apply(raw, Options{FootnoteDigits: true}); got == raw {
		t.Errorf("Apply() with FootnoteDigits should strip digits, got %q", got)
	}
}
