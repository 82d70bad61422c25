package rag

import (
	"fmt"
	"regexp"
	"strings"
)

const contextSeparator = "\n\n---\n\n"

// BuildPrompt embeds the question and the accepted context texts in the answering prompt.
func BuildPrompt(question string, texts []string) string {
	return fmt.Sprintf(`You are a helpful documentation assistant. Answer ONLY using the provided context below.
If the context contains a list, enumerate all items in the list.
Summarize and organize your answer clearly, avoid repetition, and be professional and friendly.
If the answer is not in the context, do NOT make up information. If you cannot answer, say so and offer to connect the user to support.

Context:
%s

Question:
%s

Answer:`, strings.Join(texts, contextSeparator), question)
}

var lowQualityPhrases = []string{"i don't know", "no information"}

// IsLowQuality reports whether a generated answer should be replaced by the fallback:
// it is empty, admits not knowing, or stops mid-sentence on a colon.
func IsLowQuality(answer string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" || strings.HasSuffix(answer, ":") {
		return true
	}
	lower := strings.ToLower(strings.ReplaceAll(answer, "\u2019", "'"))
	for _, p := range lowQualityPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

var doubledContact = regexp.MustCompile(`(?i)contact us at\s+you can reach us at`)

// SanitizeContact cleans up contact details the model or the canned replies repeated:
// a doubled "contact us at" lead-in is merged and contactLine is kept only once.
func SanitizeContact(text, contactLine string) string {
	text = doubledContact.ReplaceAllString(text, "contact us at")
	if contactLine == "" || strings.Count(text, contactLine) <= 1 {
		return text
	}
	first, rest, _ := strings.Cut(text, contactLine)
	return first + contactLine + strings.ReplaceAll(rest, contactLine, "")
}
