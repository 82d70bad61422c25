// Package intent recognizes questions with a fixed answer so they can skip retrieval.
package intent

import (
	"regexp"
	"strings"
	"unicode"
)

// Intent is a question category with a canned reply.
type Intent string

const (
	Pricing  Intent = "pricing"
	Greeting Intent = "greeting"
	Thanks   Intent = "thanks"
	Goodbye  Intent = "goodbye"
	Contact  Intent = "contact"
)

var (
	pricingPhrases = phrases(
		"price", "pricing", "cost", "quote", "quotation", "estimate", "budget",
		"rate", "rates", "fee", "fees", "charge", "charges",
		"how much", "per month", "per user", "per seat", "subscription", "plan", "plans", "rate card",
	)
	greetingPhrases = phrases(
		"hi", "hello", "hey", "greetings", "hi there", "hello there", "hey there",
		"good morning", "good afternoon", "good evening", "morning", "afternoon", "evening",
	)
	thanksPhrases  = phrases("thanks", "thank you", "thankyou", "thx", "ty", "much appreciated", "appreciate it")
	goodbyePhrases = phrases("bye", "goodbye", "see you", "see ya", "talk later", "talk to you later")
	contactPhrases = phrases(
		"contact", "contact info", "contact information", "email", "phone", "phone number",
		"address", "support", "customer service", "how do i contact", "how can i contact",
		"get in touch", "reach you",
	)

	// currencyAmount matches a currency symbol or code next to a number, e.g. "$500" or "20k inr".
	currencyAmount = regexp.MustCompile(`(?i)(?:[$€£]|₹|\brs\.?)\s?\d[\d,]*(?:\.\d+)?|\d[\d,]*(?:\.\d+)?\s?(?:usd|inr|eur|gbp|rs\.?|rupees)\b`)
)

func phrases(list ...string) [][]string {
	out := make([][]string, len(list))
	for i, p := range list {
		out[i] = strings.Fields(p)
	}
	return out
}

// NormalizeQuestion lowercases q, removes ASCII punctuation and trims it.
func NormalizeQuestion(q string) string {
	q = strings.Map(func(r rune) rune {
		if r <= unicode.MaxASCII && (unicode.IsPunct(r) || unicode.IsSymbol(r)) {
			return -1
		}
		return r
	}, strings.ToLower(q))
	return strings.TrimSpace(q)
}

// Classify returns the first intent raw and normalized match, testing Pricing, Greeting,
// Thanks, Goodbye and Contact in that order. normalized must come from NormalizeQuestion(raw).
func Classify(raw, normalized string) (Intent, bool) {
	words := strings.Fields(normalized)

	switch {
	case containsAny(words, pricingPhrases) || currencyAmount.MatchString(raw):
		return Pricing, true
	case isGreeting(words):
		return Greeting, true
	case containsAny(words, thanksPhrases):
		return Thanks, true
	case containsAny(words, goodbyePhrases):
		return Goodbye, true
	case containsAny(words, contactPhrases):
		return Contact, true
	}
	return "", false
}

// isGreeting reports whether the question is a greeting phrase or starts with one.
func isGreeting(words []string) bool {
	for _, p := range greetingPhrases {
		if len(words) >= len(p) && equalWords(words[:len(p)], p) {
			return true
		}
	}
	return false
}

// containsAny reports whether any phrase occurs in words as whole words.
// The last word of a phrase may be inflected, see inflectionOf.
func containsAny(words []string, list [][]string) bool {
	for _, p := range list {
		for i := 0; i+len(p) <= len(words); i++ {
			if equalWords(words[i:i+len(p)-1], p[:len(p)-1]) && inflectionOf(words[i+len(p)-1], p[len(p)-1]) {
				return true
			}
		}
	}
	return false
}

// minInflectedStem keeps short stems strict, so "plan" does not match "planning".
const minInflectedStem = 5

// inflectionOf reports whether word is stem or a plural of it. Stems of at least
// minInflectedStem letters also take "ed", "d" and "ing" endings ("contacting",
// "emailed", "estimated"), dropping a final "e" before "ing".
func inflectionOf(word, stem string) bool {
	if word == stem || word == stem+"s" {
		return true
	}
	if len(stem) < minInflectedStem || !strings.HasPrefix(word, strings.TrimSuffix(stem, "e")) {
		return false
	}
	switch word {
	case stem + "es", stem + "ed", stem + "ing":
		return true
	}
	if strings.HasSuffix(stem, "e") {
		return word == stem+"d" || word == strings.TrimSuffix(stem, "e")+"ing"
	}
	return false
}

func equalWords(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
