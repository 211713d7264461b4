package knowledge

import (
	"strings"
	"unicode"
)

// Stop words removed during tokenization. This is a closed list; tokens are
// matched after lowercasing. "ns" shows up in catalog headers as a
// not-specified marker.
var stopWords = map[string]struct{}{
	"with": {}, "and": {}, "of": {}, "ns": {}, "the": {},
	"a": {}, "an": {}, "or": {}, "in": {}, "to": {}, "for": {},
	"on": {}, "as": {}, "is": {}, "from": {},
}

// Stemming exceptions for irregular plurals the suffix rules would mangle.
var stemExceptions = map[string]string{
	"fries":        "fry",
	"berries":      "berry",
	"tomatoes":     "tomato",
	"potatoes":     "potato",
	"cherries":     "cherry",
	"strawberries": "strawberry",
	"blueberries":  "blueberry",
	"raspberries":  "raspberry",
	"cookies":      "cookie",
	"leaves":       "leaf",
	"loaves":       "loaf",
	"olives":       "olive",
	"anchovies":    "anchovy",
}

// Exclusion keywords: tokens following any of these in an item name are
// stripped from the search-token set, so "chicken salad without tomato" does
// not index "tomato".
var exclusionKeywords = map[string]struct{}{
	"without": {}, "excluding": {}, "no": {}, "except": {},
}

// NormalizeKey lowercases, collapses dashes and underscores to spaces, and
// trims surrounding whitespace.
func NormalizeKey(raw string) string {
	s := strings.ToLower(raw)
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

// NormalizeNutrientKey lowercases and strips every separator and whitespace
// character. This aggressive form makes dictionary lookups
// separator-insensitive: "vitamin-c", "vitamin_c" and "Vitamin C" all
// normalize to "vitaminc".
func NormalizeNutrientKey(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToLower(raw) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitWords lowercases and splits on non-alphanumeric boundaries, keeping
// word order. Used by both tokenization and phrase matching.
func splitWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// stemToken applies the stemming-exception table for irregular plurals.
// Regular words pass through unchanged.
func stemToken(word string) string {
	if stemmed, ok := stemExceptions[word]; ok {
		return stemmed
	}
	return word
}

// MakeTokens turns free text into a normalized token set: lowercased, split
// on non-alphanumeric boundaries, stop words removed, irregular plurals
// stemmed. Order is irrelevant and duplicates collapse.
func MakeTokens(from string) map[string]struct{} {
	words := splitWords(from)
	tokens := make(map[string]struct{}, len(words))
	for _, word := range words {
		if _, stop := stopWords[word]; stop {
			continue
		}
		tokens[stemToken(word)] = struct{}{}
	}
	return tokens
}

// MakeNameTokens builds the search-token set for an item name, stripping
// every token that follows an exclusion keyword anywhere in the name.
func MakeNameTokens(name string) map[string]struct{} {
	words := splitWords(name)
	tokens := make(map[string]struct{}, len(words))
	excluding := false
	excluded := make(map[string]struct{})
	for _, word := range words {
		if _, ok := exclusionKeywords[word]; ok {
			excluding = true
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		stemmed := stemToken(word)
		if excluding {
			excluded[stemmed] = struct{}{}
			continue
		}
		tokens[stemmed] = struct{}{}
	}
	// A token mentioned both before and after the exclusion keyword stays
	// excluded.
	for token := range excluded {
		delete(tokens, token)
	}
	return tokens
}

// ExcludedNameTokens returns the tokens that follow an exclusion keyword in
// the name. Callers that start from a precomputed token set use this to
// strip exclusions the same way MakeNameTokens does.
func ExcludedNameTokens(name string) map[string]struct{} {
	words := splitWords(name)
	excluded := make(map[string]struct{})
	excluding := false
	for _, word := range words {
		if _, ok := exclusionKeywords[word]; ok {
			excluding = true
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if excluding {
			excluded[stemToken(word)] = struct{}{}
		}
	}
	return excluded
}

// IsExclusionKeyword reports whether the word starts an exclusion phrase.
func IsExclusionKeyword(word string) bool {
	_, ok := exclusionKeywords[strings.ToLower(word)]
	return ok
}

// IsStopWord reports whether the word is on the stop list.
func IsStopWord(word string) bool {
	_, ok := stopWords[strings.ToLower(word)]
	return ok
}
