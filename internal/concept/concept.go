// Package concept extracts salient keywords from free text for indexing
// and relationship inference. Extraction is a pure function of its input.
package concept

import (
	"sort"
	"strings"
	"unicode"
)

// MaxConcepts caps how many concepts a single text contributes to the index.
const MaxConcepts = 12

// MinTokenLen is the shortest token considered a concept.
const MinTokenLen = 3

var stopWords = map[string]bool{
	"the": true, "and": true, "but": true, "for": true, "with": true,
	"this": true, "that": true, "these": true, "those": true, "are": true,
	"was": true, "were": true, "been": true, "being": true, "have": true,
	"has": true, "had": true, "not": true, "you": true, "your": true,
	"from": true, "into": true, "out": true, "all": true, "can": true,
	"will": true, "would": true, "should": true, "could": true, "its": true,
	"when": true, "where": true, "which": true, "what": true, "how": true,
	"than": true, "then": true, "there": true, "here": true, "also": true,
	"more": true, "most": true, "some": true, "any": true, "very": true,
	"use": true, "used": true, "using": true, "our": true, "they": true,
	"them": true, "their": true, "about": true, "each": true, "other": true,
}

// Extract returns up to MaxConcepts normalized keywords for text, ranked by
// in-text frequency. Ties keep first-occurrence order so extraction is
// deterministic for identical input.
func Extract(text string) []string {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	freq := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if freq[tok] == 0 {
			order = append(order, tok)
		}
		freq[tok]++
	}

	// order already lists tokens by first occurrence; a stable sort on
	// frequency keeps that order for ties.
	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})

	if len(order) > MaxConcepts {
		order = order[:MaxConcepts]
	}
	return order
}

// Overlap reports how many query concepts appear in entry concepts and the
// fraction of the query that matched.
func Overlap(query, entry []string) (shared int, fraction float64) {
	if len(query) == 0 {
		return 0, 0
	}
	set := make(map[string]bool, len(entry))
	for _, c := range entry {
		set[c] = true
	}
	for _, c := range query {
		if set[c] {
			shared++
		}
	}
	return shared, float64(shared) / float64(len(query))
}

func tokenize(text string) []string {
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		tok := b.String()
		b.Reset()
		if len([]rune(tok)) < MinTokenLen || stopWords[tok] {
			return
		}
		tokens = append(tokens, tok)
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()
	return tokens
}
