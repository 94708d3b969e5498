// internal/matching/text.go
package matching

import (
	"math"
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"and": {}, "the": {}, "for": {}, "with": {}, "from": {}, "that": {}, "this": {},
	"are": {}, "our": {}, "you": {}, "all": {}, "per": {}, "any": {}, "into": {},
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if len(f) < 3 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func termFrequencies(texts ...string) map[string]float64 {
	tf := make(map[string]float64)
	for _, t := range texts {
		for _, tok := range tokenize(t) {
			tf[tok]++
		}
	}
	return tf
}

func cosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for term, wa := range a {
		normA += wa * wa
		if wb, ok := b[term]; ok {
			dot += wa * wb
		}
	}
	for _, wb := range b {
		normB += wb * wb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func normalizedSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if n := normalize(v); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}
