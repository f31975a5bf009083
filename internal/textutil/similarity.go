package textutil

import (
	"math"
	"regexp"
	"strings"
)

var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Tokenize splits text into lowercase tokens, filtering short tokens.
func Tokenize(text string) []string {
	raw := tokenSplitPattern.Split(strings.ToLower(text), -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if len(token) < 3 {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

func vector(text string) (map[string]float64, float64) {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil, 0
	}
	counts := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	var norm float64
	for _, count := range counts {
		norm += count * count
	}
	return counts, math.Sqrt(norm)
}

// TitleSimilarity returns the cosine similarity of two titles in [0, 1].
// Titles with no usable tokens score 0 against everything.
func TitleSimilarity(a, b string) float64 {
	va, na := vector(a)
	vb, nb := vector(b)
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for token, count := range va {
		dot += count * vb[token]
	}
	return dot / (na * nb)
}
