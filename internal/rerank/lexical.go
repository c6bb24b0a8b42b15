// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rerank

import (
	"context"
	"strings"
	"unicode"
)

// LexicalScorer is the in-process pairwise scorer: a blend of token-set
// overlap and normalized token-sequence edit distance. Deterministic and
// cheap; the default when no hosted re-ranker is configured.
type LexicalScorer struct{}

// Name returns the backend identifier.
func (s *LexicalScorer) Name() string { return "lexical" }

// Rerank scores each doc against the query.
func (s *LexicalScorer) Rerank(_ context.Context, query string, docs []string) ([]float64, error) {
	queryTokens := tokenize(query)
	scores := make([]float64, len(docs))
	for i, doc := range docs {
		scores[i] = pairScore(queryTokens, tokenize(doc))
	}
	return scores, nil
}

// pairScore blends set overlap with sequence similarity. The sequence half
// rewards preserved ordering, so shuffled copies score below verbatim ones.
func pairScore(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	return 0.5*setOverlap(a, b) + 0.5*(1.0-normalizedEditDistance(a, b))
}

// setOverlap is the Jaccard index over token sets.
func setOverlap(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}

	var inter int
	for t := range setA {
		if _, ok := setB[t]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// normalizedEditDistance is the Levenshtein distance over token sequences,
// scaled by the longer length.
func normalizedEditDistance(a, b []string) float64 {
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	if longer == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return float64(prev[len(b)]) / float64(longer)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// tokenize mirrors the segmenter's rules.
func tokenize(text string) []string {
	var (
		tokens []string
		b      strings.Builder
	)
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}
