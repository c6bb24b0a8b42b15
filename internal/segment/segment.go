// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package segment splits normalized text into the sentence-level units the
// matcher compares. Splitting is fully deterministic: identical input always
// yields an identical segment sequence.
package segment

import (
	"strings"
	"unicode"

	"github.com/agesatony/AGs-plagcheck/pkg/types"
)

// defaultMinTokens applies when the config leaves MinTokens unset.
const defaultMinTokens = 5

// abbreviations that end with a period but do not end a sentence.
var abbreviations = map[string]bool{
	"dr": true, "mr": true, "mrs": true, "ms": true, "prof": true,
	"st": true, "vs": true, "etc": true, "fig": true, "eq": true,
	"al": true, "jr": true, "sr": true, "no": true, "vol": true,
}

// Split divides normalized text into ordered Segments. Sentences shorter
// than MinTokens merge with the preceding sentence (or the following one
// when they open the document) to avoid spurious fragment matches.
func Split(text string, cfg types.SegmentConfig) []types.Segment {
	minTokens := cfg.MinTokens
	if minTokens <= 0 {
		minTokens = defaultMinTokens
	}

	sentences := splitSentences(text)
	sentences = mergeShort(sentences, minTokens)

	segments := make([]types.Segment, 0, len(sentences))
	for i, s := range sentences {
		tokens := Tokenize(s)
		if len(tokens) == 0 {
			continue
		}
		segments = append(segments, types.Segment{
			Index:      i,
			Text:       s,
			Tokens:     tokens,
			TokenCount: len(tokens),
		})
	}

	// Reindex after dropping any empty sentences.
	for i := range segments {
		segments[i].Index = i
	}
	return segments
}

// Tokenize lowercases text and splits it into letter/digit runs.
func Tokenize(text string) []string {
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

// splitSentences breaks text on terminal punctuation, guarding common
// abbreviations and decimal numbers.
func splitSentences(text string) []string {
	var (
		sentences []string
		runes     = []rune(text)
		start     = 0
	)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if r == '.' && !isBoundary(runes, i) {
			continue
		}

		// Consume trailing closers: quotes, parens, repeated punctuation.
		end := i + 1
		for end < len(runes) && (runes[end] == '.' || runes[end] == '!' ||
			runes[end] == '?' || runes[end] == '"' || runes[end] == '\'' ||
			runes[end] == ')') {
			end++
		}

		s := strings.TrimSpace(string(runes[start:end]))
		if s != "" {
			sentences = append(sentences, s)
		}
		start = end
		i = end - 1
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// isBoundary reports whether the period at runes[i] ends a sentence.
func isBoundary(runes []rune, i int) bool {
	// Decimal number: digit on both sides.
	if i > 0 && i+1 < len(runes) &&
		unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
		return false
	}

	// Abbreviation: the word before the period is in the known set.
	wordStart := i
	for wordStart > 0 && (unicode.IsLetter(runes[wordStart-1])) {
		wordStart--
	}
	word := strings.ToLower(string(runes[wordStart:i]))
	if abbreviations[word] {
		return false
	}

	// Initials like "J. K." — a single letter before the period.
	if len(word) == 1 {
		return false
	}

	return true
}

// mergeShort folds sentences under minTokens into a neighbor.
func mergeShort(sentences []string, minTokens int) []string {
	var merged []string
	for _, s := range sentences {
		if len(merged) > 0 && len(Tokenize(s)) < minTokens {
			merged[len(merged)-1] = merged[len(merged)-1] + " " + s
			continue
		}
		merged = append(merged, s)
	}

	// A short opening sentence could not merge backward; fold it forward.
	if len(merged) >= 2 && len(Tokenize(merged[0])) < minTokens {
		merged[1] = merged[0] + " " + merged[1]
		merged = merged[1:]
	}
	return merged
}
