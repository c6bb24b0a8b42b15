// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aiscore estimates how predictable a document's token sequence is
// under a language model, as a proxy signal for machine generation. The mean
// negative log-probability maps onto a 0-100 likelihood scale through a
// fixed, versioned monotonic function.
package aiscore

import (
	"context"
	"fmt"
	"math"

	"github.com/agesatony/AGs-plagcheck/pkg/types"
)

// LanguageModel assigns a log-probability to every token in a sequence.
// Implementations are shared read-only across concurrent runs.
type LanguageModel interface {
	Name() string
	LogProbs(ctx context.Context, tokens []string) ([]float64, error)
}

const (
	defaultWindowTokens  = 512
	defaultOverlapTokens = 64
	defaultSteepness     = 1.0
	defaultMidpoint      = 5.0
)

// ScoreDocument computes the document-level AI likelihood for a token
// stream. Sequences longer than the model window are chunked with overlap;
// chunk scores combine by token-weighted mean before mapping.
func ScoreDocument(ctx context.Context, lm LanguageModel, tokens []string, cfg types.AIScoreConfig) (float64, error) {
	if len(tokens) == 0 {
		return 0, fmt.Errorf("no tokens to score")
	}

	window := cfg.WindowTokens
	if window <= 0 {
		window = defaultWindowTokens
	}
	overlap := cfg.OverlapTokens
	if overlap < 0 {
		overlap = defaultOverlapTokens
	}
	// The overlap must leave a positive step even for small windows.
	if overlap >= window {
		overlap = window / 8
	}

	var (
		weightedNLL float64
		totalTokens int
	)
	for _, chunk := range chunks(tokens, window, overlap) {
		logProbs, err := lm.LogProbs(ctx, chunk)
		if err != nil {
			return 0, fmt.Errorf("scoring chunk: %w", err)
		}
		if len(logProbs) == 0 {
			continue
		}
		var nll float64
		for _, lp := range logProbs {
			nll -= lp
		}
		weightedNLL += nll
		totalTokens += len(logProbs)
	}
	if totalTokens == 0 {
		return 0, fmt.Errorf("model returned no token scores")
	}

	return Likelihood(weightedNLL/float64(totalTokens), cfg), nil
}

// Likelihood maps mean negative log-probability to the 0-100 scale with a
// logistic curve, strictly decreasing in meanNLL: the more predictable the
// sequence, the higher the likelihood. The mapping is versioned by
// types.ReportSchemaVersion; changing the defaults bumps it.
func Likelihood(meanNLL float64, cfg types.AIScoreConfig) float64 {
	steepness := cfg.Steepness
	if steepness <= 0 {
		steepness = defaultSteepness
	}
	midpoint := cfg.Midpoint
	if midpoint <= 0 {
		midpoint = defaultMidpoint
	}
	return 100.0 / (1.0 + math.Exp(steepness*(meanNLL-midpoint)))
}

// chunks slices tokens into windows with the given overlap.
func chunks(tokens []string, window, overlap int) [][]string {
	if len(tokens) <= window {
		return [][]string{tokens}
	}
	step := window - overlap
	if step <= 0 {
		step = window
	}
	var out [][]string
	for start := 0; start < len(tokens); start += step {
		end := start + window
		if end > len(tokens) {
			end = len(tokens)
		}
		out = append(out, tokens[start:end])
		if end == len(tokens) {
			break
		}
	}
	return out
}
