// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aiscore

import (
	"context"
	"math"
)

// BigramModel is the in-process language model: an interpolated bigram model
// with add-one smoothing, fitted to the sequence being scored. Repetitive,
// formulaic prose yields low per-token surprise; varied prose yields high
// surprise. Deterministic and dependency-free, it is the default when no
// hosted model is configured.
type BigramModel struct {
	// BigramWeight interpolates between bigram and unigram estimates.
	// Zero uses the default 0.7.
	BigramWeight float64
}

// Name returns the backend identifier.
func (m *BigramModel) Name() string { return "bigram" }

// LogProbs fits counts to the token sequence and returns per-token log
// probabilities. The first token is scored by its unigram estimate alone.
func (m *BigramModel) LogProbs(_ context.Context, tokens []string) ([]float64, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	weight := m.BigramWeight
	if weight <= 0 || weight >= 1 {
		weight = 0.7
	}

	unigrams := make(map[string]int, len(tokens))
	bigrams := make(map[[2]string]int, len(tokens))
	for i, tok := range tokens {
		unigrams[tok]++
		if i > 0 {
			bigrams[[2]string{tokens[i-1], tok}]++
		}
	}
	vocab := float64(len(unigrams))
	total := float64(len(tokens))

	logProbs := make([]float64, len(tokens))
	for i, tok := range tokens {
		uni := (float64(unigrams[tok]) + 1) / (total + vocab)
		if i == 0 {
			logProbs[i] = math.Log(uni)
			continue
		}
		prev := tokens[i-1]
		bi := (float64(bigrams[[2]string{prev, tok}]) + 1) / (float64(unigrams[prev]) + vocab)
		logProbs[i] = math.Log(weight*bi + (1-weight)*uni)
	}
	return logProbs, nil
}
