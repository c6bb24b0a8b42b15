// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rerank

import (
	"context"
	"fmt"
	"net/http"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"github.com/agesatony/AGs-plagcheck/pkg/types"
)

const defaultCohereRerankModel = "rerank-english-v3.0"

// CohereScorer calls the Cohere Rerank API, a hosted cross-encoder.
type CohereScorer struct {
	client *cohereclient.Client
	model  string
}

// NewCohereScorer builds the Cohere scorer. A missing API key is a
// configuration error surfaced at startup.
func NewCohereScorer(cfg types.RerankConfig) (*CohereScorer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cohere rerank backend requires an API key")
	}
	model := cfg.Model
	if model == "" {
		model = defaultCohereRerankModel
	}
	client := cohereclient.NewClient(
		cohereclient.WithToken(cfg.APIKey),
		cohereclient.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)
	return &CohereScorer{client: client, model: model}, nil
}

// Name returns the backend identifier.
func (s *CohereScorer) Name() string { return "cohere" }

// Rerank scores docs against the query, preserving input order.
func (s *CohereScorer) Rerank(ctx context.Context, query string, docs []string) ([]float64, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	resp, err := s.client.V2.Rerank(ctx, &cohere.V2RerankRequest{
		Model:     s.model,
		Query:     query,
		Documents: docs,
	})
	if err != nil {
		return nil, fmt.Errorf("cohere rerank: %w", err)
	}

	scores := make([]float64, len(docs))
	for _, r := range resp.Results {
		if r.Index < 0 || r.Index >= len(docs) {
			return nil, fmt.Errorf("cohere rerank returned index %d for %d docs", r.Index, len(docs))
		}
		scores[r.Index] = r.RelevanceScore
	}
	return scores, nil
}
