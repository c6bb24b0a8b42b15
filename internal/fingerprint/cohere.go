// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fingerprint

import (
	"context"
	"fmt"
	"net/http"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"github.com/agesatony/AGs-plagcheck/pkg/types"
)

const (
	defaultCohereModel = "embed-english-v3.0"
	defaultCohereDims  = 1024
)

// CohereEmbedder calls the Cohere Embed API.
type CohereEmbedder struct {
	client *cohereclient.Client
	model  string
	dims   int
}

// NewCohereEmbedder builds the Cohere embedder. A missing API key is a
// configuration error surfaced at startup.
func NewCohereEmbedder(cfg types.FingerprintConfig) (*CohereEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cohere embed backend requires an API key")
	}
	model := cfg.Model
	if model == "" {
		model = defaultCohereModel
	}
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = defaultCohereDims
	}

	client := cohereclient.NewClient(
		cohereclient.WithToken(cfg.APIKey),
		cohereclient.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)
	return &CohereEmbedder{client: client, model: model, dims: dims}, nil
}

// Name returns the backend identifier.
func (e *CohereEmbedder) Name() string { return "cohere" }

// Dimensions returns the model's vector size.
func (e *CohereEmbedder) Dimensions() int { return e.dims }

// Embed requests a single embedding and L2-normalizes it.
func (e *CohereEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.V2.Embed(ctx, &cohere.V2EmbedRequest{
		Texts:          []string{text},
		Model:          e.model,
		InputType:      cohere.EmbedInputTypeSearchDocument,
		EmbeddingTypes: []cohere.EmbeddingType{cohere.EmbeddingTypeFloat},
	})
	if err != nil {
		return nil, fmt.Errorf("cohere embed: %w", err)
	}
	if resp == nil || resp.Embeddings == nil || len(resp.Embeddings.Float) == 0 {
		return nil, fmt.Errorf("cohere embed returned no embeddings")
	}

	raw := resp.Embeddings.Float[0]
	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v)
	}
	normalize(vec)
	return vec, nil
}
