// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fingerprint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/agesatony/AGs-plagcheck/pkg/types"
)

// Embedder produces a dense vector for a span of text. Vectors from one
// embedder share a cosine space and are L2-normalized. Implementations are
// loaded once per process and shared read-only across concurrent runs.
type Embedder interface {
	Name() string
	Dimensions() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NewEmbedder constructs the configured embedder and verifies it is usable.
// A backend that fails its health check is reported as ErrModelUnavailable;
// this is fatal at process start, not per document.
func NewEmbedder(cfg types.FingerprintConfig) (Embedder, error) {
	switch cfg.Backend {
	case types.EmbedHash, "":
		dims := cfg.Dimensions
		if dims <= 0 {
			dims = defaultHashDimensions
		}
		return &HashEmbedder{dims: dims}, nil

	case types.EmbedOllama:
		e := NewOllamaEmbedder(cfg)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Ping(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrModelUnavailable, err)
		}
		return e, nil

	case types.EmbedCohere:
		e, err := NewCohereEmbedder(cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrModelUnavailable, err)
		}
		return e, nil

	default:
		return nil, fmt.Errorf("%w: unknown embed backend %q", types.ErrModelUnavailable, cfg.Backend)
	}
}

// --- hash embedder ---

const defaultHashDimensions = 256

// HashEmbedder is the in-process fallback: a signed feature-hashing embedding
// over word unigrams and character trigrams. Deterministic, no network, no
// model weights. Coarser than a learned embedding but preserves the cosine
// contract the matcher needs.
type HashEmbedder struct {
	dims int
}

// Name returns the backend identifier.
func (e *HashEmbedder) Name() string { return "hash" }

// Dimensions returns the fixed vector size.
func (e *HashEmbedder) Dimensions() int { return e.dims }

// Embed hashes features of text into a signed bag-of-features vector and
// L2-normalizes it.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dims)

	for _, f := range hashFeatures(text) {
		h := fnv.New64a()
		io.WriteString(h, f)
		sum := h.Sum64()
		bucket := int(sum % uint64(e.dims))
		// One hash bit decides the sign, spreading collisions.
		if sum&(1<<63) != 0 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}

	normalize(vec)
	return vec, nil
}

// hashFeatures returns word unigrams plus character trigrams.
func hashFeatures(text string) []string {
	tokens := tokenizeLower(text)
	features := make([]string, 0, len(tokens)*4)
	for _, tok := range tokens {
		features = append(features, "w:"+tok)
		runes := []rune(tok)
		for i := 0; i+3 <= len(runes); i++ {
			features = append(features, "c:"+string(runes[i:i+3]))
		}
	}
	return features
}

// normalize scales vec to unit length in place. Zero vectors stay zero.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := 1.0 / math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) * inv)
	}
}

// Cosine returns the cosine similarity of two L2-normalized vectors.
// Mismatched lengths score zero.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// --- ollama-style HTTP embedder ---

const (
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "nomic-embed-text"
	defaultOllamaDims    = 768
)

// OllamaEmbedder calls an Ollama-compatible /api/embeddings endpoint.
type OllamaEmbedder struct {
	client  *http.Client
	baseURL string
	model   string
	dims    int
}

// NewOllamaEmbedder builds the HTTP embedder from config, applying defaults.
func NewOllamaEmbedder(cfg types.FingerprintConfig) *OllamaEmbedder {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = defaultOllamaDims
	}
	return &OllamaEmbedder{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		model:   model,
		dims:    dims,
	}
}

// Name returns the backend identifier.
func (e *OllamaEmbedder) Name() string { return "ollama" }

// Dimensions returns the configured vector size.
func (e *OllamaEmbedder) Dimensions() int { return e.dims }

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed requests an embedding and L2-normalizes the result.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding endpoint returned HTTP %d", resp.StatusCode)
	}

	var er ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("parsing embed response: %w", err)
	}

	vec := make([]float32, len(er.Embedding))
	for i, v := range er.Embedding {
		vec[i] = float32(v)
	}
	normalize(vec)
	return vec, nil
}

// Ping checks connectivity without running inference.
func (e *OllamaEmbedder) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("creating ping request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("pinging embedding endpoint: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("embedding endpoint returned HTTP %d", resp.StatusCode)
	}
	return nil
}
