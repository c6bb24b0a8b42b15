// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "plagcheck/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ExtractConfig holds settings for the extraction stage.
type ExtractConfig struct {
	// MinChars is the minimum normalized text length. Shorter submissions
	// are rejected before scoring (default 200).
	MinChars int `json:"min_chars" yaml:"min_chars"`
}

// SegmentConfig holds settings for the segmentation stage.
type SegmentConfig struct {
	// MinTokens is the minimum token count for a standalone sentence.
	// Shorter sentences merge with a neighbor (default 5).
	MinTokens int `json:"min_tokens" yaml:"min_tokens"`
}

// EmbedBackend identifies the dense-embedding implementation.
type EmbedBackend string

const (
	// EmbedHash is the deterministic in-process feature-hashing embedder.
	EmbedHash EmbedBackend = "hash"
	// EmbedOllama calls an Ollama-compatible HTTP embeddings endpoint.
	EmbedOllama EmbedBackend = "ollama"
	// EmbedCohere calls the Cohere Embed API.
	EmbedCohere EmbedBackend = "cohere"
)

// FingerprintConfig holds settings for the fingerprinting stage.
type FingerprintConfig struct {
	// Backend selects the embedder: hash, ollama, or cohere.
	Backend EmbedBackend `json:"backend" yaml:"backend"`

	// BaseURL is the endpoint for the ollama backend (default http://localhost:11434).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Model names the embedding model for remote backends.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// APIKey authenticates the cohere backend.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Dimensions is the embedding vector size (default 256 for hash).
	Dimensions int `json:"dimensions" yaml:"dimensions"`

	// ShingleSize is the word n-gram width of the sparse signature (default 3).
	ShingleSize int `json:"shingle_size" yaml:"shingle_size"`
}

// CorpusConfig holds settings for the corpus store.
type CorpusConfig struct {
	// Dir is the base directory for the corpus (contains index/).
	Dir string `json:"dir" yaml:"dir"`
}

// MatchConfig holds settings for the coarse similarity matcher.
type MatchConfig struct {
	// TopK is the number of nearest corpus segments retrieved per query
	// segment (default 5).
	TopK int `json:"top_k" yaml:"top_k"`

	// CoarseFloor drops candidates below this coarse score (default 0.35).
	CoarseFloor float64 `json:"coarse_floor" yaml:"coarse_floor"`

	// EnableGlobal extends the candidate pool with external search results.
	// External calls are best-effort and never fail the run.
	EnableGlobal bool `json:"enable_global" yaml:"enable_global"`
}

// SearchConfig holds settings for external search providers.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Endpoint is the external search API URL.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// APIKey authenticates the external search API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxResults caps results per provider call (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// RerankBackend identifies the pairwise re-ranking implementation.
type RerankBackend string

const (
	// RerankLexical is the deterministic in-process lexical scorer.
	RerankLexical RerankBackend = "lexical"
	// RerankCohere calls the Cohere Rerank API.
	RerankCohere RerankBackend = "cohere"
)

// RerankConfig holds settings for the re-ranking stage.
type RerankConfig struct {
	// Backend selects the scorer: lexical or cohere.
	Backend RerankBackend `json:"backend" yaml:"backend"`

	// Model names the rerank model for the cohere backend.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// APIKey authenticates the cohere backend.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// TopN bounds how many coarse candidates per segment are re-ranked
	// (default 3).
	TopN int `json:"top_n" yaml:"top_n"`

	// MatchThreshold is the minimum refined score for a segment to count
	// as matched in aggregation (default 0.55).
	MatchThreshold float64 `json:"match_threshold" yaml:"match_threshold"`
}

// AIScoreConfig holds settings for the AI-likelihood scorer.
type AIScoreConfig struct {
	// WindowTokens is the model context window; longer documents are
	// chunked (default 512).
	WindowTokens int `json:"window_tokens" yaml:"window_tokens"`

	// OverlapTokens is the chunk overlap (default 64).
	OverlapTokens int `json:"overlap_tokens" yaml:"overlap_tokens"`

	// Steepness and Midpoint parameterize the logistic mapping from mean
	// negative log-probability to the 0-100 likelihood scale. The mapping
	// is versioned by ReportSchemaVersion.
	Steepness float64 `json:"steepness" yaml:"steepness"`
	Midpoint  float64 `json:"midpoint" yaml:"midpoint"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	// Workers bounds how many documents are scored concurrently (default 4).
	Workers int `json:"workers" yaml:"workers"`

	// ReportsDir is where exported reports are written (default "reports").
	ReportsDir string `json:"reports_dir" yaml:"reports_dir"`

	Extract     ExtractConfig     `json:"extract" yaml:"extract"`
	Segment     SegmentConfig     `json:"segment" yaml:"segment"`
	Fingerprint FingerprintConfig `json:"fingerprint" yaml:"fingerprint"`
	Corpus      CorpusConfig      `json:"corpus" yaml:"corpus"`
	Match       MatchConfig       `json:"match" yaml:"match"`
	Search      SearchConfig      `json:"search" yaml:"search"`
	Rerank      RerankConfig      `json:"rerank" yaml:"rerank"`
	AIScore     AIScoreConfig     `json:"ai_score" yaml:"ai_score"`
}

// Defaults returns a PipelineConfig with all tunables at their defaults.
func Defaults() PipelineConfig {
	return PipelineConfig{
		Workers:    4,
		ReportsDir: "reports",
		Extract:    ExtractConfig{MinChars: 200},
		Segment:    SegmentConfig{MinTokens: 5},
		Fingerprint: FingerprintConfig{
			Backend:     EmbedHash,
			Dimensions:  256,
			ShingleSize: 3,
		},
		Corpus: CorpusConfig{Dir: "corpus"},
		Match:  MatchConfig{TopK: 5, CoarseFloor: 0.35},
		Search: SearchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   10 * time.Second,
				UserAgent: "plagcheck/0.1",
			},
			MaxResults: 10,
		},
		Rerank: RerankConfig{
			Backend:        RerankLexical,
			TopN:           3,
			MatchThreshold: 0.55,
		},
		AIScore: AIScoreConfig{
			WindowTokens:  512,
			OverlapTokens: 64,
			Steepness:     1.0,
			Midpoint:      5.0,
		},
	}
}
