// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fingerprint computes composite segment signatures: a dense
// embedding for semantic similarity plus a sparse shingle signature for
// near-exact copy detection. Signatures are cached by content hash so
// identical text never recomputes an embedding.
package fingerprint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"io"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/agesatony/AGs-plagcheck/pkg/types"
)

const defaultShingleSize = 3

// Fingerprinter fills segment signatures using a shared embedder and a
// process-wide content-addressed cache. Safe for concurrent use.
type Fingerprinter struct {
	embedder    Embedder
	shingleSize int

	mu    sync.RWMutex
	cache map[string]cached
}

type cached struct {
	embedding []float32
	shingles  []uint64
}

// New creates a Fingerprinter over the given embedder.
func New(embedder Embedder, cfg types.FingerprintConfig) *Fingerprinter {
	size := cfg.ShingleSize
	if size <= 0 {
		size = defaultShingleSize
	}
	return &Fingerprinter{
		embedder:    embedder,
		shingleSize: size,
		cache:       make(map[string]cached),
	}
}

// Embedder exposes the underlying embedder for direct queries.
func (f *Fingerprinter) Embedder() Embedder { return f.embedder }

// Apply computes and attaches both signatures for every segment in segs.
// Cached entries are reused; cache hits never touch the embedder.
func (f *Fingerprinter) Apply(ctx context.Context, segs []types.Segment) error {
	for i := range segs {
		key := contentKey(segs[i].Text)

		f.mu.RLock()
		c, ok := f.cache[key]
		f.mu.RUnlock()

		if !ok {
			vec, err := f.embedder.Embed(ctx, segs[i].Text)
			if err != nil {
				return fmt.Errorf("embedding segment %d: %w", i, err)
			}
			c = cached{
				embedding: vec,
				shingles:  Shingles(segs[i].Tokens, f.shingleSize),
			}
			f.mu.Lock()
			f.cache[key] = c
			f.mu.Unlock()
		}

		segs[i].Embedding = c.embedding
		segs[i].Shingles = c.shingles
	}
	return nil
}

// ShinglesOf is a convenience for computing the sparse signature of raw text
// outside a segment (external search excerpts, corpus rows).
func (f *Fingerprinter) ShinglesOf(text string) []uint64 {
	return Shingles(tokenizeLower(text), f.shingleSize)
}

// contentKey returns the SHA-256 hex of segment text.
func contentKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Shingles hashes each word n-gram of the token sequence and returns the
// sorted, deduplicated hash set. Sequences shorter than n hash as a single
// shingle so short segments still carry a signature.
func Shingles(tokens []string, n int) []uint64 {
	if len(tokens) == 0 {
		return nil
	}
	if len(tokens) < n {
		return []uint64{hashShingle(tokens)}
	}

	set := make(map[uint64]struct{}, len(tokens))
	for i := 0; i+n <= len(tokens); i++ {
		set[hashShingle(tokens[i:i+n])] = struct{}{}
	}

	out := make([]uint64, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func hashShingle(tokens []string) uint64 {
	h := fnv.New64a()
	for i, t := range tokens {
		if i > 0 {
			io.WriteString(h, " ")
		}
		io.WriteString(h, t)
	}
	return h.Sum64()
}

// Jaccard returns the overlap of two sorted shingle sets in [0,1].
func Jaccard(a, b []uint64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var i, j, inter int
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			inter++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// tokenizeLower mirrors the segmenter's token rules for texts that arrive
// outside a Segment.
func tokenizeLower(text string) []string {
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
