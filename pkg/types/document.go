// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DocumentStatus tracks a document's position in the scoring pipeline.
// Transitions are linear; failed is terminal.
type DocumentStatus string

const (
	StatusPending       DocumentStatus = "pending"
	StatusExtracted     DocumentStatus = "extracted"
	StatusSegmented     DocumentStatus = "segmented"
	StatusFingerprinted DocumentStatus = "fingerprinted"
	StatusMatched       DocumentStatus = "matched"
	StatusScored        DocumentStatus = "scored"
	StatusFailed        DocumentStatus = "failed"
)

// statusOrder defines the only legal forward transitions.
var statusOrder = map[DocumentStatus]DocumentStatus{
	StatusPending:       StatusExtracted,
	StatusExtracted:     StatusSegmented,
	StatusSegmented:     StatusFingerprinted,
	StatusFingerprinted: StatusMatched,
	StatusMatched:       StatusScored,
}

// FailureClass names the error taxonomy entry attached to a failed document.
type FailureClass string

const (
	FailUnsupportedFormat FailureClass = "unsupported_format"
	FailCorruptDocument   FailureClass = "corrupt_document"
	FailTooShort          FailureClass = "too_short"
	FailModelUnavailable  FailureClass = "model_unavailable"
	FailCorpusUnavailable FailureClass = "corpus_unavailable"
	FailInternal          FailureClass = "internal"
)

// Document is one uploaded submission moving through the pipeline.
type Document struct {
	// ID is a generated identifier for this submission.
	ID string `json:"id" yaml:"id"`

	// Owner is the already-verified owner identifier supplied by the caller.
	// The engine never authenticates; it trusts this value.
	Owner string `json:"owner" yaml:"owner"`

	// Filename is the declared upload filename; its extension selects the extractor.
	Filename string `json:"filename" yaml:"filename"`

	// Checksum is the SHA-256 of the raw uploaded bytes.
	Checksum string `json:"checksum" yaml:"checksum"`

	// Text is the normalized extracted text. Immutable once set.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// Status is the current pipeline stage.
	Status DocumentStatus `json:"status" yaml:"status"`

	// Failure carries the taxonomy entry when Status is failed.
	Failure FailureClass `json:"failure,omitempty" yaml:"failure,omitempty"`

	// UploadedAt is the submission time.
	UploadedAt time.Time `json:"uploaded_at" yaml:"uploaded_at"`
}

// NewDocument creates a pending document for raw upload bytes.
func NewDocument(owner, filename string, raw []byte) *Document {
	sum := sha256.Sum256(raw)
	return &Document{
		ID:         uuid.NewString(),
		Owner:      owner,
		Filename:   filename,
		Checksum:   hex.EncodeToString(sum[:]),
		Status:     StatusPending,
		UploadedAt: time.Now().UTC(),
	}
}

// Advance moves the document to the next stage. Only the single legal
// forward transition is accepted; anything else is a programming error.
func (d *Document) Advance(next DocumentStatus) error {
	if d.Status == StatusFailed {
		return fmt.Errorf("document %s already failed (%s)", d.ID, d.Failure)
	}
	if statusOrder[d.Status] != next {
		return fmt.Errorf("illegal transition %s -> %s for document %s", d.Status, next, d.ID)
	}
	d.Status = next
	return nil
}

// Fail marks the document failed with a taxonomy entry. Failed is terminal.
func (d *Document) Fail(class FailureClass) {
	d.Status = StatusFailed
	d.Failure = class
}

// Segment is one sentence-level comparison unit, owned by its document.
type Segment struct {
	// Index is the stable ordered position within the document.
	Index int `json:"index" yaml:"index"`

	// Text is the segment's span of normalized text.
	Text string `json:"text" yaml:"text"`

	// Tokens is the lowercased token sequence of Text.
	Tokens []string `json:"-" yaml:"-"`

	// TokenCount is len(Tokens), persisted for weighting.
	TokenCount int `json:"token_count" yaml:"token_count"`

	// Embedding is the dense vector signature (L2-normalized, cosine space).
	// Populated by the fingerprinter.
	Embedding []float32 `json:"-" yaml:"-"`

	// Shingles is the sparse lexical signature: sorted hashes of word n-grams.
	// Populated by the fingerprinter.
	Shingles []uint64 `json:"-" yaml:"-"`
}

// MatchCandidate pairs a query segment with a corpus segment and its scores.
// Candidates are ephemeral; only reported winners outlive a scoring run.
type MatchCandidate struct {
	// SegmentIndex refers to the query document's segment.
	SegmentIndex int

	// EntryID identifies the corpus entry the candidate text belongs to.
	EntryID string

	// EntryTitle is the corpus entry's display title.
	EntryTitle string

	// SourceURL is set for candidates found through external search.
	SourceURL string

	// EntryCreatedAt orders entries for deterministic tie-breaking.
	EntryCreatedAt time.Time

	// Text is the matched corpus segment text.
	Text string

	// Coarse is the fast embedding/shingle similarity in [0,1].
	Coarse float64

	// Refined is the re-ranked pairwise score in [0,1]. Candidates that were
	// not re-ranked keep their coarse score here.
	Refined float64
}
