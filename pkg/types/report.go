// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ReportSchemaVersion marks the aggregation formula and AI-likelihood mapping
// in effect when a report was produced. Any change to either bumps this.
const ReportSchemaVersion = 1

// ReportMatch is one surfaced match in a report.
type ReportMatch struct {
	// SegmentIndex is the query segment the match belongs to.
	SegmentIndex int `json:"segment_index" yaml:"segment_index"`

	// EntryID identifies the matched corpus entry.
	EntryID string `json:"entry_id" yaml:"entry_id"`

	// Title is the matched entry's title.
	Title string `json:"title" yaml:"title"`

	// SourceURL is set when the match came from external search.
	SourceURL string `json:"source_url,omitempty" yaml:"source_url,omitempty"`

	// Score is the refined pairwise similarity in [0,1].
	Score float64 `json:"score" yaml:"score"`

	// Excerpt is the opening of the matched corpus text.
	Excerpt string `json:"excerpt" yaml:"excerpt"`
}

// Report is the immutable outcome of one completed scoring run.
type Report struct {
	// SchemaVersion is ReportSchemaVersion at creation time.
	SchemaVersion int `json:"schema_version" yaml:"schema_version"`

	// DocumentID references the scored document.
	DocumentID string `json:"document_id" yaml:"document_id"`

	// Owner is the document's verified owner identifier.
	Owner string `json:"owner" yaml:"owner"`

	// Filename is the document's declared filename.
	Filename string `json:"filename" yaml:"filename"`

	// Similarity is the overall similarity percentage (0-100),
	// a coverage-weighted aggregate of per-segment refined scores.
	Similarity float64 `json:"similarity" yaml:"similarity"`

	// AILikelihood is the overall AI-likelihood percentage (0-100).
	AILikelihood float64 `json:"ai_likelihood" yaml:"ai_likelihood"`

	// Matches lists surfaced matches, best first.
	Matches []ReportMatch `json:"matches" yaml:"matches"`

	// CreatedAt is the completion time of the scoring run.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
