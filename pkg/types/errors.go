// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Sentinel errors forming the pipeline's error taxonomy. Stages wrap these
// with context; callers classify with errors.Is.
var (
	// ErrUnsupportedFormat rejects uploads whose declared kind has no extractor.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrCorruptDocument reports an upload whose bytes could not be parsed.
	ErrCorruptDocument = errors.New("corrupt document")

	// ErrTooShort rejects near-empty submissions before expensive scoring.
	ErrTooShort = errors.New("extracted text too short")

	// ErrModelUnavailable reports a required model backend that failed its
	// startup health check. Fatal at process start, not per document.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrCorpusUnavailable reports a missing or unreadable corpus store.
	// Without a corpus, similarity scoring is meaningless.
	ErrCorpusUnavailable = errors.New("corpus unavailable")
)

// ClassifyFailure maps a pipeline error to its taxonomy entry.
func ClassifyFailure(err error) FailureClass {
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return FailUnsupportedFormat
	case errors.Is(err, ErrCorruptDocument):
		return FailCorruptDocument
	case errors.Is(err, ErrTooShort):
		return FailTooShort
	case errors.Is(err, ErrModelUnavailable):
		return FailModelUnavailable
	case errors.Is(err, ErrCorpusUnavailable):
		return FailCorpusUnavailable
	default:
		return FailInternal
	}
}
