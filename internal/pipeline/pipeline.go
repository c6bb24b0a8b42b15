// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives a document through extraction, segmentation,
// fingerprinting, matching, re-ranking, and AI-likelihood scoring, and
// aggregates the results into a Report. Stages within one document are
// strictly sequential; documents run concurrently under a bounded pool.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/agesatony/AGs-plagcheck/internal/aiscore"
	"github.com/agesatony/AGs-plagcheck/internal/extract"
	"github.com/agesatony/AGs-plagcheck/internal/fingerprint"
	"github.com/agesatony/AGs-plagcheck/internal/match"
	"github.com/agesatony/AGs-plagcheck/internal/rerank"
	"github.com/agesatony/AGs-plagcheck/internal/segment"
	"github.com/agesatony/AGs-plagcheck/pkg/types"
)

// Runner owns the shared, read-only model services and the corpus handle.
// One Runner serves all concurrent scoring runs; nothing here is mutated
// after construction except the fingerprint cache, which is internally
// synchronized.
type Runner struct {
	fpr     *fingerprint.Fingerprinter
	matcher *match.Matcher
	scorer  rerank.CrossScorer
	lm      aiscore.LanguageModel
	cfg     types.PipelineConfig
}

// NewRunner wires the pipeline services together.
func NewRunner(fpr *fingerprint.Fingerprinter, matcher *match.Matcher,
	scorer rerank.CrossScorer, lm aiscore.LanguageModel, cfg types.PipelineConfig) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Runner{fpr: fpr, matcher: matcher, scorer: scorer, lm: lm, cfg: cfg}
}

// Run scores one document end to end. On failure the document transitions
// to failed with its taxonomy entry and no Report is returned. Progress and
// degradation warnings go to w.
func (r *Runner) Run(ctx context.Context, doc *types.Document, raw []byte, w io.Writer) (*types.Report, error) {
	report, err := r.run(ctx, doc, raw, w)
	if err != nil {
		doc.Fail(types.ClassifyFailure(err))
		return nil, err
	}
	return report, nil
}

func (r *Runner) run(ctx context.Context, doc *types.Document, raw []byte, w io.Writer) (*types.Report, error) {
	text, err := extract.Extract(raw, doc.Filename, r.cfg.Extract)
	if err != nil {
		return nil, err
	}
	doc.Text = text
	if err := doc.Advance(types.StatusExtracted); err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "extracted %s (%d chars)\n", doc.Filename, len(text))

	segs := segment.Split(text, r.cfg.Segment)
	if err := doc.Advance(types.StatusSegmented); err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "segmented %s (%d segments)\n", doc.Filename, len(segs))

	if err := r.fpr.Apply(ctx, segs); err != nil {
		return nil, err
	}
	if err := doc.Advance(types.StatusFingerprinted); err != nil {
		return nil, err
	}

	candidates, err := r.matcher.Match(ctx, segs, w)
	if err != nil {
		return nil, err
	}
	if err := doc.Advance(types.StatusMatched); err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "matched %s (%d candidates)\n", doc.Filename, len(candidates))

	if err := rerank.Apply(ctx, r.scorer, segs, candidates, r.cfg.Rerank); err != nil {
		return nil, err
	}
	winners := rerank.Winners(candidates)

	likelihood, err := aiscore.ScoreDocument(ctx, r.lm, segment.Tokenize(text), r.cfg.AIScore)
	if err != nil {
		return nil, err
	}

	if err := doc.Advance(types.StatusScored); err != nil {
		return nil, err
	}

	report := Aggregate(doc, segs, winners, likelihood, r.cfg.Rerank)
	fmt.Fprintf(w, "scored %s: similarity %.1f%%, ai-likelihood %.1f%%\n",
		doc.Filename, report.Similarity, report.AILikelihood)
	return report, nil
}

// Upload is one pending submission for a batch run.
type Upload struct {
	Owner    string
	Filename string
	Raw      []byte
}

// Result pairs a processed document with its report or error.
type Result struct {
	Doc    *types.Document
	Report *types.Report
	Err    error
}

// RunAll scores multiple documents concurrently under the worker bound.
// Results preserve input order.
func (r *Runner) RunAll(ctx context.Context, uploads []Upload, w io.Writer) []Result {
	results := make([]Result, len(uploads))
	sem := make(chan struct{}, r.cfg.Workers)
	var wg sync.WaitGroup

	for i, up := range uploads {
		wg.Add(1)
		go func(i int, up Upload) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			doc := types.NewDocument(up.Owner, up.Filename, up.Raw)
			report, err := r.Run(ctx, doc, up.Raw, w)
			results[i] = Result{Doc: doc, Report: report, Err: err}
		}(i, up)
	}

	wg.Wait()
	return results
}
