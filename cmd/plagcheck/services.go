// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/agesatony/AGs-plagcheck/internal/aiscore"
	"github.com/agesatony/AGs-plagcheck/internal/corpus"
	"github.com/agesatony/AGs-plagcheck/internal/extract"
	"github.com/agesatony/AGs-plagcheck/internal/fingerprint"
	"github.com/agesatony/AGs-plagcheck/internal/match"
	"github.com/agesatony/AGs-plagcheck/internal/pipeline"
	"github.com/agesatony/AGs-plagcheck/internal/rerank"
	"github.com/agesatony/AGs-plagcheck/internal/segment"
	"github.com/agesatony/AGs-plagcheck/pkg/types"
)

// services wires the configured backends into a ready pipeline.
type services struct {
	cfg    types.PipelineConfig
	store  *corpus.Store
	fpr    *fingerprint.Fingerprinter
	runner *pipeline.Runner
}

func newServices(cfg types.PipelineConfig) (*services, error) {
	store, err := corpus.NewStore(cfg.Corpus)
	if err != nil {
		return nil, err
	}

	embedder, err := fingerprint.NewEmbedder(cfg.Fingerprint)
	if err != nil {
		store.Close()
		return nil, err
	}
	fpr := fingerprint.New(embedder, cfg.Fingerprint)

	var providers []match.Provider
	if cfg.Match.EnableGlobal {
		providers = append(providers, &match.WebSearchProvider{})
	}
	matcher := match.New(store, fpr, providers, cfg.Match, cfg.Search)

	scorer, err := rerank.NewScorer(cfg.Rerank)
	if err != nil {
		store.Close()
		return nil, err
	}

	runner := pipeline.NewRunner(fpr, matcher, scorer, &aiscore.BigramModel{}, cfg)
	return &services{cfg: cfg, store: store, fpr: fpr, runner: runner}, nil
}

func (s *services) close() {
	s.store.Close()
}

// indexFile extracts, segments, fingerprints, and appends one file as a
// corpus entry. Returns the entry ID; re-adding known content is a no-op.
func (s *services) indexFile(ctx context.Context, raw []byte, owner, filename, title string) (string, error) {
	text, err := extract.Extract(raw, filename, s.cfg.Extract)
	if err != nil {
		return "", err
	}

	doc := types.NewDocument(owner, filename, raw)
	doc.Text = text

	segs := segment.Split(text, s.cfg.Segment)
	if err := s.fpr.Apply(ctx, segs); err != nil {
		return "", err
	}

	id, err := s.store.Append(ctx, doc, title, segs)
	if err != nil {
		return "", fmt.Errorf("appending to corpus: %w", err)
	}
	return id, nil
}
