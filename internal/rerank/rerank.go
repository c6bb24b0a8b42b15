// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rerank sharpens coarse match candidates with a pairwise scorer.
// Only the top-N coarse candidates per segment are re-ranked, bounding the
// expensive step; winner selection is fully deterministic.
package rerank

import (
	"context"
	"fmt"
	"sort"

	"github.com/agesatony/AGs-plagcheck/pkg/types"
)

// CrossScorer scores (query, candidate) text pairs. Scores returned are in
// [0,1] and index-aligned with docs.
type CrossScorer interface {
	Name() string
	Rerank(ctx context.Context, query string, docs []string) ([]float64, error)
}

// NewScorer constructs the configured cross scorer.
func NewScorer(cfg types.RerankConfig) (CrossScorer, error) {
	switch cfg.Backend {
	case types.RerankLexical, "":
		return &LexicalScorer{}, nil
	case types.RerankCohere:
		s, err := NewCohereScorer(cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrModelUnavailable, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unknown rerank backend %q", types.ErrModelUnavailable, cfg.Backend)
	}
}

// Apply re-ranks the top-N coarse candidates of each segment in place.
// Candidates outside the top N keep their coarse score as the refined score.
func Apply(ctx context.Context, scorer CrossScorer, segs []types.Segment,
	cands []types.MatchCandidate, cfg types.RerankConfig) error {
	topN := cfg.TopN
	if topN <= 0 {
		topN = 3
	}

	segText := make(map[int]string, len(segs))
	for _, s := range segs {
		segText[s.Index] = s.Text
	}

	// Group candidate positions by segment.
	bySegment := make(map[int][]int)
	for i, c := range cands {
		bySegment[c.SegmentIndex] = append(bySegment[c.SegmentIndex], i)
	}

	// Iterate segments in order for deterministic scorer traffic.
	segIndexes := make([]int, 0, len(bySegment))
	for idx := range bySegment {
		segIndexes = append(segIndexes, idx)
	}
	sort.Ints(segIndexes)

	for _, segIdx := range segIndexes {
		positions := bySegment[segIdx]
		sort.SliceStable(positions, func(a, b int) bool {
			return cands[positions[a]].Coarse > cands[positions[b]].Coarse
		})
		if len(positions) > topN {
			positions = positions[:topN]
		}

		docs := make([]string, len(positions))
		for i, pos := range positions {
			docs[i] = cands[pos].Text
		}

		scores, err := scorer.Rerank(ctx, segText[segIdx], docs)
		if err != nil {
			return fmt.Errorf("re-ranking segment %d: %w", segIdx, err)
		}
		if len(scores) != len(docs) {
			return fmt.Errorf("re-ranking segment %d: got %d scores for %d docs", segIdx, len(scores), len(docs))
		}

		for i, pos := range positions {
			cands[pos].Refined = scores[i]
		}
	}
	return nil
}

// Winners picks the final match per segment: highest refined score, ties
// broken by earliest corpus-entry creation time, then entry ID.
func Winners(cands []types.MatchCandidate) map[int]types.MatchCandidate {
	winners := make(map[int]types.MatchCandidate)
	for _, c := range cands {
		cur, ok := winners[c.SegmentIndex]
		if !ok || better(c, cur) {
			winners[c.SegmentIndex] = c
		}
	}
	return winners
}

func better(a, b types.MatchCandidate) bool {
	if a.Refined != b.Refined {
		return a.Refined > b.Refined
	}
	// Zero creation times (external hits) sort after any local entry.
	if !a.EntryCreatedAt.Equal(b.EntryCreatedAt) {
		if a.EntryCreatedAt.IsZero() {
			return false
		}
		if b.EntryCreatedAt.IsZero() {
			return true
		}
		return a.EntryCreatedAt.Before(b.EntryCreatedAt)
	}
	return a.EntryID < b.EntryID
}
