// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/agesatony/AGs-plagcheck/pkg/types"
)

func TestExcerptShortTextUnchanged(t *testing.T) {
	text := "a short matched passage"
	if got := excerpt(text); got != text {
		t.Errorf("excerpt(%q) = %q, want unchanged", text, got)
	}
}

func TestExcerptTruncatesOnRuneBoundary(t *testing.T) {
	// Two-byte runes guarantee the byte cut lands mid-rune.
	text := strings.Repeat("é", 120)

	got := excerpt(text)
	if !utf8.ValidString(got) {
		t.Errorf("excerpt produced invalid UTF-8: %q", got)
	}
	if len(got) > excerptLen {
		t.Errorf("len(excerpt) = %d, want <= %d", len(got), excerptLen)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated excerpt missing ellipsis: %q", got)
	}
}

func TestAggregateBelowThresholdContributesZero(t *testing.T) {
	doc := types.NewDocument("alice", "a.txt", []byte("text"))
	segs := []types.Segment{
		{Index: 0, TokenCount: 10},
		{Index: 1, TokenCount: 10},
	}
	winners := map[int]types.MatchCandidate{
		0: {SegmentIndex: 0, EntryID: "e1", Refined: 0.9},
		1: {SegmentIndex: 1, EntryID: "e2", Refined: 0.2},
	}

	rep := Aggregate(doc, segs, winners, 0, types.RerankConfig{MatchThreshold: 0.55})
	if want := 45.0; rep.Similarity != want {
		t.Errorf("similarity = %f, want %f", rep.Similarity, want)
	}
	if len(rep.Matches) != 1 || rep.Matches[0].EntryID != "e1" {
		t.Errorf("matches = %+v, want only the above-threshold winner", rep.Matches)
	}
}
