// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"sort"
	"time"
	"unicode/utf8"

	"github.com/agesatony/AGs-plagcheck/pkg/types"
)

// excerptLen caps the corpus text carried into a report match.
const excerptLen = 160

// Aggregate reduces per-segment winners and the document AI likelihood into
// an immutable Report. Similarity is coverage-weighted: every segment
// contributes its token count as weight; segments whose winner clears the
// match threshold contribute their refined score, all others contribute
// zero. The formula is versioned by types.ReportSchemaVersion.
func Aggregate(doc *types.Document, segs []types.Segment,
	winners map[int]types.MatchCandidate, aiLikelihood float64,
	cfg types.RerankConfig) *types.Report {

	threshold := cfg.MatchThreshold
	if threshold <= 0 {
		threshold = 0.55
	}

	var (
		weighted    float64
		totalWeight float64
		matches     []types.ReportMatch
	)

	for _, seg := range segs {
		weight := float64(seg.TokenCount)
		totalWeight += weight

		winner, ok := winners[seg.Index]
		if !ok || winner.Refined < threshold {
			continue
		}
		weighted += weight * winner.Refined

		matches = append(matches, types.ReportMatch{
			SegmentIndex: seg.Index,
			EntryID:      winner.EntryID,
			Title:        winner.EntryTitle,
			SourceURL:    winner.SourceURL,
			Score:        winner.Refined,
			Excerpt:      excerpt(winner.Text),
		})
	}

	var similarity float64
	if totalWeight > 0 {
		similarity = 100 * weighted / totalWeight
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].SegmentIndex < matches[j].SegmentIndex
	})

	return &types.Report{
		SchemaVersion: types.ReportSchemaVersion,
		DocumentID:    doc.ID,
		Owner:         doc.Owner,
		Filename:      doc.Filename,
		Similarity:    similarity,
		AILikelihood:  aiLikelihood,
		Matches:       matches,
		CreatedAt:     time.Now().UTC(),
	}
}

func excerpt(text string) string {
	if len(text) <= excerptLen {
		return text
	}
	cut := excerptLen - 3
	// Back up to a rune boundary so truncation never splits a character.
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
