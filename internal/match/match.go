// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match compares a query document's segments against the corpus and
// emits coarse match candidates. External search providers can extend the
// candidate pool; their calls are best-effort and never fail a run.
package match

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/agesatony/AGs-plagcheck/internal/corpus"
	"github.com/agesatony/AGs-plagcheck/internal/fingerprint"
	"github.com/agesatony/AGs-plagcheck/pkg/types"
)

// ExternalHit is one result from an external search provider.
type ExternalHit struct {
	Title     string
	Excerpt   string
	SourceURL string
}

// Provider searches an external index for text resembling the query. Each
// provider implements this interface per the Strategy pattern.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, cfg types.SearchConfig) ([]ExternalHit, error)
}

// Matcher retrieves coarse candidates for query segments.
type Matcher struct {
	store     *corpus.Store
	fpr       *fingerprint.Fingerprinter
	providers []Provider
	cfg       types.MatchConfig
	searchCfg types.SearchConfig
}

// New creates a Matcher. providers may be empty; they are only consulted
// when cfg.EnableGlobal is set.
func New(store *corpus.Store, fpr *fingerprint.Fingerprinter, providers []Provider,
	cfg types.MatchConfig, searchCfg types.SearchConfig) *Matcher {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.CoarseFloor <= 0 {
		cfg.CoarseFloor = 0.35
	}
	return &Matcher{
		store:     store,
		fpr:       fpr,
		providers: providers,
		cfg:       cfg,
		searchCfg: searchCfg,
	}
}

// Match produces coarse candidates for every segment. Local corpus lookups
// are authoritative; when global search is enabled, provider hits are folded
// in as extra candidates. Provider failures degrade to local-only results
// with a warning on w.
func (m *Matcher) Match(ctx context.Context, segs []types.Segment, w io.Writer) ([]types.MatchCandidate, error) {
	if m.store == nil {
		return nil, fmt.Errorf("%w: no store configured", types.ErrCorpusUnavailable)
	}

	var candidates []types.MatchCandidate

	for i := range segs {
		neighbors, err := m.store.NearestSegments(ctx, segs[i].Embedding, m.cfg.TopK)
		if err != nil {
			return nil, fmt.Errorf("retrieving neighbors for segment %d: %w", i, err)
		}

		for _, n := range neighbors {
			coarse := n.Score
			// Shingle overlap catches near-exact copies the embedding may
			// under-score; keep whichever signal is stronger.
			if j := fingerprint.Jaccard(segs[i].Shingles, m.fpr.ShinglesOf(n.Text)); j > coarse {
				coarse = j
			}
			if coarse < m.cfg.CoarseFloor {
				continue
			}
			candidates = append(candidates, types.MatchCandidate{
				SegmentIndex:   segs[i].Index,
				EntryID:        n.EntryID,
				EntryTitle:     n.EntryTitle,
				EntryCreatedAt: n.EntryCreatedAt,
				Text:           n.Text,
				Coarse:         coarse,
				Refined:        coarse,
			})
		}
	}

	if m.cfg.EnableGlobal && len(m.providers) > 0 {
		external := m.searchExternal(ctx, segs, w)
		candidates = append(candidates, m.foldExternal(segs, external)...)
	}

	return candidates, nil
}

// searchExternal fans out to all providers concurrently. Each call runs
// under the search timeout; errors and timeouts are logged and dropped.
func (m *Matcher) searchExternal(ctx context.Context, segs []types.Segment, w io.Writer) []ExternalHit {
	query := buildQuery(segs)
	if query == "" {
		return nil
	}

	type providerResult struct {
		hits []ExternalHit
		err  error
		name string
	}

	ch := make(chan providerResult, len(m.providers))
	var wg sync.WaitGroup

	for _, p := range m.providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			callCtx := ctx
			if m.searchCfg.Timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, m.searchCfg.Timeout)
				defer cancel()
			}
			hits, err := p.Search(callCtx, query, m.searchCfg)
			ch <- providerResult{hits: hits, err: err, name: p.Name()}
		}(p)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []ExternalHit
	for pr := range ch {
		if pr.err != nil {
			fmt.Fprintf(w, "warning: external search %s failed: %v\n", pr.name, pr.err)
			continue
		}
		all = append(all, pr.hits...)
	}
	return all
}

// foldExternal scores each hit against each segment by shingle overlap and
// keeps pairs above the coarse floor. External candidates carry a source URL
// and a zero creation time, so a local entry always wins score ties.
func (m *Matcher) foldExternal(segs []types.Segment, hits []ExternalHit) []types.MatchCandidate {
	var out []types.MatchCandidate
	for _, hit := range hits {
		hitShingles := m.fpr.ShinglesOf(hit.Excerpt)
		if len(hitShingles) == 0 {
			continue
		}
		for i := range segs {
			coarse := fingerprint.Jaccard(segs[i].Shingles, hitShingles)
			if coarse < m.cfg.CoarseFloor {
				continue
			}
			out = append(out, types.MatchCandidate{
				SegmentIndex: segs[i].Index,
				EntryID:      "ext:" + hit.SourceURL,
				EntryTitle:   hit.Title,
				SourceURL:    hit.SourceURL,
				Text:         hit.Excerpt,
				Coarse:       coarse,
				Refined:      coarse,
			})
		}
	}
	return out
}

// buildQuery joins the longest few segments into one provider query.
func buildQuery(segs []types.Segment) string {
	const maxSegments = 3

	ordered := make([]types.Segment, len(segs))
	copy(ordered, segs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].TokenCount > ordered[j].TokenCount
	})
	if len(ordered) > maxSegments {
		ordered = ordered[:maxSegments]
	}

	var query string
	for _, s := range ordered {
		if query != "" {
			query += " "
		}
		query += s.Text
	}
	return query
}
