// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/agesatony/AGs-plagcheck/internal/corpus"
	"github.com/agesatony/AGs-plagcheck/internal/fingerprint"
	"github.com/agesatony/AGs-plagcheck/internal/segment"
	"github.com/agesatony/AGs-plagcheck/pkg/types"
)

const storedText = "The glacier retreated steadily over four decades of measurement. " +
	"Researchers surveyed the ice margin every spring with fixed instruments. " +
	"Their long-running dataset anchored several regional climate models."

const disjointText = "Quarterly tax filings require careful bookkeeping throughout the year. " +
	"Accountants reconcile ledgers before submitting the final statements. " +
	"Penalties apply when the deadline passes without an extension request."

// --- fixtures ---

type fixture struct {
	store *corpus.Store
	fpr   *fingerprint.Fingerprinter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := corpus.NewStore(types.CorpusConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	embedder, err := fingerprint.NewEmbedder(types.FingerprintConfig{Backend: types.EmbedHash})
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{
		store: store,
		fpr:   fingerprint.New(embedder, types.FingerprintConfig{ShingleSize: 3}),
	}
}

func (f *fixture) segments(t *testing.T, text string) []types.Segment {
	t.Helper()
	segs := segment.Split(text, types.SegmentConfig{MinTokens: 5})
	if err := f.fpr.Apply(context.Background(), segs); err != nil {
		t.Fatal(err)
	}
	return segs
}

func (f *fixture) seed(t *testing.T, title, text string) {
	t.Helper()
	segs := f.segments(t, text)
	doc := types.NewDocument("seed", title+".txt", []byte(text))
	if _, err := f.store.Append(context.Background(), doc, title, segs); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) matcher(providers []Provider, global bool, searchCfg types.SearchConfig) *Matcher {
	return New(f.store, f.fpr, providers,
		types.MatchConfig{TopK: 5, CoarseFloor: 0.35, EnableGlobal: global}, searchCfg)
}

// failingProvider always errors.
type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }
func (failingProvider) Search(context.Context, string, types.SearchConfig) ([]ExternalHit, error) {
	return nil, errors.New("provider exploded")
}

// --- tests ---

func TestMatchExactDuplicate(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "glacier study", storedText)

	segs := f.segments(t, storedText)
	cands, err := f.matcher(nil, false, types.SearchConfig{}).Match(context.Background(), segs, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if len(cands) == 0 {
		t.Fatal("no candidates for exact duplicate")
	}

	// Every segment should have a near-perfect candidate.
	best := make(map[int]float64)
	for _, c := range cands {
		if c.Coarse > best[c.SegmentIndex] {
			best[c.SegmentIndex] = c.Coarse
		}
	}
	for _, s := range segs {
		if best[s.Index] < 0.95 {
			t.Errorf("segment %d best coarse = %f, want >= 0.95", s.Index, best[s.Index])
		}
	}
}

func TestMatchDisjointText(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "glacier study", storedText)

	segs := f.segments(t, disjointText)
	cands, err := f.matcher(nil, false, types.SearchConfig{}).Match(context.Background(), segs, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	for _, c := range cands {
		if c.Coarse > 0.6 {
			t.Errorf("disjoint text produced strong candidate: %+v", c)
		}
	}
}

func TestMatchProviderFailureDegradesToLocal(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "glacier study", storedText)
	segs := f.segments(t, storedText)

	localOnly, err := f.matcher(nil, false, types.SearchConfig{}).Match(context.Background(), segs, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}

	var warnings bytes.Buffer
	withBroken, err := f.matcher([]Provider{failingProvider{}}, true, types.SearchConfig{}).
		Match(context.Background(), segs, &warnings)
	if err != nil {
		t.Fatalf("Match() with failing provider error = %v, want degraded success", err)
	}

	if !reflect.DeepEqual(localOnly, withBroken) {
		t.Error("failing provider changed local results")
	}
	if !strings.Contains(warnings.String(), "failing") {
		t.Errorf("warning output = %q, want provider failure logged", warnings.String())
	}
}

func TestMatchGlobalOnlyAddsCandidates(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "glacier study", storedText)
	segs := f.segments(t, storedText)

	local, err := f.matcher(nil, false, types.SearchConfig{}).Match(context.Background(), segs, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]string{{
				"title":   "Glacier margins survey",
				"snippet": "Researchers surveyed the ice margin every spring with fixed instruments.",
				"url":     "https://example.org/glacier",
			}},
		})
	}))
	defer ts.Close()

	cfg := types.SearchConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test/0.1"},
		Endpoint:   ts.URL,
		MaxResults: 5,
	}
	global, err := f.matcher([]Provider{&WebSearchProvider{Client: ts.Client()}}, true, cfg).
		Match(context.Background(), segs, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}

	if len(global) < len(local) {
		t.Errorf("global search removed candidates: local %d, global %d", len(local), len(global))
	}

	// Local candidates must survive untouched.
	for _, lc := range local {
		found := false
		for _, gc := range global {
			if reflect.DeepEqual(lc, gc) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("local candidate lost when global enabled: %+v", lc)
		}
	}

	var external int
	for _, c := range global {
		if c.SourceURL != "" {
			external++
		}
	}
	if external == 0 {
		t.Error("external hit not folded into candidates")
	}
}

func TestWebSearchProviderNoEndpoint(t *testing.T) {
	p := &WebSearchProvider{}
	if _, err := p.Search(context.Background(), "query", types.SearchConfig{}); err == nil {
		t.Error("Search() without endpoint should fail")
	}
}

func TestBuildQueryUsesLongestSegments(t *testing.T) {
	segs := []types.Segment{
		{Index: 0, Text: "short one here", TokenCount: 3},
		{Index: 1, Text: "this is the much longer sentence that should be chosen first", TokenCount: 12},
	}
	q := buildQuery(segs)
	if !strings.HasPrefix(q, "this is the much longer") {
		t.Errorf("buildQuery() = %q, longest segment should lead", q)
	}
}
