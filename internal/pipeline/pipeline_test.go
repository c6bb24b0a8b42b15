// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/agesatony/AGs-plagcheck/internal/aiscore"
	"github.com/agesatony/AGs-plagcheck/internal/corpus"
	"github.com/agesatony/AGs-plagcheck/internal/fingerprint"
	"github.com/agesatony/AGs-plagcheck/internal/match"
	"github.com/agesatony/AGs-plagcheck/internal/rerank"
	"github.com/agesatony/AGs-plagcheck/internal/segment"
	"github.com/agesatony/AGs-plagcheck/pkg/types"
)

// essay builds a ~2000-word deterministic document.
func essay(seed int64) string {
	subjects := []string{"the glacier", "the committee", "a research team", "the archive",
		"the observatory", "an early survey", "the coastal station", "the dataset"}
	verbs := []string{"documented", "measured", "catalogued", "reviewed", "preserved",
		"challenged", "confirmed", "reorganized"}
	objects := []string{"seasonal ice thickness across the northern margin",
		"decades of handwritten field observations",
		"the migration records from the previous century",
		"a series of contested regional climate estimates",
		"the instrument calibration logs from every spring",
		"an archive of weathered expedition photographs",
		"the sediment cores recovered from the lake bed",
		"a collection of disputed boundary surveys"}

	rng := rand.New(rand.NewSource(seed))
	var b strings.Builder
	for words := 0; words < 2000; {
		s := fmt.Sprintf("%s %s %s.",
			subjects[rng.Intn(len(subjects))],
			verbs[rng.Intn(len(verbs))],
			objects[rng.Intn(len(objects))])
		b.WriteString(strings.ToUpper(s[:1]) + s[1:] + " ")
		words += len(strings.Fields(s))
	}
	return b.String()
}

// freshProse builds ~2000 words sharing no vocabulary with essay().
func freshProse(seed int64) string {
	words := []string{"violin", "saddle", "walnut", "zephyr", "lantern", "quarry",
		"ribbon", "velvet", "basalt", "cinder", "harbor", "meadow", "fossil",
		"tundra", "circuit", "anchor", "dapple", "yonder", "ember", "grotto"}
	rng := rand.New(rand.NewSource(seed))
	var b strings.Builder
	for i := 0; i < 2000; i++ {
		b.WriteString(words[rng.Intn(len(words))])
		if (i+1)%12 == 0 {
			b.WriteString(". ")
		} else {
			b.WriteString(" ")
		}
	}
	return b.String()
}

type testEnv struct {
	runner *Runner
	store  *corpus.Store
	fpr    *fingerprint.Fingerprinter
	cfg    types.PipelineConfig
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := types.Defaults()
	cfg.Corpus.Dir = t.TempDir()

	store, err := corpus.NewStore(cfg.Corpus)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	embedder, err := fingerprint.NewEmbedder(cfg.Fingerprint)
	if err != nil {
		t.Fatal(err)
	}
	fpr := fingerprint.New(embedder, cfg.Fingerprint)
	matcher := match.New(store, fpr, nil, cfg.Match, cfg.Search)
	scorer, err := rerank.NewScorer(cfg.Rerank)
	if err != nil {
		t.Fatal(err)
	}

	return &testEnv{
		runner: NewRunner(fpr, matcher, scorer, &aiscore.BigramModel{}, cfg),
		store:  store,
		fpr:    fpr,
		cfg:    cfg,
	}
}

func (e *testEnv) seed(t *testing.T, title, text string) string {
	t.Helper()
	segs := segment.Split(text, e.cfg.Segment)
	if err := e.fpr.Apply(context.Background(), segs); err != nil {
		t.Fatal(err)
	}
	doc := types.NewDocument("seeder", title+".txt", []byte(text))
	id, err := e.store.Append(context.Background(), doc, title, segs)
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestRunExactDuplicate(t *testing.T) {
	env := newEnv(t)
	text := essay(1)
	entryID := env.seed(t, "stored essay", text)

	doc := types.NewDocument("alice", "submission.txt", []byte(text))
	report, err := env.runner.Run(context.Background(), doc, []byte(text), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if doc.Status != types.StatusScored {
		t.Errorf("doc status = %s, want scored", doc.Status)
	}
	if report.Similarity < 95 {
		t.Errorf("similarity = %.1f, want >= 95 for exact duplicate", report.Similarity)
	}
	if len(report.Matches) == 0 {
		t.Fatal("no matches surfaced for exact duplicate")
	}
	top := report.Matches[0]
	if top.EntryID != entryID {
		t.Errorf("top match entry = %s, want stored entry %s", top.EntryID, entryID)
	}
	if top.Excerpt == "" {
		t.Error("top match missing excerpt")
	}
	if report.SchemaVersion != types.ReportSchemaVersion {
		t.Errorf("schema version = %d, want %d", report.SchemaVersion, types.ReportSchemaVersion)
	}
}

func TestRunNoOverlap(t *testing.T) {
	env := newEnv(t)
	env.seed(t, "stored essay", essay(1))

	fresh := freshProse(2)
	doc := types.NewDocument("bob", "fresh.txt", []byte(fresh))
	report, err := env.runner.Run(context.Background(), doc, []byte(fresh), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Similarity > 5 {
		t.Errorf("similarity = %.1f, want <= 5 for disjoint text", report.Similarity)
	}
	if len(report.Matches) != 0 {
		t.Errorf("matches = %d, want 0 for disjoint text", len(report.Matches))
	}
}

func TestRunTooShort(t *testing.T) {
	env := newEnv(t)

	raw := []byte("far too short to analyze")
	doc := types.NewDocument("carol", "tiny.txt", raw)
	report, err := env.runner.Run(context.Background(), doc, raw, &bytes.Buffer{})

	if !errors.Is(err, types.ErrTooShort) {
		t.Errorf("Run() error = %v, want ErrTooShort", err)
	}
	if report != nil {
		t.Error("Run() produced a report for a too-short document")
	}
	if doc.Status != types.StatusFailed {
		t.Errorf("doc status = %s, want failed", doc.Status)
	}
	if doc.Failure != types.FailTooShort {
		t.Errorf("doc failure = %s, want too_short", doc.Failure)
	}
}

func TestRunUnsupportedFormat(t *testing.T) {
	env := newEnv(t)

	raw := []byte("whatever bytes")
	doc := types.NewDocument("dave", "slides.pptx", raw)
	_, err := env.runner.Run(context.Background(), doc, raw, &bytes.Buffer{})

	if !errors.Is(err, types.ErrUnsupportedFormat) {
		t.Errorf("Run() error = %v, want ErrUnsupportedFormat", err)
	}
	if doc.Failure != types.FailUnsupportedFormat {
		t.Errorf("doc failure = %s, want unsupported_format", doc.Failure)
	}
}

func TestRunAllBounded(t *testing.T) {
	env := newEnv(t)
	env.seed(t, "stored essay", essay(1))

	uploads := []Upload{
		{Owner: "a", Filename: "one.txt", Raw: []byte(essay(1))},
		{Owner: "b", Filename: "two.txt", Raw: []byte(freshProse(3))},
		{Owner: "c", Filename: "bad.xyz", Raw: []byte("nope")},
	}

	results := env.runner.RunAll(context.Background(), uploads, &bytes.Buffer{})
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}

	if results[0].Err != nil || results[0].Report == nil {
		t.Errorf("duplicate upload failed: %v", results[0].Err)
	}
	if results[0].Report.Similarity < 95 {
		t.Errorf("duplicate similarity = %.1f, want >= 95", results[0].Report.Similarity)
	}
	if results[1].Err != nil {
		t.Errorf("fresh upload failed: %v", results[1].Err)
	}
	if !errors.Is(results[2].Err, types.ErrUnsupportedFormat) {
		t.Errorf("bad upload error = %v, want ErrUnsupportedFormat", results[2].Err)
	}
}

func TestDocumentStateMachine(t *testing.T) {
	doc := types.NewDocument("erin", "a.txt", []byte("x"))
	if doc.Status != types.StatusPending {
		t.Fatalf("new doc status = %s, want pending", doc.Status)
	}

	// Skipping a stage is illegal.
	if err := doc.Advance(types.StatusSegmented); err == nil {
		t.Error("Advance(pending -> segmented) should fail")
	}
	if err := doc.Advance(types.StatusExtracted); err != nil {
		t.Errorf("Advance(pending -> extracted) error = %v", err)
	}

	doc.Fail(types.FailInternal)
	if err := doc.Advance(types.StatusSegmented); err == nil {
		t.Error("Advance() after failure should fail; failed is terminal")
	}
}
