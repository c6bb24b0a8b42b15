// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report persists and renders completed scoring reports.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/agesatony/AGs-plagcheck/pkg/types"
)

// WriteYAML writes the report to <dir>/<document-id>.yaml and returns the path.
func WriteYAML(rep *types.Report, dir string) (string, error) {
	data, err := yaml.Marshal(rep)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return write(dir, rep.DocumentID+".yaml", data)
}

// WriteJSON writes the report to <dir>/<document-id>.json and returns the path.
func WriteJSON(rep *types.Report, dir string) (string, error) {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return write(dir, rep.DocumentID+".json", data)
}

func write(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating reports directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// Render writes a human-readable summary of the report to w.
func Render(w io.Writer, rep *types.Report) {
	fmt.Fprintf(w, "Report for %s (owner %s, document %s)\n",
		rep.Filename, rep.Owner, rep.DocumentID)
	fmt.Fprintf(w, "  similarity:    %5.1f%%\n", rep.Similarity)
	fmt.Fprintf(w, "  ai-likelihood: %5.1f%%\n", rep.AILikelihood)

	if len(rep.Matches) == 0 {
		fmt.Fprintln(w, "  no matches above threshold")
		return
	}

	fmt.Fprintf(w, "  matches (%d):\n", len(rep.Matches))
	for _, m := range rep.Matches {
		source := m.Title
		if m.SourceURL != "" {
			source = m.SourceURL
		}
		fmt.Fprintf(w, "    seg %3d  %.2f  %s\n", m.SegmentIndex, m.Score, source)
		if m.Excerpt != "" {
			fmt.Fprintf(w, "             %s\n", firstLine(m.Excerpt))
		}
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
