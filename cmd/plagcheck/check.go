// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/agesatony/AGs-plagcheck/internal/pipeline"
	"github.com/agesatony/AGs-plagcheck/internal/report"
	"github.com/agesatony/AGs-plagcheck/pkg/types"
)

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Score submissions for similarity and AI likelihood",
	Long: `Check runs each file through the full scoring pipeline and prints a
report per file. Supported formats: PDF, DOCX, and plain text or Markdown.

With --global the local candidate pool is extended by external search;
external calls are best-effort and never fail the run. With --index a
successfully scored submission is also appended to the corpus as a new
reference entry.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("owner", "", "verified owner identifier recorded on the report")
	checkCmd.Flags().Bool("global", false, "extend candidates with external search")
	checkCmd.Flags().Bool("index", false, "append scored submissions to the corpus")
	checkCmd.Flags().Bool("json", false, "shorthand for --format json")
	checkCmd.Flags().String("format", "text", "output format: text, json, or yaml")
	checkCmd.Flags().String("out", "", "also write report files to this directory")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	owner, _ := cmd.Flags().GetString("owner")
	global, _ := cmd.Flags().GetBool("global")
	index, _ := cmd.Flags().GetBool("index")
	format, _ := cmd.Flags().GetString("format")
	outDir, _ := cmd.Flags().GetString("out")
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		format = "json"
	}
	if format != "text" && format != "json" && format != "yaml" {
		return fmt.Errorf("unknown format %q", format)
	}
	cfg.Match.EnableGlobal = global

	svc, err := newServices(cfg)
	if err != nil {
		return err
	}
	defer svc.close()

	uploads := make([]pipeline.Upload, 0, len(args))
	for _, path := range args {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		uploads = append(uploads, pipeline.Upload{
			Owner:    owner,
			Filename: filepath.Base(path),
			Raw:      raw,
		})
	}

	ctx := cmd.Context()
	results := svc.runner.RunAll(ctx, uploads, os.Stderr)

	var failed int
	for i, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "error: %s: %v (%s)\n", args[i], res.Err, res.Doc.Failure)
			continue
		}

		if err := emitReport(res.Report, format); err != nil {
			return err
		}
		if outDir != "" {
			path, err := writeReport(res.Report, outDir, format)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "wrote %s\n", path)
		}

		if index {
			id, err := svc.indexFile(ctx, uploads[i].Raw, owner, uploads[i].Filename, titleFor(uploads[i].Filename))
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: indexing %s: %v\n", args[i], err)
			} else {
				fmt.Fprintf(os.Stderr, "indexed %s as %s\n", uploads[i].Filename, id)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d submissions failed", failed, len(results))
	}
	return nil
}

func emitReport(rep *types.Report, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling report: %w", err)
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(rep)
		if err != nil {
			return fmt.Errorf("marshaling report: %w", err)
		}
		fmt.Print(string(data))
	default:
		report.Render(os.Stdout, rep)
	}
	return nil
}

func writeReport(rep *types.Report, dir, format string) (string, error) {
	if format == "json" {
		return report.WriteJSON(rep, dir)
	}
	return report.WriteYAML(rep, dir)
}

// titleFor derives a corpus entry title from a filename.
func titleFor(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
