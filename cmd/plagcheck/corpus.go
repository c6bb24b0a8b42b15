// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the reference corpus",
}

var corpusAddCmd = &cobra.Command{
	Use:   "add [files...]",
	Short: "Add reference documents to the corpus",
	Long: `Add extracts, segments, and fingerprints each file and appends it to
the corpus as a reference entry. Content the corpus already holds (by
checksum) is skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		svc, err := newServices(cfg)
		if err != nil {
			return err
		}
		defer svc.close()

		owner, _ := cmd.Flags().GetString("owner")
		title, _ := cmd.Flags().GetString("title")

		for _, path := range args {
			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}

			filename := filepath.Base(path)
			name := title
			if name == "" || len(args) > 1 {
				name = titleFor(filename)
			}

			id, err := svc.indexFile(cmd.Context(), raw, owner, filename, name)
			if err != nil {
				return fmt.Errorf("adding %s: %w", path, err)
			}
			fmt.Printf("%s  %s\n", id, filename)
		}
		return nil
	},
}

var corpusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List corpus entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		svc, err := newServices(cfg)
		if err != nil {
			return err
		}
		defer svc.close()

		entries, err := svc.store.Entries(cmd.Context())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("corpus is empty")
			return nil
		}

		for _, e := range entries {
			fmt.Printf("%s  %-40s  %4d segments  %s\n",
				e.ID, e.Title, e.Segments, e.CreatedAt.Format("2006-01-02"))
		}
		return nil
	},
}

func init() {
	corpusAddCmd.Flags().String("owner", "", "owner identifier recorded on the entry")
	corpusAddCmd.Flags().String("title", "", "entry title (default: filename without extension)")

	corpusCmd.AddCommand(corpusAddCmd)
	corpusCmd.AddCommand(corpusListCmd)
	rootCmd.AddCommand(corpusCmd)
}
