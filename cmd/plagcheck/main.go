// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the plagcheck CLI. It scores academic
// submissions for similarity against a local corpus (optionally extended by
// external search) and for AI-generation likelihood, and manages the corpus.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/agesatony/AGs-plagcheck/internal/secrets"
	"github.com/agesatony/AGs-plagcheck/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the plagcheck CLI.
var rootCmd = &cobra.Command{
	Use:   "plagcheck",
	Short: "Similarity and AI-likelihood scoring for academic submissions",
	Long: `plagcheck runs submitted documents through a staged scoring pipeline:
text extraction, sentence segmentation, fingerprinting, corpus matching,
re-ranking, and AI-likelihood estimation. The outcome is an immutable
report with an overall similarity percentage, an AI-likelihood percentage,
and the matched sources.

Scoring is a subcommand: check. Corpus maintenance lives under corpus.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./plagcheck.yaml or ~/.config/plagcheck/config.yaml)")
	rootCmd.PersistentFlags().String("corpus", "", "corpus directory (overrides config)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("plagcheck")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "plagcheck"))
		}
	}

	viper.SetEnvPrefix("PLAGCHECK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig builds the pipeline configuration: defaults, then the config
// file, then PLAGCHECK_* environment overrides, then secret files for
// credentials everything else left empty.
func loadConfig() (types.PipelineConfig, error) {
	cfg := types.Defaults()

	if path := viper.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if dir, _ := rootCmd.PersistentFlags().GetString("corpus"); dir != "" {
		cfg.Corpus.Dir = dir
	}

	secrets.Apply(&cfg, loadedSecrets)
	return cfg, nil
}

// applyEnvOverrides reads the deployment knobs viper maps from the
// PLAGCHECK_ environment prefix (e.g. PLAGCHECK_CORPUS_DIR).
func applyEnvOverrides(cfg *types.PipelineConfig) {
	if v := viper.GetString("corpus_dir"); v != "" {
		cfg.Corpus.Dir = v
	}
	if v := viper.GetString("reports_dir"); v != "" {
		cfg.ReportsDir = v
	}
	if v := viper.GetInt("workers"); v > 0 {
		cfg.Workers = v
	}
	if v := viper.GetString("embed_backend"); v != "" {
		cfg.Fingerprint.Backend = types.EmbedBackend(v)
	}
	if v := viper.GetString("embed_model"); v != "" {
		cfg.Fingerprint.Model = v
	}
	if v := viper.GetString("embed_base_url"); v != "" {
		cfg.Fingerprint.BaseURL = v
	}
	if v := viper.GetString("rerank_backend"); v != "" {
		cfg.Rerank.Backend = types.RerankBackend(v)
	}
	if v := viper.GetString("search_endpoint"); v != "" {
		cfg.Search.Endpoint = v
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
