// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/agesatony/AGs-plagcheck/pkg/types"
)

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PLAGCHECK_CORPUS_DIR", "/srv/plagcheck/corpus")
	t.Setenv("PLAGCHECK_WORKERS", "8")
	t.Setenv("PLAGCHECK_EMBED_BACKEND", "ollama")
	t.Setenv("PLAGCHECK_SEARCH_ENDPOINT", "https://search.example.com/v1")

	viper.Reset()
	viper.SetEnvPrefix("PLAGCHECK")
	viper.AutomaticEnv()
	t.Cleanup(viper.Reset)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.Corpus.Dir != "/srv/plagcheck/corpus" {
		t.Errorf("Corpus.Dir = %q, want env override", cfg.Corpus.Dir)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if cfg.Fingerprint.Backend != types.EmbedOllama {
		t.Errorf("Fingerprint.Backend = %q, want ollama", cfg.Fingerprint.Backend)
	}
	if cfg.Search.Endpoint != "https://search.example.com/v1" {
		t.Errorf("Search.Endpoint = %q, want env override", cfg.Search.Endpoint)
	}
}

func TestLoadConfigDefaultsWithoutEnv(t *testing.T) {
	viper.Reset()
	viper.SetEnvPrefix("PLAGCHECK")
	viper.AutomaticEnv()
	t.Cleanup(viper.Reset)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	want := types.Defaults()
	if cfg.Corpus.Dir != want.Corpus.Dir || cfg.Workers != want.Workers {
		t.Errorf("config without env = %+v, want defaults", cfg)
	}
}
