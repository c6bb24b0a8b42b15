// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API credentials from a directory of plain-text files.
// Each file is one secret: the filename is the key name and the trimmed file
// contents are the value.
//
// Recognized key files: cohere-api-key, search-api-key, search-endpoint.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agesatony/AGs-plagcheck/pkg/types"
)

// Key file names.
const (
	KeyCohere         = "cohere-api-key"
	KeySearch         = "search-api-key"
	KeySearchEndpoint = "search-endpoint"
)

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Apply fills credential fields of cfg that the config file left empty.
// Explicit configuration wins over secret files.
func Apply(cfg *types.PipelineConfig, secrets map[string]string) {
	if cfg.Fingerprint.APIKey == "" {
		cfg.Fingerprint.APIKey = secrets[KeyCohere]
	}
	if cfg.Rerank.APIKey == "" {
		cfg.Rerank.APIKey = secrets[KeyCohere]
	}
	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = secrets[KeySearch]
	}
	if cfg.Search.Endpoint == "" {
		cfg.Search.Endpoint = secrets[KeySearchEndpoint]
	}
}
