// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/agesatony/AGs-plagcheck/internal/httputil"
	"github.com/agesatony/AGs-plagcheck/pkg/types"
)

// WebSearchProvider queries a JSON web-search API for candidate excerpts.
// The endpoint is configured rather than hard-coded so deployments can point
// at whichever search service they license.
type WebSearchProvider struct {
	Client *http.Client
}

// Name returns the provider identifier.
func (p *WebSearchProvider) Name() string { return "websearch" }

// webSearchResponse is the provider's JSON result shape.
type webSearchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		URL     string `json:"url"`
	} `json:"results"`
}

// Search issues the query and maps results to ExternalHits.
func (p *WebSearchProvider) Search(ctx context.Context, query string, cfg types.SearchConfig) ([]ExternalHit, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("no search endpoint configured")
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	params := url.Values{
		"q":     {query},
		"limit": {fmt.Sprintf("%d", maxResults)},
	}
	reqURL := cfg.Endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	if cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned HTTP %d", resp.StatusCode)
	}

	var sr webSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	hits := make([]ExternalHit, 0, len(sr.Results))
	for _, r := range sr.Results {
		if r.Snippet == "" {
			continue
		}
		hits = append(hits, ExternalHit{
			Title:     r.Title,
			Excerpt:   r.Snippet,
			SourceURL: r.URL,
		})
	}
	return hits, nil
}
