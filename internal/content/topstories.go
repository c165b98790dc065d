// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/newsdesk-engine/internal/httputil"
	"github.com/pdiddy/newsdesk-engine/pkg/types"
)

// topStoriesBase is the top-stories endpoint; the section name and
// ".json" are appended. Declared as a var so tests can substitute an
// httptest server.
var topStoriesBase = "https://api.nytimes.com/svc/topstories/v2"

// publishedFormat is the timestamp layout used by the listing API.
const publishedFormat = "2006-01-02T15:04:05-07:00"

// TopStoriesBackend fetches the current stories for one section.
type TopStoriesBackend struct {
	Client  *http.Client
	Limiter *httputil.RateLimiter
}

// Name returns the backend identifier.
func (b *TopStoriesBackend) Name() string { return "topstories" }

// Fetch requests the section listing and converts results.
func (b *TopStoriesBackend) Fetch(ctx context.Context, query Query, cfg types.ContentConfig) ([]types.Listing, error) {
	section := query.Section
	if section == "" {
		section = cfg.Section
	}
	if section == "" {
		section = "home"
	}

	params := url.Values{"api-key": {cfg.APIKey}}
	reqURL := fmt.Sprintf("%s/%s.json?%s", topStoriesBase, url.PathEscape(section), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	if b.Limiter != nil {
		if err := b.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("top-stories request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("top-stories API returned HTTP %d for section %q", resp.StatusCode, section)
	}

	var tsr topStoriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&tsr); err != nil {
		return nil, fmt.Errorf("parsing top-stories response: %w", err)
	}

	total := len(tsr.Results)
	var listings []types.Listing
	for i, r := range tsr.Results {
		if r.URL == "" {
			continue
		}
		l := types.Listing{
			URL:            r.URL,
			Title:          r.Title,
			Abstract:       r.Abstract,
			Byline:         r.Byline,
			Section:        r.Section,
			Source:         "topstories",
			RelevanceScore: positionScore(i, total),
		}
		if t, parseErr := time.Parse(publishedFormat, r.PublishedDate); parseErr == nil {
			l.Published = t
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// Top-stories API JSON structures.
type topStoriesResponse struct {
	Status     string            `json:"status"`
	NumResults int               `json:"num_results"`
	Results    []topStoriesEntry `json:"results"`
}

type topStoriesEntry struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	Abstract      string `json:"abstract"`
	Byline        string `json:"byline"`
	Section       string `json:"section"`
	PublishedDate string `json:"published_date"`
}
