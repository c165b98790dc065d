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

// articleSearchBase is the article-search endpoint. Declared as a var so
// tests can substitute an httptest server.
var articleSearchBase = "https://api.nytimes.com/svc/search/v2/articlesearch.json"

// ArticleSearchBackend queries the archive by free text.
type ArticleSearchBackend struct {
	Client  *http.Client
	Limiter *httputil.RateLimiter
}

// Name returns the backend identifier.
func (b *ArticleSearchBackend) Name() string { return "articlesearch" }

// Fetch runs the free-text search and converts result documents.
func (b *ArticleSearchBackend) Fetch(ctx context.Context, query Query, cfg types.ContentConfig) ([]types.Listing, error) {
	if query.FreeText == "" {
		return nil, fmt.Errorf("empty article-search query")
	}

	params := url.Values{
		"q":       {query.FreeText},
		"api-key": {cfg.APIKey},
	}
	reqURL := articleSearchBase + "?" + params.Encode()

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
		return nil, fmt.Errorf("article-search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("article-search API returned HTTP %d", resp.StatusCode)
	}

	var asr articleSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&asr); err != nil {
		return nil, fmt.Errorf("parsing article-search response: %w", err)
	}

	total := len(asr.Response.Docs)
	var listings []types.Listing
	for i, d := range asr.Response.Docs {
		if d.WebURL == "" {
			continue
		}
		l := types.Listing{
			URL:            d.WebURL,
			Title:          d.Headline.Main,
			Abstract:       d.Abstract,
			Byline:         d.Byline.Original,
			Section:        d.SectionName,
			Source:         "articlesearch",
			RelevanceScore: positionScore(i, total),
		}
		// The archive emits zone offsets without a colon ("+0000");
		// newer responses use RFC 3339.
		if t, parseErr := time.Parse(time.RFC3339, d.PubDate); parseErr == nil {
			l.Published = t
		} else if t, parseErr := time.Parse("2006-01-02T15:04:05-0700", d.PubDate); parseErr == nil {
			l.Published = t
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// Article-search API JSON structures.
type articleSearchResponse struct {
	Status   string             `json:"status"`
	Response articleSearchInner `json:"response"`
}

type articleSearchInner struct {
	Docs []articleSearchDoc `json:"docs"`
}

type articleSearchDoc struct {
	WebURL      string                 `json:"web_url"`
	Abstract    string                 `json:"abstract"`
	SectionName string                 `json:"section_name"`
	PubDate     string                 `json:"pub_date"`
	Headline    articleSearchHeadline  `json:"headline"`
	Byline      articleSearchByline    `json:"byline"`
}

type articleSearchHeadline struct {
	Main string `json:"main"`
}

type articleSearchByline struct {
	Original string `json:"original"`
}
