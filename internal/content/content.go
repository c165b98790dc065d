// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package content queries article-listing APIs and returns unified,
// deduplicated listings.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/pdiddy/newsdesk-engine/pkg/types"
)

// Backend fetches listings from a single API endpoint. Each backend
// (top stories, article search) implements this interface.
type Backend interface {
	Name() string
	Fetch(ctx context.Context, query Query, cfg types.ContentConfig) ([]types.Listing, error)
}

// Query holds the listing parameters.
type Query struct {
	// FreeText is the article-search query string.
	FreeText string

	// Section selects the top-stories section; empty means "home".
	Section string
}

// Output holds the merged listings and dedup statistics.
type Output struct {
	Listings      []types.Listing
	DupsRemoved   int
	BackendErrors []string
}

// Fetch fans the query out to all backends concurrently, deduplicates
// listings by URL, ranks them, and returns the top N. Individual backend
// failures are reported on w and in BackendErrors without aborting the
// whole fetch; Fetch fails only when every backend fails.
func Fetch(ctx context.Context, query Query, backends []Backend, cfg types.ContentConfig, w io.Writer) (Output, error) {
	if len(backends) == 0 {
		return Output{}, fmt.Errorf("no listing backends configured")
	}
	if cfg.APIKey == "" {
		return Output{}, fmt.Errorf("content API key required: add content-api-key to .secrets/ or set content.api_key")
	}

	type backendResult struct {
		listings []types.Listing
		err      error
		name     string
	}

	ch := make(chan backendResult, len(backends))
	var wg sync.WaitGroup

	for _, b := range backends {
		wg.Add(1)
		go func(b Backend) {
			defer wg.Done()
			listings, err := b.Fetch(ctx, query, cfg)
			ch <- backendResult{listings: listings, err: err, name: b.Name()}
		}(b)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []types.Listing
	var backendErrors []string
	for br := range ch {
		if br.err != nil {
			msg := fmt.Sprintf("%s: %v", br.name, br.err)
			backendErrors = append(backendErrors, msg)
			fmt.Fprintf(w, "warning: backend %s failed: %v\n", br.name, br.err)
			continue
		}
		all = append(all, br.listings...)
	}

	if len(all) == 0 && len(backendErrors) == len(backends) {
		return Output{}, fmt.Errorf("all listing backends failed: %s", strings.Join(backendErrors, "; "))
	}

	deduped, removed := deduplicate(all)

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].RelevanceScore > deduped[j].RelevanceScore
	})

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}
	if len(deduped) > maxResults {
		deduped = deduped[:maxResults]
	}

	return Output{
		Listings:      deduped,
		DupsRemoved:   removed,
		BackendErrors: backendErrors,
	}, nil
}

// deduplicate merges listings that share a URL.
func deduplicate(listings []types.Listing) ([]types.Listing, int) {
	seen := make(map[string]int) // canonical URL -> index in deduped
	var deduped []types.Listing
	removed := 0

	for _, l := range listings {
		key := canonicalURL(l.URL)
		if key == "" {
			continue
		}
		if idx, ok := seen[key]; ok {
			mergeInto(&deduped[idx], l)
			removed++
			continue
		}
		seen[key] = len(deduped)
		deduped = append(deduped, l)
	}
	return deduped, removed
}

// canonicalURL normalizes a listing URL for dedup: scheme-insensitive,
// trailing slash stripped.
func canonicalURL(u string) string {
	u = strings.TrimSpace(u)
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	return strings.TrimSuffix(u, "/")
}

// mergeInto fills empty fields of dst from src and keeps the higher score.
func mergeInto(dst *types.Listing, src types.Listing) {
	if dst.Title == "" && src.Title != "" {
		dst.Title = src.Title
	}
	if dst.Abstract == "" && src.Abstract != "" {
		dst.Abstract = src.Abstract
	}
	if dst.Byline == "" && src.Byline != "" {
		dst.Byline = src.Byline
	}
	if dst.Section == "" && src.Section != "" {
		dst.Section = src.Section
	}
	if dst.Published.IsZero() && !src.Published.IsZero() {
		dst.Published = src.Published
	}
	if src.RelevanceScore > dst.RelevanceScore {
		dst.RelevanceScore = src.RelevanceScore
	}
	if dst.Source != src.Source && !strings.Contains(dst.Source, src.Source) {
		dst.Source = dst.Source + "," + src.Source
	}
}

// positionScore converts a backend's result position into a [0.1, 1.0]
// relevance score. Backends return results in their own relevance order.
func positionScore(i, total int) float64 {
	if total <= 1 {
		return 1.0
	}
	return 1.0 - float64(i)/float64(total-1)*0.9
}

// FormatTable writes listings as a human-readable table to w.
func FormatTable(out Output, w io.Writer) {
	if len(out.Listings) == 0 {
		fmt.Fprintln(w, "No listings found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-55s  %-12s  %-10s  %s\n",
		"Rank", "Title", "Section", "Published", "URL")
	fmt.Fprintln(w, strings.Repeat("-", 130))

	for i, l := range out.Listings {
		title := l.Title
		if len(title) > 55 {
			title = title[:52] + "..."
		}
		published := ""
		if !l.Published.IsZero() {
			published = l.Published.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%-4d  %-55s  %-12s  %-10s  %s\n",
			i+1, title, truncate(l.Section, 12), published, l.URL)
	}

	fmt.Fprintf(w, "\n%d listings", len(out.Listings))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes listings as indented JSON to w.
func FormatJSON(out Output, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Listings)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
