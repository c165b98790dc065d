// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package content

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/newsdesk-engine/pkg/types"
)

// stubBackend returns canned listings or an error.
type stubBackend struct {
	name     string
	listings []types.Listing
	err      error
}

func (s *stubBackend) Name() string { return s.name }

func (s *stubBackend) Fetch(_ context.Context, _ Query, _ types.ContentConfig) ([]types.Listing, error) {
	return s.listings, s.err
}

func testCfg() types.ContentConfig {
	return types.ContentConfig{APIKey: "test-key", MaxResults: 20}
}

// --- canonicalURL ---

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"https stripped", "https://example.com/a/b", "example.com/a/b"},
		{"http stripped", "http://example.com/a/b", "example.com/a/b"},
		{"trailing slash stripped", "https://example.com/a/", "example.com/a"},
		{"whitespace trimmed", "  https://example.com/a ", "example.com/a"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canonicalURL(tt.url); got != tt.want {
				t.Errorf("canonicalURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

// --- deduplicate ---

func TestDeduplicateMergesByURL(t *testing.T) {
	published := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	all := []types.Listing{
		{URL: "https://example.com/story", Title: "Story", Source: "topstories", RelevanceScore: 0.9},
		{URL: "http://example.com/story/", Byline: "By A. Writer", Published: published, Source: "articlesearch", RelevanceScore: 0.5},
		{URL: "https://example.com/other", Title: "Other", Source: "articlesearch", RelevanceScore: 0.4},
	}

	deduped, removed := deduplicate(all)
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if len(deduped) != 2 {
		t.Fatalf("len(deduped) = %d, want 2", len(deduped))
	}

	merged := deduped[0]
	if merged.Byline != "By A. Writer" {
		t.Errorf("Byline = %q, want merged byline", merged.Byline)
	}
	if !merged.Published.Equal(published) {
		t.Errorf("Published = %v, want merged date", merged.Published)
	}
	if merged.RelevanceScore != 0.9 {
		t.Errorf("RelevanceScore = %v, want higher score kept", merged.RelevanceScore)
	}
	if merged.Source != "topstories,articlesearch" {
		t.Errorf("Source = %q, want combined sources", merged.Source)
	}
}

// --- positionScore ---

func TestPositionScore(t *testing.T) {
	if got := positionScore(0, 1); got != 1.0 {
		t.Errorf("positionScore(0, 1) = %v, want 1.0", got)
	}
	if got := positionScore(0, 10); got != 1.0 {
		t.Errorf("positionScore(0, 10) = %v, want 1.0", got)
	}
	if got := positionScore(9, 10); math.Abs(got-0.1) > 1e-9 {
		t.Errorf("positionScore(9, 10) = %v, want 0.1", got)
	}
}

// --- Fetch ---

func TestFetchFansOutAndRanks(t *testing.T) {
	backends := []Backend{
		&stubBackend{name: "topstories", listings: []types.Listing{
			{URL: "https://example.com/a", Title: "A", RelevanceScore: 1.0, Source: "topstories"},
			{URL: "https://example.com/b", Title: "B", RelevanceScore: 0.5, Source: "topstories"},
		}},
		&stubBackend{name: "articlesearch", listings: []types.Listing{
			{URL: "https://example.com/c", Title: "C", RelevanceScore: 0.8, Source: "articlesearch"},
		}},
	}

	var buf bytes.Buffer
	out, err := Fetch(context.Background(), Query{FreeText: "x"}, backends, testCfg(), &buf)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(out.Listings) != 3 {
		t.Fatalf("len(Listings) = %d, want 3", len(out.Listings))
	}
	// Sorted by descending score: A (1.0), C (0.8), B (0.5).
	if out.Listings[0].Title != "A" || out.Listings[1].Title != "C" || out.Listings[2].Title != "B" {
		t.Errorf("ranking = %s, %s, %s", out.Listings[0].Title, out.Listings[1].Title, out.Listings[2].Title)
	}
}

func TestFetchContinuesAfterBackendFailure(t *testing.T) {
	backends := []Backend{
		&stubBackend{name: "topstories", err: fmt.Errorf("HTTP 500")},
		&stubBackend{name: "articlesearch", listings: []types.Listing{
			{URL: "https://example.com/c", Title: "C", RelevanceScore: 0.8},
		}},
	}

	var buf bytes.Buffer
	out, err := Fetch(context.Background(), Query{}, backends, testCfg(), &buf)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(out.Listings) != 1 {
		t.Errorf("len(Listings) = %d, want 1", len(out.Listings))
	}
	if len(out.BackendErrors) != 1 || !strings.Contains(out.BackendErrors[0], "topstories") {
		t.Errorf("BackendErrors = %v", out.BackendErrors)
	}
	if !strings.Contains(buf.String(), "warning: backend topstories failed") {
		t.Errorf("progress output missing warning: %q", buf.String())
	}
}

func TestFetchAllBackendsFailed(t *testing.T) {
	backends := []Backend{
		&stubBackend{name: "topstories", err: fmt.Errorf("HTTP 500")},
		&stubBackend{name: "articlesearch", err: fmt.Errorf("HTTP 503")},
	}

	var buf bytes.Buffer
	_, err := Fetch(context.Background(), Query{}, backends, testCfg(), &buf)
	if err == nil || !strings.Contains(err.Error(), "all listing backends failed") {
		t.Errorf("Fetch() error = %v, want all-backends failure", err)
	}
}

func TestFetchRequiresAPIKey(t *testing.T) {
	cfg := testCfg()
	cfg.APIKey = ""
	var buf bytes.Buffer
	_, err := Fetch(context.Background(), Query{}, []Backend{&stubBackend{name: "x"}}, cfg, &buf)
	if err == nil || !strings.Contains(err.Error(), "API key required") {
		t.Errorf("Fetch() error = %v, want API key error", err)
	}
}

func TestFetchCapsResults(t *testing.T) {
	var listings []types.Listing
	for i := 0; i < 30; i++ {
		listings = append(listings, types.Listing{
			URL:            fmt.Sprintf("https://example.com/%d", i),
			RelevanceScore: positionScore(i, 30),
		})
	}
	cfg := testCfg()
	cfg.MaxResults = 5

	var buf bytes.Buffer
	out, err := Fetch(context.Background(), Query{}, []Backend{&stubBackend{name: "topstories", listings: listings}}, cfg, &buf)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(out.Listings) != 5 {
		t.Errorf("len(Listings) = %d, want 5", len(out.Listings))
	}
}

// --- formatters ---

func TestFormatTable(t *testing.T) {
	out := Output{
		Listings: []types.Listing{
			{URL: "https://example.com/a", Title: "A Headline", Section: "Science",
				Published: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)},
		},
		DupsRemoved: 2,
	}

	var buf bytes.Buffer
	FormatTable(out, &buf)

	got := buf.String()
	for _, want := range []string{"A Headline", "Science", "2026-01-10", "1 listings", "(2 duplicates removed)"} {
		if !strings.Contains(got, want) {
			t.Errorf("table output missing %q:\n%s", want, got)
		}
	}
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(Output{}, &buf)
	if !strings.Contains(buf.String(), "No listings found.") {
		t.Errorf("output = %q", buf.String())
	}
}
