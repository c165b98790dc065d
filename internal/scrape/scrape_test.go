// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/newsdesk-engine/pkg/types"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Probe Arrives &amp; Reports</title>
  <style>.x { color: red; }</style>
  <script>var tracking = true;</script>
</head>
<body>
  <nav><a href="/">Home</a></nav>
  <section name="articleBody" itemprop="articleBody">
    <p>The probe arrived on Tuesday.</p>
    <p>Scientists said the data &quot;exceeded expectations&quot;.</p>
    <!-- ad slot -->
  </section>
  <footer>Copyright notice</footer>
</body>
</html>`

// --- Slug ---

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"html page", "https://example.com/2026/01/10/science/probe-arrives.html", "probe-arrives"},
		{"trailing slash", "https://example.com/science/probe-arrives/", "probe-arrives"},
		{"no extension", "https://example.com/science/probe", "probe"},
		{"uppercase and punctuation", "https://example.com/Probe_Arrives!Now.html", "probe-arrives-now"},
		{"root path falls back to host", "https://example.com/", "example-com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slug(tt.url); got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

// --- HTML extraction ---

func TestExtractBodySection(t *testing.T) {
	got := extractBodySection(samplePage, "articleBody")
	if !strings.Contains(got, "The probe arrived on Tuesday.") {
		t.Errorf("section missing body paragraph: %q", got)
	}
	if strings.Contains(got, "Copyright notice") {
		t.Errorf("section leaked footer: %q", got)
	}
}

func TestExtractBodySectionFallbacks(t *testing.T) {
	withArticle := `<html><body><article><p>Article text.</p></article><p>Outside.</p></body></html>`
	if got := extractBodySection(withArticle, "articleBody"); !strings.Contains(got, "Article text.") || strings.Contains(got, "Outside.") {
		t.Errorf("article fallback = %q", got)
	}

	bodyOnly := `<html><body><p>Body only.</p></body></html>`
	if got := extractBodySection(bodyOnly, "articleBody"); !strings.Contains(got, "Body only.") {
		t.Errorf("body fallback = %q", got)
	}

	fragment := `<p>Bare fragment.</p>`
	if got := extractBodySection(fragment, "articleBody"); got != fragment {
		t.Errorf("fragment fallback = %q", got)
	}
}

func TestStripTags(t *testing.T) {
	got := stripTags(extractBodySection(samplePage, "articleBody"))

	if !strings.Contains(got, "The probe arrived on Tuesday.") {
		t.Errorf("missing first paragraph: %q", got)
	}
	if !strings.Contains(got, `"exceeded expectations"`) {
		t.Errorf("entities not decoded: %q", got)
	}
	if strings.Contains(got, "<p>") || strings.Contains(got, "ad slot") {
		t.Errorf("markup or comments survived: %q", got)
	}
	// Paragraphs separated by newlines, not run together.
	if strings.Contains(got, "Tuesday.Scientists") {
		t.Errorf("paragraph boundary lost: %q", got)
	}
}

func TestStripTagsRemovesScriptAndStyle(t *testing.T) {
	got := stripTags(samplePage)
	if strings.Contains(got, "tracking") || strings.Contains(got, "color: red") {
		t.Errorf("script/style content survived: %q", got)
	}
}

func TestExtractTitle(t *testing.T) {
	if got := extractTitle(samplePage); got != "Probe Arrives & Reports" {
		t.Errorf("extractTitle() = %q", got)
	}
	if got := extractTitle("<html><body></body></html>"); got != "" {
		t.Errorf("extractTitle(no title) = %q, want empty", got)
	}
}

// --- ScrapeArticle ---

func testScrapeCfg(t *testing.T) types.ScrapeConfig {
	t.Helper()
	return types.ScrapeConfig{
		HTTPConfig:  types.HTTPConfig{UserAgent: "newsdesk-engine-test/0.1"},
		CorpusDir:   t.TempDir(),
		BodySection: "articleBody",
	}
}

func TestScrapeArticle(t *testing.T) {
	var gotAgent string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, samplePage)
	}))
	defer ts.Close()

	cfg := testScrapeCfg(t)
	var buf bytes.Buffer

	article, skipped, err := ScrapeArticle(ts.Client(), ts.URL+"/science/probe-arrives.html", cfg, &buf)
	if err != nil {
		t.Fatalf("ScrapeArticle() error = %v", err)
	}
	if skipped {
		t.Fatal("first scrape reported skipped")
	}
	if gotAgent != "newsdesk-engine-test/0.1" {
		t.Errorf("User-Agent = %q", gotAgent)
	}

	if article.ID != "probe-arrives" {
		t.Errorf("ID = %q", article.ID)
	}
	if article.Title != "Probe Arrives & Reports" {
		t.Errorf("Title = %q", article.Title)
	}
	if article.AnalysisStatus != types.AnalysisNone {
		t.Errorf("AnalysisStatus = %q", article.AnalysisStatus)
	}

	text, err := os.ReadFile(article.TextPath)
	if err != nil {
		t.Fatalf("reading text file: %v", err)
	}
	if !strings.Contains(string(text), "The probe arrived on Tuesday.") {
		t.Errorf("text file content = %q", text)
	}

	// Raw page and metadata written alongside.
	if _, err := os.Stat(filepath.Join(cfg.CorpusDir, "raw", "probe-arrives.html")); err != nil {
		t.Errorf("raw page not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.CorpusDir, "metadata", "probe-arrives.yaml")); err != nil {
		t.Errorf("metadata not written: %v", err)
	}
}

func TestScrapeArticleSkipsExisting(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		fmt.Fprint(w, samplePage)
	}))
	defer ts.Close()

	cfg := testScrapeCfg(t)
	var buf bytes.Buffer
	pageURL := ts.URL + "/science/probe-arrives.html"

	if _, _, err := ScrapeArticle(ts.Client(), pageURL, cfg, &buf); err != nil {
		t.Fatalf("first scrape: %v", err)
	}

	article, skipped, err := ScrapeArticle(ts.Client(), pageURL, cfg, &buf)
	if err != nil {
		t.Fatalf("second scrape: %v", err)
	}
	if !skipped {
		t.Error("second scrape not skipped")
	}
	if calls != 1 {
		t.Errorf("server calls = %d, want 1", calls)
	}
	if article.Title != "Probe Arrives & Reports" {
		t.Errorf("metadata not reloaded, Title = %q", article.Title)
	}
}

func TestScrapeArticleHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	var buf bytes.Buffer
	_, _, err := ScrapeArticle(ts.Client(), ts.URL+"/gone.html", testScrapeCfg(t), &buf)
	if err == nil || !strings.Contains(err.Error(), "HTTP 404") {
		t.Errorf("error = %v, want HTTP 404", err)
	}
}

func TestScrapeArticleEmptyBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><section name="articleBody"></section></body></html>`)
	}))
	defer ts.Close()

	var buf bytes.Buffer
	_, _, err := ScrapeArticle(ts.Client(), ts.URL+"/empty.html", testScrapeCfg(t), &buf)
	if err == nil || !strings.Contains(err.Error(), "no body text") {
		t.Errorf("error = %v, want no-body-text", err)
	}
}

func TestScrapeBatchContinuesAfterFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "bad") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, samplePage)
	}))
	defer ts.Close()

	cfg := testScrapeCfg(t)
	var buf bytes.Buffer

	result := ScrapeBatch(ts.Client(), []string{
		ts.URL + "/good-one.html",
		ts.URL + "/bad-one.html",
		ts.URL + "/good-two.html",
	}, cfg, &buf)

	if result.Scraped != 2 || result.Failed != 1 {
		t.Errorf("result = %+v", result)
	}
	if !result.HasFailures() {
		t.Error("HasFailures() = false")
	}
	if !strings.Contains(buf.String(), "Batch summary: 2 scraped, 0 skipped, 1 failed (total: 3)") {
		t.Errorf("summary missing: %q", buf.String())
	}
}
