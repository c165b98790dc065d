// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape downloads article pages, extracts the body text, and
// creates corpus records.
package scrape

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/newsdesk-engine/pkg/types"
)

const (
	rawDir      = "raw"
	textDir     = "text"
	metadataDir = "metadata"
)

// maxPageBytes bounds how much of a page is read; article pages beyond
// this are cut off rather than ballooning memory.
const maxPageBytes = 8 << 20

// BatchResult holds the outcome of a batch scrape run.
type BatchResult struct {
	Scraped  int
	Skipped  int
	Failed   int
	Articles []*types.Article
}

// Total returns the total number of URLs processed.
func (r BatchResult) Total() int {
	return r.Scraped + r.Skipped + r.Failed
}

// HasFailures reports whether any articles failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Slug derives a corpus identifier from an article URL: the last path
// segment without its extension, lowercased, with anything outside
// [a-z0-9] collapsed to dashes. Falls back to the host when the path is
// empty.
func Slug(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return sanitize(rawURL)
	}
	segment := ""
	for _, part := range strings.Split(u.Path, "/") {
		if part != "" {
			segment = part
		}
	}
	if segment == "" {
		return sanitize(u.Host)
	}
	segment = strings.TrimSuffix(segment, filepath.Ext(segment))
	return sanitize(segment)
}

func sanitize(s string) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(s) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// ScrapeArticle fetches one article page, extracts the named body
// section to plain text, and writes corpus text and metadata. If the
// text file already exists the download is skipped; the skipped return
// value reports that.
func ScrapeArticle(client *http.Client, rawURL string, cfg types.ScrapeConfig, w io.Writer) (article *types.Article, skipped bool, err error) {
	slug := Slug(rawURL)
	if slug == "" {
		return nil, false, fmt.Errorf("cannot derive article slug from %q", rawURL)
	}

	textPath := filepath.Join(cfg.CorpusDir, textDir, slug+".txt")
	metaPath := filepath.Join(cfg.CorpusDir, metadataDir, slug+".yaml")

	if _, err := os.Stat(textPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", slug)
		a, readErr := readMetadata(metaPath)
		if readErr != nil {
			a = &types.Article{ID: slug, URL: rawURL, TextPath: textPath}
		}
		return a, true, nil
	}

	for _, dir := range []string{
		filepath.Join(cfg.CorpusDir, rawDir),
		filepath.Join(cfg.CorpusDir, textDir),
		filepath.Join(cfg.CorpusDir, metadataDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, false, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	fmt.Fprintf(w, "scraping: %s (%s)\n", slug, rawURL)

	page, err := fetchPage(client, rawURL, cfg)
	if err != nil {
		return nil, false, fmt.Errorf("fetching %s: %w", slug, err)
	}

	// Keep the raw page for reprocessing when extraction rules change.
	rawPath := filepath.Join(cfg.CorpusDir, rawDir, slug+".html")
	if err := writeFileAtomic(rawPath, []byte(page)); err != nil {
		return nil, false, fmt.Errorf("writing raw page for %s: %w", slug, err)
	}

	section := cfg.BodySection
	if section == "" {
		section = "articleBody"
	}
	text := stripTags(extractBodySection(page, section))
	if text == "" {
		return nil, false, fmt.Errorf("no body text found in %s", rawURL)
	}

	if err := writeFileAtomic(textPath, []byte(text)); err != nil {
		return nil, false, fmt.Errorf("writing text for %s: %w", slug, err)
	}

	a := &types.Article{
		ID:             slug,
		URL:            rawURL,
		TextPath:       textPath,
		Title:          extractTitle(page),
		Scraped:        time.Now().UTC(),
		AnalysisStatus: types.AnalysisNone,
	}

	if err := writeMetadata(a, metaPath); err != nil {
		return nil, false, fmt.Errorf("writing metadata for %s: %w", slug, err)
	}

	return a, false, nil
}

// ScrapeBatch processes multiple URLs, printing per-item status and
// returning a summary. It continues after individual failures and
// applies a delay between consecutive fetches.
func ScrapeBatch(client *http.Client, urls []string, cfg types.ScrapeConfig, w io.Writer) BatchResult {
	var result BatchResult
	for i, u := range urls {
		if i > 0 && cfg.FetchDelay > 0 {
			time.Sleep(cfg.FetchDelay)
		}
		article, wasSkipped, err := ScrapeArticle(client, u, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", u, err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Scraped++
		}
		result.Articles = append(result.Articles, article)
	}
	fmt.Fprintf(w, "\nBatch summary: %d scraped, %d skipped, %d failed (total: %d)\n",
		result.Scraped, result.Skipped, result.Failed, result.Total())
	return result
}

// fetchPage performs the page GET with the configured User-Agent and
// returns the document, capped at maxPageBytes.
func fetchPage(client *http.Client, rawURL string, cfg types.ScrapeConfig) (string, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("reading page: %w", err)
	}
	return string(data), nil
}

// writeFileAtomic writes data next to dest under a temporary name and
// renames it into place.
func writeFileAtomic(dest string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(dest), ".scrape-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// writeMetadata writes an Article record to a YAML file.
func writeMetadata(article *types.Article, path string) error {
	data, err := yaml.Marshal(article)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// readMetadata reads an Article record from a YAML file.
func readMetadata(path string) (*types.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var article types.Article
	if err := yaml.Unmarshal(data, &article); err != nil {
		return nil, err
	}
	return &article, nil
}
